package repositories

import "context"

// Repository aggregates every repository the services use
type Repository interface {
	// Identity
	User() UserRepository

	// Catalogue
	Course() CourseRepository
	Lecture() LectureRepository

	// Learning
	Enrollment() EnrollmentRepository
	Progress() ProgressRepository

	// Payments
	Purchase() PurchaseRepository

	// External collaborators (not transactional)
	Media() MediaRepository
	Payment() PaymentGateway

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
