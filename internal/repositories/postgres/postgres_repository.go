package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// Repository instances
	user       repositories.UserRepository
	course     repositories.CourseRepository
	lecture    repositories.LectureRepository
	enrollment repositories.EnrollmentRepository
	progress   repositories.ProgressRepository
	purchase   repositories.PurchaseRepository

	// External collaborators
	media   repositories.MediaRepository
	payment repositories.PaymentGateway
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB             *gorm.DB
	RedisClient    *redis.Client
	Media          repositories.MediaRepository
	PaymentGateway repositories.PaymentGateway
}

// NewPostgreSQLRepository creates the aggregate repository with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) *PostgreSQLRepository {
	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cache.NewCacheManager(config.RedisClient),
		media:        config.Media,
		payment:      config.PaymentGateway,
	}
	repo.bind(config.DB)
	return repo
}

// bind builds the sub-repositories on top of db, which may be a transaction
func (r *PostgreSQLRepository) bind(db *gorm.DB) {
	r.user = NewUserPostgreSQL(db, r.cacheManager)
	r.course = NewCoursePostgreSQL(db, r.cacheManager)
	r.lecture = NewLecturePostgreSQL(db, r.cacheManager)
	r.enrollment = NewEnrollmentPostgreSQL(db, r.cacheManager)
	r.progress = NewProgressPostgreSQL(db)
	r.purchase = NewPurchasePostgreSQL(db)
}

func (r *PostgreSQLRepository) User() repositories.UserRepository             { return r.user }
func (r *PostgreSQLRepository) Course() repositories.CourseRepository         { return r.course }
func (r *PostgreSQLRepository) Lecture() repositories.LectureRepository       { return r.lecture }
func (r *PostgreSQLRepository) Enrollment() repositories.EnrollmentRepository { return r.enrollment }
func (r *PostgreSQLRepository) Progress() repositories.ProgressRepository     { return r.progress }
func (r *PostgreSQLRepository) Purchase() repositories.PurchaseRepository     { return r.purchase }
func (r *PostgreSQLRepository) Media() repositories.MediaRepository           { return r.media }
func (r *PostgreSQLRepository) Payment() repositories.PaymentGateway          { return r.payment }

// Cache exposes the cache manager for health reporting
func (r *PostgreSQLRepository) Cache() *cache.CacheManager {
	return r.cacheManager
}

// WithTransaction executes a function within a database transaction. Cache
// invalidations of the transactional repositories wait for the commit.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return repositories.RunInTx(ctx, r.db, func(tx *gorm.DB) error {
		txRepo := &PostgreSQLRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: r.cacheManager,
			media:        r.media,
			payment:      r.payment,
		}
		txRepo.bind(tx)

		return fn(txRepo)
	})
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   *PostgreSQLRepository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) *RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize verifies connections and builds the repository
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}
	if rm.config.Media == nil {
		return fmt.Errorf("media repository is required")
	}
	if rm.config.PaymentGateway == nil {
		return fmt.Errorf("payment gateway is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// Cache returns the cache manager, or nil before Initialize
func (rm *RepositoryManager) Cache() *cache.CacheManager {
	if rm.repo == nil {
		return nil
	}
	return rm.repo.Cache()
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
