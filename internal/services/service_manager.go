package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/config"
	"github.com/SAP-F-2025/lms-service/internal/events"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	Auth      config.AuthConfig
	Publisher events.EventPublisher
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	// Service instances
	authService     AuthService
	userService     UserService
	courseService   CourseService
	lectureService  LectureService
	progressService ProgressService
	purchaseService PurchaseService
	reportService   ReportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	if config.Publisher == nil {
		config.Publisher, _ = events.NewInMemoryEventPublisher("", logger)
	}
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if sm.config.Auth.JWTSecret == "" {
		return fmt.Errorf("failed to initialize services: auth secret is empty")
	}

	pub := sm.config.Publisher
	sm.authService = NewAuthService(sm.repo, sm.db, sm.logger, sm.validator, sm.config.Auth)
	sm.userService = NewUserService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.courseService = NewCourseService(sm.repo, sm.db, sm.logger, sm.validator, pub)
	sm.lectureService = NewLectureService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.progressService = NewProgressService(sm.repo, sm.db, sm.logger, sm.validator, pub)
	sm.purchaseService = NewPurchaseService(sm.repo, sm.db, sm.logger, sm.validator, pub)
	sm.reportService = NewReportService(sm.repo, sm.db, sm.logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) mustBeReady(name string, svc interface{}) {
	if !sm.initialized {
		panic("service manager not initialized")
	}
	if svc == nil {
		panic(name + " service not initialized")
	}
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("auth", sm.authService)
	return sm.authService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("user", sm.userService)
	return sm.userService
}

func (sm *serviceManager) Course() CourseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("course", sm.courseService)
	return sm.courseService
}

func (sm *serviceManager) Lecture() LectureService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("lecture", sm.lectureService)
	return sm.lectureService
}

func (sm *serviceManager) Progress() ProgressService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("progress", sm.progressService)
	return sm.progressService
}

func (sm *serviceManager) Purchase() PurchaseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("purchase", sm.purchaseService)
	return sm.purchaseService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("report", sm.reportService)
	return sm.reportService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.config.Publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
