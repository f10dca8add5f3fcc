package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

type UserPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.UserRepository {
	return &UserPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := u.getDB(tx).WithContext(ctx).Create(user).Error; err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to create user: %w", repositories.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID loads a user. Passwords are never cached, so this always reads the database.
func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := u.getDB(tx).WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user: %w", notFound(err))
	}
	return &user, nil
}

// GetProfile loads the public user fields and enrolled course ids with caching
func (u *UserPostgreSQL) GetProfile(ctx context.Context, tx *gorm.DB, id uint) (*models.UserProfile, error) {
	var profile models.UserProfile

	err := u.cacheManager.User.CacheOrExecute(ctx, cache.ProfileKey(id), &profile, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		db := u.getDB(tx).WithContext(ctx)

		dbProfile := models.UserProfile{Courses: []uint{}}
		if err := db.First(&dbProfile.User, id).Error; err != nil {
			return nil, fmt.Errorf("failed to get user profile: %w", notFound(err))
		}
		dbProfile.Password = ""

		err := db.Model(&models.UserCourse{}).
			Where("user_id = ?", id).
			Order("enrolled_at ASC").
			Pluck("course_id", &dbProfile.Courses).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get enrolled courses: %w", err)
		}
		return &dbProfile, nil
	})
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := u.getDB(tx).WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", notFound(err))
	}
	return &user, nil
}

func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	err := u.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// Update applies a partial update and drops the cached profile along with
// the course views that embed the user as instructor
func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, id uint, updates map[string]interface{}) error {
	result := u.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	repositories.AfterCommit(u.getDB(tx), func() {
		cache.InvalidateUserCache(ctx, u.cacheManager, id)
	})
	return nil
}
