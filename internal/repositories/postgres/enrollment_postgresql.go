package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

type EnrollmentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewEnrollmentPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (e *EnrollmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}

// Enroll inserts the (user, course) pair, ignoring an existing one
func (e *EnrollmentPostgreSQL) Enroll(ctx context.Context, tx *gorm.DB, userID, courseID uint) (bool, error) {
	enrollment := &models.UserCourse{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}

	result := e.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(enrollment)
	if result.Error != nil {
		return false, fmt.Errorf("failed to enroll user: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		repositories.AfterCommit(e.getDB(tx), func() {
			cache.SafeDelete(ctx, e.cacheManager.User, cache.ProfileKey(userID))
		})
	}
	return result.RowsAffected > 0, nil
}

// ListStudents returns the students enrolled in a course, earliest first
func (e *EnrollmentPostgreSQL) ListStudents(ctx context.Context, tx *gorm.DB, courseID uint) ([]*repositories.EnrolledStudent, error) {
	var students []*repositories.EnrolledStudent
	err := e.getDB(tx).WithContext(ctx).
		Table("user_courses").
		Select("users.id AS user_id, users.name, users.email, user_courses.enrolled_at").
		Joins("JOIN users ON users.id = user_courses.user_id").
		Where("user_courses.course_id = ?", courseID).
		Order("user_courses.enrolled_at ASC").
		Scan(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enrolled students: %w", err)
	}
	return students, nil
}
