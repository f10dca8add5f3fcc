package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// CourseExists reports whether a course row exists
func (h *SharedHelpers) CourseExists(ctx context.Context, db *gorm.DB, courseID uint) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", courseID).
		Count(&count).Error
	return count > 0, err
}

// ApplyLectureOrder whitelists the lecture list ordering
func (h *SharedHelpers) ApplyLectureOrder(query *gorm.DB, order repositories.LectureOrder) *gorm.DB {
	switch order {
	case repositories.LectureOrderID:
		return query.Order("lectures.id ASC")
	default:
		return query.Order("lectures.created_at ASC").Order("lectures.id ASC")
	}
}

// notFound maps gorm's record-not-found to the repository sentinel
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	return err
}
