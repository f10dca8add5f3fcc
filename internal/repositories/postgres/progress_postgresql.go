package postgres

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

// ProgressPostgreSQL is not cached; progress changes on every lecture view.
type ProgressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{db: db}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (p *ProgressPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

func (p *ProgressPostgreSQL) Get(ctx context.Context, tx *gorm.DB, userID, courseID uint) (*models.CourseProgress, error) {
	var progress models.CourseProgress
	err := p.getDB(tx).WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&progress).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get course progress: %w", notFound(err))
	}
	return &progress, nil
}

// Create inserts the (user, course) row. A row written concurrently for the
// same pair is overwritten, so racing first views stay last-write-wins.
func (p *ProgressPostgreSQL) Create(ctx context.Context, tx *gorm.DB, progress *models.CourseProgress) error {
	err := p.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"completed", "lecture_progress", "updated_at"}),
		}).
		Create(progress).Error
	if err != nil {
		return fmt.Errorf("failed to create course progress: %w", err)
	}
	return nil
}

// Save writes the viewed set and completion flag of an existing row
func (p *ProgressPostgreSQL) Save(ctx context.Context, tx *gorm.DB, progress *models.CourseProgress) error {
	err := p.getDB(tx).WithContext(ctx).
		Model(progress).
		Select("completed", "lecture_progress", "updated_at").
		Updates(progress).Error
	if err != nil {
		return fmt.Errorf("failed to save course progress: %w", err)
	}
	return nil
}

// Reset clears the viewed set. It reports how many rows were touched; zero
// means the user had no progress for the course.
func (p *ProgressPostgreSQL) Reset(ctx context.Context, tx *gorm.DB, userID, courseID uint) (int64, error) {
	result := p.getDB(tx).WithContext(ctx).
		Model(&models.CourseProgress{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Updates(map[string]interface{}{
			"lecture_progress": datatypes.JSON("[]"),
			"completed":        false,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to reset course progress: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (p *ProgressPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.CourseProgress, error) {
	var rows []*models.CourseProgress
	err := p.getDB(tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list course progress: %w", err)
	}
	return rows, nil
}
