package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

type LecturePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewLecturePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.LectureRepository {
	return &LecturePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (l *LecturePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return l.db
}

func (l *LecturePostgreSQL) Create(ctx context.Context, tx *gorm.DB, lecture *models.Lecture) error {
	if err := l.getDB(tx).WithContext(ctx).Create(lecture).Error; err != nil {
		return fmt.Errorf("failed to create lecture: %w", err)
	}
	return nil
}

// LinkToCourse attaches a lecture to a course as a locked (non-preview) lecture
func (l *LecturePostgreSQL) LinkToCourse(ctx context.Context, tx *gorm.DB, courseID, lectureID uint) error {
	link := &models.CourseLecture{
		CourseID:  courseID,
		LectureID: lectureID,
	}
	if err := l.getDB(tx).WithContext(ctx).Create(link).Error; err != nil {
		return fmt.Errorf("failed to link lecture to course: %w", err)
	}

	repositories.AfterCommit(l.getDB(tx), func() {
		cache.InvalidateLectureCache(ctx, l.cacheManager, courseID, lectureID)
	})
	return nil
}

func (l *LecturePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lecture, error) {
	var lecture models.Lecture

	err := l.cacheManager.Lecture.CacheOrExecute(ctx, cache.LectureKey(id), &lecture, cache.LectureCacheConfig.TTL, func() (interface{}, error) {
		var dbLecture models.Lecture
		if err := l.getDB(tx).WithContext(ctx).First(&dbLecture, id).Error; err != nil {
			return nil, fmt.Errorf("failed to get lecture: %w", notFound(err))
		}
		return &dbLecture, nil
	})
	if err != nil {
		return nil, err
	}

	return &lecture, nil
}

// GetByCourse lists a course's lectures with their link's preview flag
func (l *LecturePostgreSQL) GetByCourse(ctx context.Context, tx *gorm.DB, courseID uint, order repositories.LectureOrder) ([]*models.CourseLectureView, error) {
	lectures := []*models.CourseLectureView{}
	cacheKey := fmt.Sprintf("%s:%s", cache.LectureListKey(courseID), order)

	err := l.cacheManager.Lecture.CacheOrExecute(ctx, cacheKey, &lectures, cache.LectureCacheConfig.TTL, func() (interface{}, error) {
		dbLectures := []*models.CourseLectureView{}
		query := l.getDB(tx).WithContext(ctx).
			Table("lectures").
			Select("lectures.*, course_lectures.is_preview_free").
			Joins("JOIN course_lectures ON course_lectures.lecture_id = lectures.id").
			Where("course_lectures.course_id = ?", courseID)
		if err := l.helpers.ApplyLectureOrder(query, order).Scan(&dbLectures).Error; err != nil {
			return nil, fmt.Errorf("failed to get course lectures: %w", err)
		}
		return dbLectures, nil
	})
	if err != nil {
		return nil, err
	}

	return lectures, nil
}

// GetIDsByCourse reads the lecture ids currently linked to a course, uncached
func (l *LecturePostgreSQL) GetIDsByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]uint, error) {
	var ids []uint
	err := l.getDB(tx).WithContext(ctx).
		Model(&models.CourseLecture{}).
		Where("course_id = ?", courseID).
		Order("lecture_id ASC").
		Pluck("lecture_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get course lecture ids: %w", err)
	}
	return ids, nil
}

// Update applies a partial update to the lecture row
func (l *LecturePostgreSQL) Update(ctx context.Context, tx *gorm.DB, courseID, lectureID uint, updates map[string]interface{}) error {
	result := l.getDB(tx).WithContext(ctx).
		Model(&models.Lecture{}).
		Where("id = ?", lectureID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update lecture: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	repositories.AfterCommit(l.getDB(tx), func() {
		cache.InvalidateLectureCache(ctx, l.cacheManager, courseID, lectureID)
	})
	return nil
}

func (l *LecturePostgreSQL) SetPreviewFree(ctx context.Context, tx *gorm.DB, courseID, lectureID uint, isFree bool) error {
	result := l.getDB(tx).WithContext(ctx).
		Model(&models.CourseLecture{}).
		Where("course_id = ? AND lecture_id = ?", courseID, lectureID).
		Update("is_preview_free", isFree)
	if result.Error != nil {
		return fmt.Errorf("failed to update lecture preview: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	repositories.AfterCommit(l.getDB(tx), func() {
		cache.InvalidateLectureCache(ctx, l.cacheManager, courseID, lectureID)
	})
	return nil
}

// UnlockAllPreviews marks every link of the course preview-free
func (l *LecturePostgreSQL) UnlockAllPreviews(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error) {
	result := l.getDB(tx).WithContext(ctx).
		Model(&models.CourseLecture{}).
		Where("course_id = ?", courseID).
		Update("is_preview_free", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to unlock course lectures: %w", result.Error)
	}

	repositories.AfterCommit(l.getDB(tx), func() {
		cache.SafeInvalidatePattern(ctx, l.cacheManager.Lecture, cache.LectureListKey(courseID)+":*")
		cache.SafeDelete(ctx, l.cacheManager.Course, cache.CourseDetailKey(courseID))
	})
	return result.RowsAffected, nil
}

// Delete removes the course link and then the lecture itself
func (l *LecturePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, courseID, lectureID uint) error {
	db := l.getDB(tx).WithContext(ctx)

	if err := db.Where("course_id = ? AND lecture_id = ?", courseID, lectureID).
		Delete(&models.CourseLecture{}).Error; err != nil {
		return fmt.Errorf("failed to unlink lecture: %w", err)
	}

	result := db.Delete(&models.Lecture{}, lectureID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete lecture: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	repositories.AfterCommit(l.getDB(tx), func() {
		cache.InvalidateLectureCache(ctx, l.cacheManager, courseID, lectureID)
	})
	return nil
}
