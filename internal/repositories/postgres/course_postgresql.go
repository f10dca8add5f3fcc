package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

const courseWithInstructorColumns = "courses.*, users.id AS instructor_id, users.name AS instructor_name, " +
	"users.photo_url AS instructor_photo_url, users.email AS instructor_email"

type CoursePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (c *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

// withInstructor joins the owning instructor onto a course query
func (c *CoursePostgreSQL) withInstructor(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).
		Table("courses").
		Select(courseWithInstructorColumns).
		Joins("LEFT JOIN instructor_courses ON instructor_courses.course_id = courses.id").
		Joins("LEFT JOIN users ON users.id = instructor_courses.instructor_id")
}

// Create inserts a course row. The instructor link is a separate call so both
// can share one transaction.
func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if err := c.getDB(tx).WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (c *CoursePostgreSQL) LinkInstructor(ctx context.Context, tx *gorm.DB, instructorID, courseID uint) (*models.InstructorCourse, error) {
	link := &models.InstructorCourse{
		InstructorID: instructorID,
		CourseID:     courseID,
	}
	if err := c.getDB(tx).WithContext(ctx).Omit("Instructor", "Course").Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to link instructor: %w", err)
	}

	repositories.AfterCommit(c.getDB(tx), func() {
		cache.SafeDelete(ctx, c.cacheManager.Course, cache.InstructorKey(instructorID))
	})
	return link, nil
}

// GetByID retrieves a course by ID with caching
func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	var course models.Course

	err := c.cacheManager.Course.CacheOrExecute(ctx, cache.CourseKey(id), &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCourse models.Course
		if err := c.getDB(tx).WithContext(ctx).First(&dbCourse, id).Error; err != nil {
			return nil, fmt.Errorf("failed to get course: %w", notFound(err))
		}
		return &dbCourse, nil
	})
	if err != nil {
		return nil, err
	}

	return &course, nil
}

// GetWithInstructor retrieves a course and its instructor's public fields
func (c *CoursePostgreSQL) GetWithInstructor(ctx context.Context, tx *gorm.DB, id uint) (*models.CourseWithInstructor, error) {
	var course models.CourseWithInstructor

	err := c.cacheManager.Course.CacheOrExecute(ctx, cache.CourseDetailKey(id), &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var rows []models.CourseWithInstructor
		if err := c.withInstructor(ctx, c.getDB(tx)).Where("courses.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get course details: %w", err)
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("failed to get course details: %w", repositories.ErrNotFound)
		}
		return &rows[0], nil
	})
	if err != nil {
		return nil, err
	}

	return &course, nil
}

// GetByInstructor lists the courses owned by an instructor, newest first
func (c *CoursePostgreSQL) GetByInstructor(ctx context.Context, tx *gorm.DB, instructorID uint) ([]*models.Course, error) {
	var courses []*models.Course

	err := c.cacheManager.Course.CacheOrExecute(ctx, cache.InstructorKey(instructorID), &courses, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCourses []*models.Course
		err := c.getDB(tx).WithContext(ctx).
			Joins("JOIN instructor_courses ON instructor_courses.course_id = courses.id").
			Where("instructor_courses.instructor_id = ?", instructorID).
			Order("courses.created_at DESC").
			Find(&dbCourses).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get instructor courses: %w", err)
		}
		return dbCourses, nil
	})
	if err != nil {
		return nil, err
	}

	return courses, nil
}

func (c *CoursePostgreSQL) GetInstructorID(ctx context.Context, tx *gorm.DB, courseID uint) (uint, error) {
	var ids []uint
	err := c.getDB(tx).WithContext(ctx).
		Model(&models.InstructorCourse{}).
		Where("course_id = ?", courseID).
		Limit(1).
		Pluck("instructor_id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get course instructor: %w", err)
	}
	if len(ids) == 0 {
		return 0, repositories.ErrNotFound
	}
	return ids[0], nil
}

// ListPublished returns the public catalogue, newest first
func (c *CoursePostgreSQL) ListPublished(ctx context.Context, tx *gorm.DB) ([]*models.CourseWithInstructor, error) {
	var courses []*models.CourseWithInstructor

	err := c.cacheManager.Catalog.CacheOrExecute(ctx, cache.PublishedCatalogKey, &courses, cache.CatalogCacheConfig.TTL, func() (interface{}, error) {
		var dbCourses []*models.CourseWithInstructor
		err := c.withInstructor(ctx, c.getDB(tx)).
			Where("courses.is_published = ?", true).
			Order("courses.created_at DESC").
			Scan(&dbCourses).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list published courses: %w", err)
		}
		return dbCourses, nil
	})
	if err != nil {
		return nil, err
	}

	return courses, nil
}

// Update applies a partial update and invalidates cache
func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, id uint, updates map[string]interface{}) error {
	result := c.getDB(tx).WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update course: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	repositories.AfterCommit(c.getDB(tx), func() {
		cache.InvalidateCourseCache(ctx, c.cacheManager, id)
	})
	return nil
}

func (c *CoursePostgreSQL) SetPublished(ctx context.Context, tx *gorm.DB, id uint, published bool) error {
	return c.Update(ctx, tx, id, map[string]interface{}{"is_published": published})
}

func (c *CoursePostgreSQL) Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	exists, err := c.helpers.CourseExists(ctx, c.getDB(tx), id)
	if err != nil {
		return false, fmt.Errorf("failed to check course: %w", err)
	}
	return exists, nil
}
