package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/events"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/repositories/cloudinary"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

type courseService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewCourseService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) CourseService {
	return &courseService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// CreateCourse inserts the course and its instructor link in one transaction
func (s *courseService) CreateCourse(ctx context.Context, instructorID uint, req *CreateCourseRequest) (*CreateCourseResponse, error) {
	s.logger.Info("Creating course", "instructor_id", instructorID, "title", req.CourseTitle)

	req.CourseTitle = strings.TrimSpace(req.CourseTitle)
	req.Category = strings.TrimSpace(req.Category)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	result := &CreateCourseResponse{}
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		course := &models.Course{
			CourseTitle: req.CourseTitle,
			Category:    req.Category,
		}
		if err := s.repo.Course().Create(ctx, tx, course); err != nil {
			return err
		}

		link, err := s.repo.Course().LinkInstructor(ctx, tx, instructorID, course.ID)
		if err != nil {
			return err
		}

		result.Course = course
		result.InstructorCourse = link
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create course", "instructor_id", instructorID, "error", err)
		return nil, err
	}

	events.PublishSafe(ctx, s.publisher, s.logger, events.NewEvent(events.EventCourseCreated, events.CourseCreatedEvent{
		CourseID:     result.Course.ID,
		InstructorID: instructorID,
		Title:        result.Course.CourseTitle,
		Category:     result.Course.Category,
	}))

	s.logger.Info("Course created", "course_id", result.Course.ID, "instructor_id", instructorID)
	return result, nil
}

// GetInstructorCourses lists an instructor's courses. An empty list is reported
// as not found.
func (s *courseService) GetInstructorCourses(ctx context.Context, instructorID uint) ([]*models.Course, error) {
	courses, err := s.repo.Course().GetByInstructor(ctx, nil, instructorID)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, ErrNoInstructorCourses
	}
	return courses, nil
}

func (s *courseService) GetCourseByID(ctx context.Context, courseID uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, mapNotFound(err, ErrCourseNotFound)
	}
	return course, nil
}

func (s *courseService) EditCourse(ctx context.Context, courseID uint, req *EditCourseRequest, thumbnail *Upload) (*models.Course, error) {
	s.logger.Info("Editing course", "course_id", courseID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, mapNotFound(err, ErrCourseNotFound)
	}

	updates := buildCourseUpdates(req)

	if thumbnail != nil {
		if course.CourseThumbnail != nil && *course.CourseThumbnail != "" {
			if err := s.repo.Media().DeleteImage(ctx, cloudinary.PublicIDFromURL(*course.CourseThumbnail)); err != nil {
				s.logger.Warn("Failed to delete previous thumbnail", "course_id", courseID, "error", err)
			}
		}

		asset, err := s.repo.Media().UploadImage(ctx, thumbnail.Filename, thumbnail.Reader)
		if err != nil {
			s.logger.Error("Failed to upload thumbnail", "course_id", courseID, "error", err)
			return nil, fmt.Errorf("failed to upload thumbnail: %w", err)
		}
		updates["course_thumbnail"] = asset.SecureURL
	}

	if len(updates) > 0 {
		if err := s.repo.Course().Update(ctx, nil, courseID, updates); err != nil {
			return nil, mapNotFound(err, ErrCourseNotFound)
		}
	}

	updated, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, mapNotFound(err, ErrCourseNotFound)
	}

	s.logger.Info("Course updated", "course_id", courseID, "fields", len(updates))
	return updated, nil
}

func buildCourseUpdates(req *EditCourseRequest) map[string]interface{} {
	updates := map[string]interface{}{}
	if req.CourseTitle != nil {
		updates["course_title"] = strings.TrimSpace(*req.CourseTitle)
	}
	if req.SubTitle != nil {
		updates["subtitle"] = *req.SubTitle
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = strings.TrimSpace(*req.Category)
	}
	if req.CourseLevel != nil {
		updates["course_level"] = *req.CourseLevel
	}
	if req.CoursePrice != nil {
		updates["course_price"] = *req.CoursePrice
	}
	return updates
}

func (s *courseService) TogglePublish(ctx context.Context, courseID uint, publish bool) (*models.Course, error) {
	s.logger.Info("Toggling course publication", "course_id", courseID, "publish", publish)

	if err := s.repo.Course().SetPublished(ctx, nil, courseID, publish); err != nil {
		return nil, mapNotFound(err, ErrCourseNotFound)
	}

	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, mapNotFound(err, ErrCourseNotFound)
	}

	events.PublishSafe(ctx, s.publisher, s.logger, events.NewEvent(events.EventCoursePublished, events.CoursePublishedEvent{
		CourseID:  courseID,
		Published: publish,
	}))

	return course, nil
}

func (s *courseService) GetPublishedCourses(ctx context.Context) ([]*models.CourseWithInstructor, error) {
	courses, err := s.repo.Course().ListPublished(ctx, nil)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []*models.CourseWithInstructor{}
	}
	return courses, nil
}
