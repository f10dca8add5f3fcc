package services

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/events"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

type progressService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewProgressService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ProgressService {
	return &progressService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// RecordLectureViewed marks one lecture viewed and recomputes completion.
// Course membership is read once inside the transaction; two concurrent views
// by the same user are last-write-wins on the viewed set.
func (s *progressService) RecordLectureViewed(ctx context.Context, userID, courseID, lectureID uint) (*models.CourseProgress, error) {
	s.logger.Info("Recording lecture view", "user_id", userID, "course_id", courseID, "lecture_id", lectureID)

	var progress *models.CourseProgress
	var becameComplete bool
	var lectureCount int

	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		linked, err := s.repo.Lecture().GetIDsByCourse(ctx, tx, courseID)
		if err != nil {
			return err
		}
		if !slices.Contains(linked, lectureID) {
			return ErrLectureNotFound
		}
		lectureCount = len(linked)

		existing, err := s.repo.Progress().Get(ctx, tx, userID, courseID)
		if err != nil && !repositories.IsNotFoundError(err) {
			return err
		}

		if existing == nil {
			progress = &models.CourseProgress{UserID: userID, CourseID: courseID}
			entries := []models.LectureProgress{{LectureID: lectureID, Viewed: true}}
			if err := progress.SetEntries(entries); err != nil {
				return err
			}
			progress.Completed = models.IsComplete(entries, linked)
			becameComplete = progress.Completed
			return s.repo.Progress().Create(ctx, tx, progress)
		}

		progress = existing
		entries, err := progress.Entries()
		if err != nil {
			return err
		}
		entries, _ = models.MarkViewed(entries, lectureID)
		if err := progress.SetEntries(entries); err != nil {
			return err
		}

		wasComplete := progress.Completed
		progress.Completed = models.IsComplete(entries, linked)
		becameComplete = progress.Completed && !wasComplete

		return s.repo.Progress().Save(ctx, tx, progress)
	})
	if err != nil {
		if !errors.Is(err, ErrLectureNotFound) {
			s.logger.Error("Failed to record lecture view", "user_id", userID, "course_id", courseID, "lecture_id", lectureID, "error", err)
		}
		return nil, err
	}

	lectureViewsTotal.Inc()
	if becameComplete {
		s.publishCompleted(ctx, userID, courseID, lectureCount)
	}

	return progress, nil
}

// GetProgress never fails for a missing row or course; it returns the empty shape.
func (s *progressService) GetProgress(ctx context.Context, userID, courseID uint) (*ProgressResponse, error) {
	response := &ProgressResponse{
		Progress:  []models.LectureProgress{},
		Completed: false,
	}

	detail, err := loadCourseDetail(ctx, s.repo, courseID)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return response, nil
		}
		return nil, err
	}
	response.CourseDetails = detail

	progress, err := s.repo.Progress().Get(ctx, nil, userID, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return response, nil
		}
		return nil, err
	}

	entries, err := progress.Entries()
	if err != nil {
		return nil, err
	}
	response.Progress = entries
	response.Completed = progress.Completed

	return response, nil
}

// SetCompleted(true) writes a viewed entry for every linked lecture.
// SetCompleted(false) clears the viewed set entirely; with no row it is a no-op.
func (s *progressService) SetCompleted(ctx context.Context, userID, courseID uint, completed bool) error {
	s.logger.Info("Setting course completion", "user_id", userID, "course_id", courseID, "completed", completed)

	if !completed {
		rows, err := s.repo.Progress().Reset(ctx, nil, userID, courseID)
		if err != nil {
			s.logger.Error("Failed to reset progress", "user_id", userID, "course_id", courseID, "error", err)
			return err
		}
		s.logger.Info("Progress reset", "user_id", userID, "course_id", courseID, "rows", rows)
		return nil
	}

	var lectureCount int
	var becameComplete bool
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		exists, err := s.repo.Course().Exists(ctx, tx, courseID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrCourseNotFound
		}

		linked, err := s.repo.Lecture().GetIDsByCourse(ctx, tx, courseID)
		if err != nil {
			return err
		}
		lectureCount = len(linked)

		entries := make([]models.LectureProgress, 0, len(linked))
		for _, id := range linked {
			entries = append(entries, models.LectureProgress{LectureID: id, Viewed: true})
		}

		existing, err := s.repo.Progress().Get(ctx, tx, userID, courseID)
		if err != nil && !repositories.IsNotFoundError(err) {
			return err
		}

		if existing == nil {
			progress := &models.CourseProgress{UserID: userID, CourseID: courseID, Completed: true}
			if err := progress.SetEntries(entries); err != nil {
				return err
			}
			becameComplete = true
			return s.repo.Progress().Create(ctx, tx, progress)
		}

		becameComplete = !existing.Completed
		existing.Completed = true
		if err := existing.SetEntries(entries); err != nil {
			return err
		}
		return s.repo.Progress().Save(ctx, tx, existing)
	})
	if err != nil {
		if !errors.Is(err, ErrCourseNotFound) {
			s.logger.Error("Failed to mark course completed", "user_id", userID, "course_id", courseID, "error", err)
		}
		return err
	}

	if becameComplete {
		s.publishCompleted(ctx, userID, courseID, lectureCount)
	}
	return nil
}

func (s *progressService) publishCompleted(ctx context.Context, userID, courseID uint, lectures int) {
	coursesCompletedTotal.Inc()
	events.PublishSafe(ctx, s.publisher, s.logger, events.NewEvent(events.EventCourseCompleted, events.CourseCompletedEvent{
		CourseID: courseID,
		UserID:   userID,
		Lectures: lectures,
	}))
}
