package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

type lectureService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewLectureService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) LectureService {
	return &lectureService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// CreateLecture inserts the lecture and links it to the course in one transaction
func (s *lectureService) CreateLecture(ctx context.Context, courseID uint, req *CreateLectureRequest) (*models.Lecture, error) {
	s.logger.Info("Creating lecture", "course_id", courseID, "title", req.LectureTitle)

	req.LectureTitle = strings.TrimSpace(req.LectureTitle)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	lecture := &models.Lecture{
		LectureTitle: req.LectureTitle,
		Status:       models.LectureDraft,
	}
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		exists, err := s.repo.Course().Exists(ctx, tx, courseID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrCourseNotFound
		}

		if err := s.repo.Lecture().Create(ctx, tx, lecture); err != nil {
			return err
		}
		return s.repo.Lecture().LinkToCourse(ctx, tx, courseID, lecture.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Lecture created", "course_id", courseID, "lecture_id", lecture.ID)
	return lecture, nil
}

// GetCourseLectures lists the course's lectures by id, each with its preview flag
func (s *lectureService) GetCourseLectures(ctx context.Context, courseID uint) ([]*models.CourseLectureView, error) {
	exists, err := s.repo.Course().Exists(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCourseNotFound
	}

	return s.repo.Lecture().GetByCourse(ctx, nil, courseID, repositories.LectureOrderID)
}

func (s *lectureService) EditLecture(ctx context.Context, courseID, lectureID uint, req *EditLectureRequest) (*models.Lecture, error) {
	s.logger.Info("Editing lecture", "course_id", courseID, "lecture_id", lectureID)

	if errs := s.validator.GetBusinessValidator().ValidateLectureEdit(req.LectureTitle, req.VideoInfo, req.IsPreviewFree); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.repo.Lecture().GetByID(ctx, nil, lectureID); err != nil {
		return nil, mapNotFound(err, ErrLectureNotFound)
	}

	updates := map[string]interface{}{}
	if req.LectureTitle != nil {
		updates["lecture_title"] = strings.TrimSpace(*req.LectureTitle)
	}
	if req.VideoInfo != nil {
		updates["video_url"] = req.VideoInfo.VideoURL
		updates["public_id"] = req.VideoInfo.PublicID
		updates["status"] = models.LectureReady
	}

	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := s.repo.Lecture().Update(ctx, tx, courseID, lectureID, updates); err != nil {
				return mapNotFound(err, ErrLectureNotFound)
			}
		}
		if req.IsPreviewFree != nil {
			if err := s.repo.Lecture().SetPreviewFree(ctx, tx, courseID, lectureID, *req.IsPreviewFree); err != nil {
				return mapNotFound(err, ErrLectureNotFound)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	lecture, err := s.repo.Lecture().GetByID(ctx, nil, lectureID)
	if err != nil {
		return nil, mapNotFound(err, ErrLectureNotFound)
	}

	s.logger.Info("Lecture updated", "course_id", courseID, "lecture_id", lectureID)
	return lecture, nil
}

// RemoveLecture deletes the hosted video first; a failure there is logged and
// the lecture is removed anyway.
func (s *lectureService) RemoveLecture(ctx context.Context, courseID, lectureID uint) error {
	s.logger.Info("Removing lecture", "course_id", courseID, "lecture_id", lectureID)

	lecture, err := s.repo.Lecture().GetByID(ctx, nil, lectureID)
	if err != nil {
		return mapNotFound(err, ErrLectureNotFound)
	}

	if lecture.PublicID != nil && *lecture.PublicID != "" {
		if err := s.repo.Media().DeleteVideo(ctx, *lecture.PublicID); err != nil {
			s.logger.Warn("Failed to delete lecture video", "lecture_id", lectureID, "public_id", *lecture.PublicID, "error", err)
		}
	}

	err = withTx(ctx, s.db, func(tx *gorm.DB) error {
		return s.repo.Lecture().Delete(ctx, tx, courseID, lectureID)
	})
	if err != nil {
		return mapNotFound(err, ErrLectureNotFound)
	}

	s.logger.Info("Lecture removed", "course_id", courseID, "lecture_id", lectureID)
	return nil
}

func (s *lectureService) GetLectureByID(ctx context.Context, lectureID uint) (*models.Lecture, error) {
	lecture, err := s.repo.Lecture().GetByID(ctx, nil, lectureID)
	if err != nil {
		return nil, mapNotFound(err, ErrLectureNotFound)
	}
	return lecture, nil
}

// UploadVideo passes a video straight through to the media host
func (s *lectureService) UploadVideo(ctx context.Context, upload *Upload) (*models.MediaAsset, error) {
	if upload == nil || upload.Reader == nil {
		return nil, validator.ValidationErrors{{Field: "file", Message: "is required", Rule: "required"}}
	}

	asset, err := s.repo.Media().UploadVideo(ctx, upload.Filename, upload.Reader)
	if err != nil {
		s.logger.Error("Failed to upload video", "filename", upload.Filename, "error", err)
		return nil, fmt.Errorf("failed to upload video: %w", err)
	}

	s.logger.Info("Video uploaded", "public_id", asset.PublicID)
	return asset, nil
}
