package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/repositories/cloudinary"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// GetProfile returns the user with the ids of the courses they are enrolled in
func (s *userService) GetProfile(ctx context.Context, userID uint) (*models.UserProfile, error) {
	profile, err := s.repo.User().GetProfile(ctx, nil, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return profile, nil
}

// UpdateProfile changes the display name and/or replaces the profile photo.
// The old photo is removed only after the new one is stored.
func (s *userService) UpdateProfile(ctx context.Context, userID uint, req *UpdateProfileRequest) (*models.User, error) {
	s.logger.Info("Updating profile", "user_id", userID)

	if req.Name == nil && req.Photo == nil {
		return nil, ErrNoProfileChanges
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}

	var oldPhoto *string
	if req.Photo != nil {
		asset, err := s.repo.Media().UploadImage(ctx, req.Photo.Filename, req.Photo.Reader)
		if err != nil {
			s.logger.Error("Failed to upload profile photo", "user_id", userID, "error", err)
			return nil, fmt.Errorf("failed to upload profile photo: %w", err)
		}
		updates["photo_url"] = asset.SecureURL
		oldPhoto = user.PhotoURL
	}

	if err := s.repo.User().Update(ctx, nil, userID, updates); err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}

	if oldPhoto != nil && *oldPhoto != "" {
		if err := s.repo.Media().DeleteImage(ctx, cloudinary.PublicIDFromURL(*oldPhoto)); err != nil {
			s.logger.Warn("Failed to delete previous profile photo", "user_id", userID, "error", err)
		}
	}

	updated, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}

	s.logger.Info("Profile updated", "user_id", userID)
	return updated, nil
}
