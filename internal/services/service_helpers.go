package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

// withTx runs fn inside a database transaction; cache invalidations queued by
// the repositories run only after commit
func withTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return repositories.RunInTx(ctx, db, fn)
}

// loadCourseDetail reads a course with its instructor and its lectures in
// creation order
func loadCourseDetail(ctx context.Context, repo repositories.Repository, courseID uint) (*models.CourseDetail, error) {
	course, err := repo.Course().GetWithInstructor(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	lectures, err := repo.Lecture().GetByCourse(ctx, nil, courseID, repositories.LectureOrderCreated)
	if err != nil {
		return nil, fmt.Errorf("failed to load lectures: %w", err)
	}

	return &models.CourseDetail{
		CourseWithInstructor: *course,
		Lectures:             lectures,
	}, nil
}

// mapNotFound swaps a repository not-found error for the given sentinel
func mapNotFound(err error, sentinel error) error {
	if repositories.IsNotFoundError(err) {
		return sentinel
	}
	return err
}
