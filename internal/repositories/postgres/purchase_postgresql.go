package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

type PurchasePostgreSQL struct {
	db *gorm.DB
}

func NewPurchasePostgreSQL(db *gorm.DB) repositories.PurchaseRepository {
	return &PurchasePostgreSQL{db: db}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (p *PurchasePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

func (p *PurchasePostgreSQL) Create(ctx context.Context, tx *gorm.DB, purchase *models.CoursePurchase) error {
	if err := p.getDB(tx).WithContext(ctx).Create(purchase).Error; err != nil {
		return fmt.Errorf("failed to create purchase: %w", err)
	}
	return nil
}

func (p *PurchasePostgreSQL) GetByPaymentID(ctx context.Context, tx *gorm.DB, paymentID string) (*models.CoursePurchase, error) {
	var purchase models.CoursePurchase
	err := p.getDB(tx).WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&purchase).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase: %w", notFound(err))
	}
	return &purchase, nil
}

func (p *PurchasePostgreSQL) HasCompleted(ctx context.Context, tx *gorm.DB, userID, courseID uint) (bool, error) {
	var count int64
	err := p.getDB(tx).WithContext(ctx).
		Model(&models.CoursePurchase{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, models.PurchaseCompleted).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	return count > 0, nil
}

// MarkCompleted sets the purchase completed with the confirmed amount
func (p *PurchasePostgreSQL) MarkCompleted(ctx context.Context, tx *gorm.DB, id uint, amount float64) error {
	result := p.getDB(tx).WithContext(ctx).
		Model(&models.CoursePurchase{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status": models.PurchaseCompleted,
			"amount": amount,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to complete purchase: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// ListCompletedByUser returns a user's completed purchases, newest first
func (p *PurchasePostgreSQL) ListCompletedByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.PurchasedCourse, error) {
	purchases := []*models.PurchasedCourse{}
	err := p.getDB(tx).WithContext(ctx).
		Table("course_purchases").
		Select("course_purchases.*, courses.course_title, courses.course_thumbnail, courses.category, " +
			"courses.course_level, users.name AS instructor_name").
		Joins("JOIN courses ON courses.id = course_purchases.course_id").
		Joins("LEFT JOIN instructor_courses ON instructor_courses.course_id = courses.id").
		Joins("LEFT JOIN users ON users.id = instructor_courses.instructor_id").
		Where("course_purchases.user_id = ? AND course_purchases.status = ?", userID, models.PurchaseCompleted).
		Order("course_purchases.created_at DESC").
		Scan(&purchases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list purchased courses: %w", err)
	}
	return purchases, nil
}

// ExpirePending fails every pending purchase created before the cutoff
func (p *PurchasePostgreSQL) ExpirePending(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error) {
	result := p.getDB(tx).WithContext(ctx).
		Model(&models.CoursePurchase{}).
		Where("status = ? AND created_at < ?", models.PurchasePending, before).
		Update("status", models.PurchaseFailed)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire pending purchases: %w", result.Error)
	}
	return result.RowsAffected, nil
}
