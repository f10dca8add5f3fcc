package models

import (
	"time"
)

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseFailed    PurchaseStatus = "failed"
)

type CoursePurchase struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CourseID  uint           `json:"course_id" gorm:"not null;index:idx_purchase_user_course"`
	UserID    uint           `json:"user_id" gorm:"not null;index:idx_purchase_user_course"`
	Amount    float64        `json:"amount" gorm:"not null"`
	Status    PurchaseStatus `json:"status" gorm:"size:20;not null;default:pending;index"`
	PaymentID string         `json:"payment_id" gorm:"uniqueIndex;not null;size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CoursePurchase) TableName() string {
	return "course_purchases"
}

// PurchasedCourse is a completed purchase joined with course and instructor data.
type PurchasedCourse struct {
	CoursePurchase
	CourseTitle     string       `json:"course_title"`
	CourseThumbnail *string      `json:"course_thumbnail"`
	Category        string       `json:"category"`
	CourseLevel     *CourseLevel `json:"course_level"`
	InstructorName  *string      `json:"instructor_name"`
}

// CheckoutSession is what the payment processor returns for a new checkout.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutItem is the single line item sent to the payment processor.
type CheckoutItem struct {
	CourseID    uint
	UserID      uint
	Title       string
	Thumbnail   *string
	AmountMinor int64
}

// PaymentEvent is a verified webhook notification from the payment processor.
type PaymentEvent struct {
	ID          string
	Type        string
	SessionID   string
	AmountTotal int64
	Metadata    map[string]string
}

const PaymentEventCheckoutCompleted = "checkout.session.completed"
