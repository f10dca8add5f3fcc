package repositories

import (
	"context"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/models"
)

// Every method takes an optional tx; nil means the repository's own connection.

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetProfile(ctx context.Context, tx *gorm.DB, id uint) (*models.UserProfile, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, id uint, updates map[string]interface{}) error
}

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	LinkInstructor(ctx context.Context, tx *gorm.DB, instructorID, courseID uint) (*models.InstructorCourse, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	GetWithInstructor(ctx context.Context, tx *gorm.DB, id uint) (*models.CourseWithInstructor, error)
	GetByInstructor(ctx context.Context, tx *gorm.DB, instructorID uint) ([]*models.Course, error)
	GetInstructorID(ctx context.Context, tx *gorm.DB, courseID uint) (uint, error)
	ListPublished(ctx context.Context, tx *gorm.DB) ([]*models.CourseWithInstructor, error)
	Update(ctx context.Context, tx *gorm.DB, id uint, updates map[string]interface{}) error
	SetPublished(ctx context.Context, tx *gorm.DB, id uint, published bool) error
	Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}

// LectureOrder selects the ordering of a course's lecture list.
type LectureOrder string

const (
	LectureOrderCreated LectureOrder = "created_at"
	LectureOrderID      LectureOrder = "id"
)

type LectureRepository interface {
	Create(ctx context.Context, tx *gorm.DB, lecture *models.Lecture) error
	LinkToCourse(ctx context.Context, tx *gorm.DB, courseID, lectureID uint) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lecture, error)
	GetByCourse(ctx context.Context, tx *gorm.DB, courseID uint, order LectureOrder) ([]*models.CourseLectureView, error)
	GetIDsByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]uint, error)
	Update(ctx context.Context, tx *gorm.DB, courseID, lectureID uint, updates map[string]interface{}) error
	SetPreviewFree(ctx context.Context, tx *gorm.DB, courseID, lectureID uint, isFree bool) error
	UnlockAllPreviews(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, courseID, lectureID uint) error
}

type EnrollmentRepository interface {
	// Enroll inserts the pair and reports whether a new row was created.
	Enroll(ctx context.Context, tx *gorm.DB, userID, courseID uint) (bool, error)
	ListStudents(ctx context.Context, tx *gorm.DB, courseID uint) ([]*EnrolledStudent, error)
}

type ProgressRepository interface {
	Get(ctx context.Context, tx *gorm.DB, userID, courseID uint) (*models.CourseProgress, error)
	Create(ctx context.Context, tx *gorm.DB, progress *models.CourseProgress) error
	Save(ctx context.Context, tx *gorm.DB, progress *models.CourseProgress) error
	Reset(ctx context.Context, tx *gorm.DB, userID, courseID uint) (int64, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.CourseProgress, error)
}

type PurchaseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, purchase *models.CoursePurchase) error
	GetByPaymentID(ctx context.Context, tx *gorm.DB, paymentID string) (*models.CoursePurchase, error)
	HasCompleted(ctx context.Context, tx *gorm.DB, userID, courseID uint) (bool, error)
	MarkCompleted(ctx context.Context, tx *gorm.DB, id uint, amount float64) error
	ListCompletedByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.PurchasedCourse, error)
	ExpirePending(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error)
}

// MediaRepository stores binary assets on the media host.
type MediaRepository interface {
	UploadImage(ctx context.Context, filename string, r io.Reader) (*models.MediaAsset, error)
	UploadVideo(ctx context.Context, filename string, r io.Reader) (*models.MediaAsset, error)
	DeleteImage(ctx context.Context, publicID string) error
	DeleteVideo(ctx context.Context, publicID string) error
}

// PaymentGateway is the checkout and webhook surface of the payment processor.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, item models.CheckoutItem) (*models.CheckoutSession, error)
	ParseWebhookEvent(payload []byte, signature string) (*models.PaymentEvent, error)
}

// EnrolledStudent is a user enrolled in a course, for reporting.
type EnrolledStudent struct {
	UserID     uint      `json:"user_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	EnrolledAt time.Time `json:"enrolled_at"`
}
