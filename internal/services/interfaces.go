package services

import (
	"context"
	"io"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
)

// ===== REQUEST/RESPONSE DTOs =====

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"-"`
}

// Upload is a file received from a multipart form.
type Upload struct {
	Filename string
	Reader   io.Reader
}

type UpdateProfileRequest struct {
	Name  *string `form:"name" validate:"omitempty,min=1,max=100"`
	Photo *Upload `form:"-"`
}

type CreateCourseRequest struct {
	CourseTitle string `json:"courseTitle" validate:"required,course_title"`
	Category    string `json:"category" validate:"required,max=100"`
}

type CreateCourseResponse struct {
	Course           *models.Course           `json:"course"`
	InstructorCourse *models.InstructorCourse `json:"instructorCourse"`
}

// EditCourseRequest is bound from a multipart form; absent fields are left unchanged.
type EditCourseRequest struct {
	CourseTitle *string  `form:"courseTitle" json:"courseTitle" validate:"omitempty,course_title"`
	SubTitle    *string  `form:"subTitle" json:"subTitle" validate:"omitempty,max=300"`
	Description *string  `form:"description" json:"description"`
	Category    *string  `form:"category" json:"category" validate:"omitempty,min=1,max=100"`
	CourseLevel *string  `form:"courseLevel" json:"courseLevel" validate:"omitempty,course_level"`
	CoursePrice *float64 `form:"coursePrice" json:"coursePrice" validate:"omitempty,min=0"`
}

type CreateLectureRequest struct {
	LectureTitle string `json:"lectureTitle" validate:"required,course_title"`
}

type EditLectureRequest struct {
	LectureTitle  *string           `json:"lectureTitle"`
	VideoInfo     *models.VideoInfo `json:"uploadVidInfo"`
	IsPreviewFree *bool             `json:"isFree"`
}

// CheckoutRequest accepts the course id as courseId, or id as older clients send it.
type CheckoutRequest struct {
	CourseID uint `json:"courseId"`
	ID       uint `json:"id"`
}

func (r CheckoutRequest) Course() uint {
	if r.CourseID != 0 {
		return r.CourseID
	}
	return r.ID
}

type CheckoutResponse struct {
	URL      string                 `json:"url"`
	Purchase *models.CoursePurchase `json:"purchase"`
}

type ProgressResponse struct {
	CourseDetails *models.CourseDetail     `json:"courseDetails"`
	Progress      []models.LectureProgress `json:"progress"`
	Completed     bool                     `json:"completed"`
}

type CourseDetailWithStatus struct {
	Course    *models.CourseDetail `json:"course"`
	Purchased bool                 `json:"purchased"`
}

type ProgressReport struct {
	Filename string
	Rows     []*models.ProgressReportRow
	Content  []byte
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	IssueToken(userID uint) (string, error)
	ParseToken(token string) (uint, error)
	TokenTTL() time.Duration
}

type UserService interface {
	GetProfile(ctx context.Context, userID uint) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uint, req *UpdateProfileRequest) (*models.User, error)
}

type CourseService interface {
	CreateCourse(ctx context.Context, instructorID uint, req *CreateCourseRequest) (*CreateCourseResponse, error)
	GetInstructorCourses(ctx context.Context, instructorID uint) ([]*models.Course, error)
	GetCourseByID(ctx context.Context, courseID uint) (*models.Course, error)
	EditCourse(ctx context.Context, courseID uint, req *EditCourseRequest, thumbnail *Upload) (*models.Course, error)
	TogglePublish(ctx context.Context, courseID uint, publish bool) (*models.Course, error)
	GetPublishedCourses(ctx context.Context) ([]*models.CourseWithInstructor, error)
}

type LectureService interface {
	CreateLecture(ctx context.Context, courseID uint, req *CreateLectureRequest) (*models.Lecture, error)
	GetCourseLectures(ctx context.Context, courseID uint) ([]*models.CourseLectureView, error)
	EditLecture(ctx context.Context, courseID, lectureID uint, req *EditLectureRequest) (*models.Lecture, error)
	RemoveLecture(ctx context.Context, courseID, lectureID uint) error
	GetLectureByID(ctx context.Context, lectureID uint) (*models.Lecture, error)
	UploadVideo(ctx context.Context, upload *Upload) (*models.MediaAsset, error)
}

// ProgressService tracks which lectures a user has viewed and derives course
// completion. SetCompleted(false) is a destructive reset: the whole viewed set
// is cleared, not just the flag.
type ProgressService interface {
	RecordLectureViewed(ctx context.Context, userID, courseID, lectureID uint) (*models.CourseProgress, error)
	GetProgress(ctx context.Context, userID, courseID uint) (*ProgressResponse, error)
	SetCompleted(ctx context.Context, userID, courseID uint, completed bool) error
}

type PurchaseService interface {
	InitiateCheckout(ctx context.Context, userID, courseID uint) (*CheckoutResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	ConfirmPayment(ctx context.Context, sessionID string, amount float64) (*models.CoursePurchase, error)
	GetPurchaseStatus(ctx context.Context, userID, courseID uint) (bool, error)
	GetCourseDetailWithPurchaseStatus(ctx context.Context, userID, courseID uint) (*CourseDetailWithStatus, error)
	ListPurchasedCourses(ctx context.Context, userID uint) ([]*models.PurchasedCourse, error)
	SweepStalePending(ctx context.Context, olderThan time.Duration) (int64, error)
}

type ReportService interface {
	ExportProgressReport(ctx context.Context, instructorID, courseID uint) (*ProgressReport, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Course() CourseService
	Lecture() LectureService
	Progress() ProgressService
	Purchase() PurchaseService
	Report() ReportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
