package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/lms-service/internal/config"
	"github.com/SAP-F-2025/lms-service/internal/events"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

// fakeMedia records uploads and deletions instead of calling the media host.
type fakeMedia struct {
	mu        sync.Mutex
	uploads   []string
	deleted   []string
	uploadErr error
	deleteErr error
	seq       int
}

func (m *fakeMedia) upload(kind, filename string, r io.Reader) (*models.MediaAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	m.seq++
	id := fmt.Sprintf("%s%d", kind, m.seq)
	m.uploads = append(m.uploads, filename)
	url := fmt.Sprintf("https://media.test/%s/upload/v1/%s.bin", kind, id)
	return &models.MediaAsset{URL: url, SecureURL: url, PublicID: id}, nil
}

func (m *fakeMedia) UploadImage(ctx context.Context, filename string, r io.Reader) (*models.MediaAsset, error) {
	return m.upload("image", filename, r)
}

func (m *fakeMedia) UploadVideo(ctx context.Context, filename string, r io.Reader) (*models.MediaAsset, error) {
	return m.upload("video", filename, r)
}

func (m *fakeMedia) DeleteImage(ctx context.Context, publicID string) error {
	return m.delete(publicID)
}

func (m *fakeMedia) DeleteVideo(ctx context.Context, publicID string) error {
	return m.delete(publicID)
}

func (m *fakeMedia) delete(publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, publicID)
	return nil
}

// fakePayment hands out sequential session ids and returns a queued webhook event.
type fakePayment struct {
	mu       sync.Mutex
	seq      int
	items    []models.CheckoutItem
	noURL    bool
	err      error
	event    *models.PaymentEvent
	parseErr error
}

func (p *fakePayment) CreateCheckoutSession(ctx context.Context, item models.CheckoutItem) (*models.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.seq++
	p.items = append(p.items, item)
	session := &models.CheckoutSession{ID: fmt.Sprintf("cs_test_%d", p.seq)}
	if !p.noURL {
		session.URL = "https://checkout.test/" + session.ID
	}
	return session, nil
}

func (p *fakePayment) ParseWebhookEvent(payload []byte, signature string) (*models.PaymentEvent, error) {
	if p.parseErr != nil {
		return nil, p.parseErr
	}
	return p.event, nil
}

type testEnv struct {
	db        *gorm.DB
	repo      *postgres.PostgreSQLRepository
	media     *fakeMedia
	payment   *fakePayment
	publisher *events.MockEventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.InstructorCourse{},
		&models.Lecture{},
		&models.CourseLecture{},
		&models.UserCourse{},
		&models.CourseProgress{},
		&models.CoursePurchase{},
	))

	media := &fakeMedia{}
	payment := &fakePayment{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testEnv{
		db: db,
		repo: postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{
			DB:             db,
			Media:          media,
			PaymentGateway: payment,
		}),
		media:     media,
		payment:   payment,
		publisher: events.NewMockEventPublisher(log),
		logger:    log,
		validator: validator.New(),
	}
}

func (e *testEnv) authService() *authService {
	return NewAuthService(e.repo, e.db, e.logger, e.validator, config.AuthConfig{
		JWTSecret:  "test-secret",
		BcryptCost: 4,
	}).(*authService)
}

func (e *testEnv) userService() UserService {
	return NewUserService(e.repo, e.db, e.logger, e.validator)
}

func (e *testEnv) courseService() CourseService {
	return NewCourseService(e.repo, e.db, e.logger, e.validator, e.publisher)
}

func (e *testEnv) lectureService() LectureService {
	return NewLectureService(e.repo, e.db, e.logger, e.validator)
}

func (e *testEnv) progressService() ProgressService {
	return NewProgressService(e.repo, e.db, e.logger, e.validator, e.publisher)
}

func (e *testEnv) purchaseService() *purchaseService {
	return NewPurchaseService(e.repo, e.db, e.logger, e.validator, e.publisher).(*purchaseService)
}

func (e *testEnv) reportService() ReportService {
	return NewReportService(e.repo, e.db, e.logger)
}

func (e *testEnv) seedUser(t *testing.T, name string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "x",
		Role:     models.RoleStudent,
	}
	require.NoError(t, e.repo.User().Create(context.Background(), nil, user))
	return user
}

// seedCourse creates a priced course owned by instructor with the given number of lectures.
func (e *testEnv) seedCourse(t *testing.T, instructor *models.User, price float64, lectures int) (*models.Course, []uint) {
	t.Helper()
	ctx := context.Background()

	resp, err := e.courseService().CreateCourse(ctx, instructor.ID, &CreateCourseRequest{
		CourseTitle: "Go in Practice",
		Category:    "Programming",
	})
	require.NoError(t, err)

	_, err = e.courseService().EditCourse(ctx, resp.Course.ID, &EditCourseRequest{CoursePrice: &price}, nil)
	require.NoError(t, err)

	ids := make([]uint, 0, lectures)
	for i := 0; i < lectures; i++ {
		lecture, err := e.lectureService().CreateLecture(ctx, resp.Course.ID, &CreateLectureRequest{
			LectureTitle: fmt.Sprintf("Lecture %d", i+1),
		})
		require.NoError(t, err)
		ids = append(ids, lecture.ID)
	}

	course, err := e.repo.Course().GetByID(ctx, nil, resp.Course.ID)
	require.NoError(t, err)
	return course, ids
}

func upload(name, body string) *Upload {
	return &Upload{Filename: name, Reader: bytes.NewBufferString(body)}
}

func ptr[T any](v T) *T { return &v }

// lateCheckRepo hides existing rows from the read-before-write checks, as when
// a concurrent request inserts between the check and the write.
type lateCheckRepo struct {
	repositories.Repository
}

func (r lateCheckRepo) User() repositories.UserRepository {
	return lateCheckUsers{r.Repository.User()}
}

func (r lateCheckRepo) Progress() repositories.ProgressRepository {
	return lateCheckProgress{r.Repository.Progress()}
}

type lateCheckUsers struct {
	repositories.UserRepository
}

func (lateCheckUsers) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	return false, nil
}

type lateCheckProgress struct {
	repositories.ProgressRepository
}

func (lateCheckProgress) Get(ctx context.Context, tx *gorm.DB, userID, courseID uint) (*models.CourseProgress, error) {
	return nil, repositories.ErrNotFound
}

var _ repositories.MediaRepository = (*fakeMedia)(nil)
var _ repositories.PaymentGateway = (*fakePayment)(nil)
