package handlers

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// withUser stands in for RequireAuth in handler tests
func withUser(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextUserID, id)
		c.Next()
	}
}

func perform(t *testing.T, r http.Handler, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Stubs embed the interface so tests only implement what they call.

type stubAuthService struct {
	services.AuthService
	login func(*services.LoginRequest) (*services.LoginResponse, error)
	parse func(string) (uint, error)
}

func (s *stubAuthService) Login(_ context.Context, req *services.LoginRequest) (*services.LoginResponse, error) {
	return s.login(req)
}

func (s *stubAuthService) ParseToken(token string) (uint, error) {
	return s.parse(token)
}

func (s *stubAuthService) TokenTTL() time.Duration {
	return 24 * time.Hour
}

type stubCourseService struct {
	services.CourseService
	create func(uint, *services.CreateCourseRequest) (*services.CreateCourseResponse, error)
}

func (s *stubCourseService) CreateCourse(_ context.Context, instructorID uint, req *services.CreateCourseRequest) (*services.CreateCourseResponse, error) {
	return s.create(instructorID, req)
}

type stubReportService struct {
	export func(instructorID, courseID uint) (*services.ProgressReport, error)
}

func (s *stubReportService) ExportProgressReport(_ context.Context, instructorID, courseID uint) (*services.ProgressReport, error) {
	return s.export(instructorID, courseID)
}

type stubProgressService struct {
	services.ProgressService
	setCompleted func(userID, courseID uint, completed bool) error
}

func (s *stubProgressService) SetCompleted(_ context.Context, userID, courseID uint, completed bool) error {
	return s.setCompleted(userID, courseID, completed)
}

type stubPurchaseService struct {
	services.PurchaseService
	checkout func(userID, courseID uint) (*services.CheckoutResponse, error)
	webhook  func(payload []byte, signature string) error
}

func (s *stubPurchaseService) InitiateCheckout(_ context.Context, userID, courseID uint) (*services.CheckoutResponse, error) {
	return s.checkout(userID, courseID)
}

func (s *stubPurchaseService) HandleWebhook(_ context.Context, payload []byte, signature string) error {
	return s.webhook(payload, signature)
}

type stubServiceManager struct {
	services.ServiceManager
	auth     services.AuthService
	purchase services.PurchaseService
	health   error
}

func (m *stubServiceManager) Auth() services.AuthService         { return m.auth }
func (m *stubServiceManager) User() services.UserService         { return nil }
func (m *stubServiceManager) Course() services.CourseService     { return &stubCourseService{} }
func (m *stubServiceManager) Lecture() services.LectureService   { return nil }
func (m *stubServiceManager) Progress() services.ProgressService { return &stubProgressService{} }
func (m *stubServiceManager) Purchase() services.PurchaseService { return m.purchase }
func (m *stubServiceManager) Report() services.ReportService     { return &stubReportService{} }
func (m *stubServiceManager) HealthCheck(context.Context) error  { return m.health }
