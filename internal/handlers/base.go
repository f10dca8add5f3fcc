package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

type ErrorResponse = models.ErrorResponse

const contextUserID = "user_id"

// errorStatus maps a service error to its response. Order matters for
// sentinels that share a message.
var errorStatus = []struct {
	err     error
	status  int
	message string
}{
	{services.ErrInvalidToken, http.StatusUnauthorized, "Authentication failed. Invalid or expired token."},
	{services.ErrTokenExpired, http.StatusUnauthorized, "Authentication failed. Invalid or expired token."},

	{services.ErrNoInstructorCourses, http.StatusNotFound, "No courses found for the instructor."},
	{services.ErrUserNotFound, http.StatusNotFound, "Profile not found!"},
	{services.ErrCourseNotFound, http.StatusNotFound, "Course not found."},
	{services.ErrLectureNotFound, http.StatusNotFound, "Lecture not found."},
	{services.ErrPurchaseNotFound, http.StatusNotFound, "Purchase not found"},

	{services.ErrUserAlreadyExists, http.StatusBadRequest, "User already exists"},
	{services.ErrEmailNotRegistered, http.StatusBadRequest, "User not found"},
	{services.ErrIncorrectPassword, http.StatusBadRequest, "Incorrect Password!!"},
	{services.ErrCourseAlreadyPurchased, http.StatusBadRequest, "Course already purchased!"},
	{services.ErrCheckoutSessionFailed, http.StatusBadRequest, "Error while creating session"},
	{services.ErrInvalidWebhookSignature, http.StatusBadRequest, "Webhook Error: invalid signature"},
	{services.ErrNoProfileChanges, http.StatusBadRequest, "Nothing to update"},
}

// BaseHandler carries what every handler shares
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) log(c *gin.Context) utils.Logger {
	return utils.FromGin(c, h.logger)
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	h.log(c).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	h.log(c).Error(msg, append(args, "error", err)...)
}

// RespondWithError writes the standard error envelope
func (h *BaseHandler) RespondWithError(c *gin.Context, status int, message string, details interface{}) {
	resp := ErrorResponse{
		Success:   false,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
	if requestID, ok := c.Get("request_id"); ok {
		resp.RequestID, _ = requestID.(string)
	}
	c.AbortWithStatusJSON(status, resp)
}

// handleServiceError translates a service error into an HTTP response.
// Unknown errors are logged and reported as a generic 500.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", verrs)
		return
	}

	var bre *services.BusinessRuleError
	if errors.As(err, &bre) {
		h.RespondWithError(c, http.StatusBadRequest, bre.Message, bre.Rule)
		return
	}

	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			h.RespondWithError(c, e.status, e.message, nil)
			return
		}
	}

	h.LogError(c, err, "Unhandled service error", "path", c.FullPath())
	_ = c.Error(err)
	h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", nil)
}

// parseIDParam reads a positive numeric path parameter. It writes a 400 and
// returns 0 when the value is invalid.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid "+name, c.Param(name))
		return 0
	}
	return uint(id)
}

// currentUserID returns the authenticated user. It writes a 401 when absent.
func (h *BaseHandler) currentUserID(c *gin.Context) (uint, bool) {
	id, ok := userIDFromContext(c)
	if !ok {
		h.RespondWithError(c, http.StatusUnauthorized, "User not authenticated!", nil)
		return 0, false
	}
	return id, true
}

func (h *BaseHandler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return false
	}
	return true
}

// formUpload opens an optional multipart file. A missing field yields nil.
func (h *BaseHandler) formUpload(c *gin.Context, field string) (*services.Upload, func(), bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, true
		}
		h.RespondWithError(c, http.StatusBadRequest, "Invalid multipart form", err.Error())
		return nil, nil, false
	}

	f, err := fh.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Unable to read "+field, err.Error())
		return nil, nil, false
	}
	return &services.Upload{Filename: fh.Filename, Reader: f}, func() { f.Close() }, true
}
