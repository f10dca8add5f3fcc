package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
)

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
	}
}

// GetProgress returns course details with the caller's viewed lectures
// @Router /course-progress/{id} [get]
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	resp, err := h.progressService.GetProgress(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    resp,
	})
}

// RecordLectureViewed
// @Router /course-progress/{id}/lecture/{lectureId}/view [post]
func (h *ProgressHandler) RecordLectureViewed(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	lectureID := h.parseIDParam(c, "lectureId")
	if lectureID == 0 {
		return
	}

	if _, err := h.progressService.RecordLectureViewed(c.Request.Context(), userID, courseID, lectureID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Lecture progress updated successfully.",
	})
}

// MarkCompleted
// @Router /course-progress/{id}/complete [post]
func (h *ProgressHandler) MarkCompleted(c *gin.Context) {
	h.setCompleted(c, true, "Course marked as completed.")
}

// MarkIncomplete clears every viewed lecture of the course
// @Router /course-progress/{id}/incomplete [post]
func (h *ProgressHandler) MarkIncomplete(c *gin.Context) {
	h.setCompleted(c, false, "Course marked as incomplete.")
}

func (h *ProgressHandler) setCompleted(c *gin.Context, completed bool, message string) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	if err := h.progressService.SetCompleted(c.Request.Context(), userID, courseID, completed); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}
