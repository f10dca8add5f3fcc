package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
)

type LectureHandler struct {
	BaseHandler
	lectureService services.LectureService
}

func NewLectureHandler(lectureService services.LectureService, logger utils.Logger) *LectureHandler {
	return &LectureHandler{
		BaseHandler:    NewBaseHandler(logger),
		lectureService: lectureService,
	}
}

// CreateLecture
// @Router /course/{id}/lectures [post]
func (h *LectureHandler) CreateLecture(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	var req services.CreateLectureRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lecture, err := h.lectureService.CreateLecture(c.Request.Context(), courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Lecture created successfully.",
		"lecture": lecture,
	})
}

// GetCourseLectures
// @Router /course/{id}/lectures [get]
func (h *LectureHandler) GetCourseLectures(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	lectures, err := h.lectureService.GetCourseLectures(c.Request.Context(), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Lectures retrieved successfully.",
		"lectures": lectures,
	})
}

// EditLecture
// @Router /course/{id}/lectures/{lectureId} [post]
func (h *LectureHandler) EditLecture(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	lectureID := h.parseIDParam(c, "lectureId")
	if lectureID == 0 {
		return
	}

	var req services.EditLectureRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lecture, err := h.lectureService.EditLecture(c.Request.Context(), courseID, lectureID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Lecture edited successfully.",
		"lecture": lecture,
	})
}

// RemoveLecture
// @Router /course/{id}/lectures/{lectureId} [delete]
func (h *LectureHandler) RemoveLecture(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	lectureID := h.parseIDParam(c, "lectureId")
	if lectureID == 0 {
		return
	}

	h.LogRequest(c, "Removing lecture", "course_id", courseID, "lecture_id", lectureID)

	if err := h.lectureService.RemoveLecture(c.Request.Context(), courseID, lectureID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Lecture removed successfully.",
	})
}

// GetLectureByID
// @Router /course/{id}/lectures/{lectureId} [get]
func (h *LectureHandler) GetLectureByID(c *gin.Context) {
	lectureID := h.parseIDParam(c, "lectureId")
	if lectureID == 0 {
		return
	}

	lecture, err := h.lectureService.GetLectureByID(c.Request.Context(), lectureID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Lecture retrieved successfully.",
		"lecture": lecture,
	})
}

// UploadVideo forwards a multipart video to the media host
// @Router /media/upload-video [post]
func (h *LectureHandler) UploadVideo(c *gin.Context) {
	upload, closeFn, ok := h.formUpload(c, "file")
	if !ok {
		return
	}
	defer closeFn()
	if upload == nil {
		h.RespondWithError(c, http.StatusBadRequest, "No file uploaded", nil)
		return
	}

	h.LogRequest(c, "Uploading video", "filename", upload.Filename)

	asset, err := h.lectureService.UploadVideo(c.Request.Context(), upload)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "File uploaded successfully.",
		"data":    asset,
	})
}
