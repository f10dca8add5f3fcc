package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
	reportService services.ReportService
}

func NewCourseHandler(courseService services.CourseService, reportService services.ReportService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
		reportService: reportService,
	}
}

// CreateCourse creates a course owned by the current user
// @Router /course [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateCourseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating course", "user_id", userID)

	resp, err := h.courseService.CreateCourse(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Course created successfully.",
		"data":    resp,
	})
}

// GetInstructorCourses lists the current user's courses
// @Router /course [get]
func (h *CourseHandler) GetInstructorCourses(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	courses, err := h.courseService.GetInstructorCourses(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"courses": courses,
	})
}

// GetPublishedCourses is the public catalogue
// @Router /course/published-courses [get]
func (h *CourseHandler) GetPublishedCourses(c *gin.Context) {
	courses, err := h.courseService.GetPublishedCourses(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"courses": courses,
	})
}

// GetCourseByID
// @Router /course/{id} [get]
func (h *CourseHandler) GetCourseByID(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	course, err := h.courseService.GetCourseByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Course fetched successfully.",
		"course":  course,
	})
}

// EditCourse updates course fields from a multipart form, with an optional thumbnail
// @Router /course/{id} [put]
func (h *CourseHandler) EditCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.EditCourseRequest
	if err := c.ShouldBind(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	thumbnail, closeFn, ok := h.formUpload(c, "courseThumbnail")
	if !ok {
		return
	}
	defer closeFn()

	h.LogRequest(c, "Editing course", "course_id", id, "thumbnail", thumbnail != nil)

	course, err := h.courseService.EditCourse(c.Request.Context(), id, &req, thumbnail)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Course updated successfully.",
		"course":  course,
	})
}

// TogglePublish publishes or unpublishes a course via ?publish=true|false
// @Router /course/{id} [patch]
func (h *CourseHandler) TogglePublish(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	publish, err := strconv.ParseBool(c.Query("publish"))
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Query parameter 'publish' must be true or false", c.Query("publish"))
		return
	}

	course, err := h.courseService.TogglePublish(c.Request.Context(), id, publish)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	message := "Course is unpublished"
	if publish {
		message = "Course is published"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"course":  course,
	})
}

// ExportProgressReport downloads the course's student progress as xlsx
// @Router /course/{id}/progress-report [get]
func (h *CourseHandler) ExportProgressReport(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	report, err := h.reportService.ExportProgressReport(c.Request.Context(), userID, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, report.Content)
}
