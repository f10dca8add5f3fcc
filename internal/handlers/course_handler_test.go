package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/services"
)

func TestCourseHandler_CreateCourse(t *testing.T) {
	var gotInstructor uint
	courses := &stubCourseService{
		create: func(instructorID uint, req *services.CreateCourseRequest) (*services.CreateCourseResponse, error) {
			gotInstructor = instructorID
			return &services.CreateCourseResponse{
				Course:           &models.Course{ID: 10, CourseTitle: req.CourseTitle, Category: req.Category},
				InstructorCourse: &models.InstructorCourse{InstructorID: instructorID, CourseID: 10},
			}, nil
		},
	}
	h := NewCourseHandler(courses, nil, testLogger())

	r := gin.New()
	r.POST("/course", withUser(5), h.CreateCourse)

	w := perform(t, r, http.MethodPost, "/course", []byte(`{"courseTitle":"Go in Practice","category":"Programming"}`), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, uint(5), gotInstructor)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			Course           models.Course           `json:"course"`
			InstructorCourse models.InstructorCourse `json:"instructorCourse"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Course created successfully.", body.Message)
	assert.Equal(t, "Go in Practice", body.Data.Course.CourseTitle)
	assert.Equal(t, uint(10), body.Data.InstructorCourse.CourseID)
}

func TestCourseHandler_CreateCourseWithoutUser(t *testing.T) {
	h := NewCourseHandler(&stubCourseService{}, nil, testLogger())
	r := gin.New()
	r.POST("/course", h.CreateCourse)

	w := perform(t, r, http.MethodPost, "/course", []byte(`{}`), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCourseHandler_TogglePublishRejectsBadQuery(t *testing.T) {
	h := NewCourseHandler(&stubCourseService{}, nil, testLogger())
	r := gin.New()
	r.PATCH("/course/:id", withUser(1), h.TogglePublish)

	for _, q := range []string{"", "?publish=maybe"} {
		w := perform(t, r, http.MethodPatch, "/course/3"+q, nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestCourseHandler_ExportProgressReport(t *testing.T) {
	reports := &stubReportService{
		export: func(instructorID, courseID uint) (*services.ProgressReport, error) {
			if instructorID != 2 {
				return nil, services.ErrCourseNotFound
			}
			return &services.ProgressReport{Filename: "course-9-progress.xlsx", Content: []byte("PK-xlsx")}, nil
		},
	}
	h := NewCourseHandler(&stubCourseService{}, reports, testLogger())

	r := gin.New()
	r.GET("/owner/:id", withUser(2), h.ExportProgressReport)
	r.GET("/other/:id", withUser(4), h.ExportProgressReport)

	w := perform(t, r, http.MethodGet, "/owner/9", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="course-9-progress.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK-xlsx", w.Body.String())

	w = perform(t, r, http.MethodGet, "/other/9", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Course not found.")
}
