package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/lms-service/internal/services"
)

func TestProgressHandler_SetCompleted(t *testing.T) {
	type call struct {
		userID, courseID uint
		completed        bool
	}
	var calls []call
	progress := &stubProgressService{
		setCompleted: func(userID, courseID uint, completed bool) error {
			if courseID == 404 {
				return services.ErrCourseNotFound
			}
			calls = append(calls, call{userID, courseID, completed})
			return nil
		},
	}
	h := NewProgressHandler(progress, testLogger())
	r := gin.New()
	r.POST("/course-progress/:id/complete", withUser(6), h.MarkCompleted)
	r.POST("/course-progress/:id/incomplete", withUser(6), h.MarkIncomplete)

	w := perform(t, r, http.MethodPost, "/course-progress/3/complete", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Course marked as completed.")

	w = perform(t, r, http.MethodPost, "/course-progress/3/incomplete", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Course marked as incomplete.")

	assert.Equal(t, []call{{6, 3, true}, {6, 3, false}}, calls)

	w = perform(t, r, http.MethodPost, "/course-progress/404/complete", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
