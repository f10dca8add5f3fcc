package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/lms-service/internal/events"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

func TestCourseService_CreateCourseLinksInstructor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.seedUser(t, "Ines")
	svc := env.courseService()

	resp, err := svc.CreateCourse(ctx, instructor.ID, &CreateCourseRequest{CourseTitle: "  Go  ", Category: "Programming"})
	require.NoError(t, err)
	assert.Equal(t, "Go", resp.Course.CourseTitle)
	assert.Equal(t, instructor.ID, resp.InstructorCourse.InstructorID)
	assert.Equal(t, resp.Course.ID, resp.InstructorCourse.CourseID)

	owner, err := env.repo.Course().GetInstructorID(ctx, nil, resp.Course.ID)
	require.NoError(t, err)
	assert.Equal(t, instructor.ID, owner)

	courses, err := svc.GetInstructorCourses(ctx, instructor.ID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Len(t, env.publisher.EventsOfType(events.EventCourseCreated), 1)
}

func TestCourseService_CreateCourseValidation(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.seedUser(t, "Ines")

	_, err := env.courseService().CreateCourse(context.Background(), instructor.ID, &CreateCourseRequest{CourseTitle: " ", Category: "x"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	var count int64
	require.NoError(t, env.db.Model(&models.Course{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCourseService_GetInstructorCoursesEmpty(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.seedUser(t, "Ines")

	_, err := env.courseService().GetInstructorCourses(context.Background(), instructor.ID)
	assert.ErrorIs(t, err, ErrNoInstructorCourses)
}

func TestCourseService_EditCourseReplacesThumbnail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.seedUser(t, "Ines")
	course, _ := env.seedCourse(t, instructor, 100, 0)
	svc := env.courseService()

	level := "Beginner"
	updated, err := svc.EditCourse(ctx, course.ID, &EditCourseRequest{
		SubTitle:    ptr("Intro"),
		CourseLevel: &level,
	}, upload("a.png", "png"))
	require.NoError(t, err)
	require.NotNil(t, updated.CourseThumbnail)
	assert.Equal(t, "Intro", *updated.SubTitle)
	assert.Equal(t, models.LevelBeginner, *updated.CourseLevel)
	assert.Empty(t, env.media.deleted)

	first := *updated.CourseThumbnail
	env.media.deleteErr = errors.New("media host down")
	updated, err = svc.EditCourse(ctx, course.ID, &EditCourseRequest{}, upload("b.png", "png"))
	require.NoError(t, err)
	assert.NotEqual(t, first, *updated.CourseThumbnail)

	_, err = svc.EditCourse(ctx, course.ID, &EditCourseRequest{CourseLevel: ptr("Expert")}, nil)
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = svc.EditCourse(ctx, 9999, &EditCourseRequest{}, nil)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseService_TogglePublish(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.seedUser(t, "Ines")
	course, _ := env.seedCourse(t, instructor, 100, 1)
	svc := env.courseService()

	published, err := svc.GetPublishedCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, published)

	updated, err := svc.TogglePublish(ctx, course.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsPublished)

	published, err = svc.GetPublishedCourses(ctx)
	require.NoError(t, err)
	require.Len(t, published, 1)
	require.NotNil(t, published[0].InstructorName)
	assert.Equal(t, "Ines", *published[0].InstructorName)

	_, err = svc.TogglePublish(ctx, 9999, true)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}
