package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// Key builders shared by repositories so reads and invalidations agree.
func CourseKey(courseID uint) string       { return fmt.Sprintf("id:%d", courseID) }
func CourseDetailKey(courseID uint) string { return fmt.Sprintf("detail:%d", courseID) }
func InstructorKey(userID uint) string     { return fmt.Sprintf("instructor:%d", userID) }
func LectureKey(lectureID uint) string     { return fmt.Sprintf("id:%d", lectureID) }
func LectureListKey(courseID uint) string  { return fmt.Sprintf("course:%d:list", courseID) }
func ProfileKey(userID uint) string        { return fmt.Sprintf("profile:%d", userID) }

const PublishedCatalogKey = "published"

// InvalidateCourseCache drops every cached view of a course.
func InvalidateCourseCache(ctx context.Context, cm *CacheManager, courseID uint) {
	SafeDelete(ctx, cm.Course, CourseKey(courseID), CourseDetailKey(courseID))
	SafeInvalidatePattern(ctx, cm.Lecture, LectureListKey(courseID)+":*")
	SafeInvalidatePattern(ctx, cm.Course, "instructor:*")
	SafeDelete(ctx, cm.Catalog, PublishedCatalogKey)
}

// InvalidateLectureCache drops a lecture and the views of the course holding it.
func InvalidateLectureCache(ctx context.Context, cm *CacheManager, courseID, lectureID uint) {
	SafeDelete(ctx, cm.Lecture, LectureKey(lectureID))
	SafeInvalidatePattern(ctx, cm.Lecture, LectureListKey(courseID)+":*")
	SafeDelete(ctx, cm.Course, CourseDetailKey(courseID))
}

// InvalidateUserCache drops the cached profile of a user and the course views
// that carry instructor name and photo.
func InvalidateUserCache(ctx context.Context, cm *CacheManager, userID uint) {
	SafeDelete(ctx, cm.User, ProfileKey(userID))
	SafeInvalidatePattern(ctx, cm.Course, "detail:*")
	SafeDelete(ctx, cm.Catalog, PublishedCatalogKey)
}
