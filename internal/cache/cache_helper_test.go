package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedCourse struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheManager(client), mr
}

func TestCacheOrExecute(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return cachedCourse{ID: 1, Title: "Go"}, nil
	}

	var got cachedCourse
	require.NoError(t, cm.Course.CacheOrExecute(ctx, CourseKey(1), &got, time.Minute, fetch))
	assert.Equal(t, "Go", got.Title)
	assert.True(t, mr.Exists("course:id:1"))

	var again cachedCourse
	require.NoError(t, cm.Course.CacheOrExecute(ctx, CourseKey(1), &again, time.Minute, fetch))
	assert.Equal(t, got, again)
	assert.Equal(t, 1, calls)

	mr.FastForward(2 * time.Minute)
	require.NoError(t, cm.Course.CacheOrExecute(ctx, CourseKey(1), &again, time.Minute, fetch))
	assert.Equal(t, 2, calls)
}

func TestInvalidateCourseCache(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.Course.Set(ctx, CourseKey(3), cachedCourse{ID: 3}, time.Minute))
	require.NoError(t, cm.Course.Set(ctx, CourseDetailKey(3), cachedCourse{ID: 3}, time.Minute))
	require.NoError(t, cm.Course.Set(ctx, InstructorKey(9), []uint{3}, time.Minute))
	require.NoError(t, cm.Lecture.Set(ctx, LectureListKey(3)+":all", []uint{1, 2}, time.Minute))
	require.NoError(t, cm.Lecture.Set(ctx, LectureListKey(4)+":all", []uint{5}, time.Minute))
	require.NoError(t, cm.Catalog.Set(ctx, PublishedCatalogKey, []uint{3}, time.Minute))

	InvalidateCourseCache(ctx, cm, 3)

	assert.False(t, mr.Exists("course:id:3"))
	assert.False(t, mr.Exists("course:detail:3"))
	assert.False(t, mr.Exists("course:instructor:9"))
	assert.False(t, mr.Exists("lecture:course:3:list:all"))
	assert.False(t, mr.Exists("catalog:published"))
	assert.True(t, mr.Exists("lecture:course:4:list:all"))
}

func TestCacheWithoutRedis(t *testing.T) {
	cm := NewCacheManager(nil)
	ctx := context.Background()

	assert.False(t, cm.Enabled())
	assert.ErrorIs(t, cm.HealthCheck(ctx), ErrCacheNotAvailable)

	var dest cachedCourse
	assert.ErrorIs(t, cm.Course.Get(ctx, "id:1", &dest), ErrCacheNotAvailable)
	assert.NoError(t, cm.Course.Set(ctx, "id:1", cachedCourse{ID: 1}, time.Minute))

	calls := 0
	for i := 0; i < 2; i++ {
		require.NoError(t, cm.Course.CacheOrExecute(ctx, "id:1", &dest, time.Minute, func() (interface{}, error) {
			calls++
			return cachedCourse{ID: 1, Title: "Go"}, nil
		}))
	}
	assert.Equal(t, 2, calls)
	assert.Equal(t, "Go", dest.Title)

	InvalidateCourseCache(ctx, cm, 1)
}

func TestCacheStats(t *testing.T) {
	cm, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.Course.Set(ctx, CourseKey(1), cachedCourse{ID: 1}, time.Minute))
	require.NoError(t, cm.Course.Set(ctx, CourseKey(2), cachedCourse{ID: 2}, time.Minute))

	stats := cm.Stats(ctx)
	assert.Equal(t, true, stats["cache_enabled"])
	assert.Equal(t, 2, stats["course:count"])
	assert.Equal(t, 0, stats["user:count"])
}
