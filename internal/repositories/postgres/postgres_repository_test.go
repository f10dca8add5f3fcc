package postgres

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

func newTestRepository(t *testing.T) (*PostgreSQLRepository, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()
	return openTestRepository(t, fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()), 1)
}

// newWALTestRepository uses an on-disk WAL database so a reader can run
// while another connection holds an open write transaction.
func newWALTestRepository(t *testing.T) (*PostgreSQLRepository, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "lms.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	return openTestRepository(t, dsn, 2)
}

func openTestRepository(t *testing.T, dsn string, maxConns int) (*PostgreSQLRepository, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(maxConns)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.InstructorCourse{},
		&models.Lecture{},
		&models.CourseLecture{},
		&models.UserCourse{},
		&models.CoursePurchase{},
		&models.CourseProgress{},
	))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewPostgreSQLRepository(RepositoryConfig{DB: db, RedisClient: client}), db, mr
}

func seedCourseWithLectures(t *testing.T, repo *PostgreSQLRepository, titles ...string) (*models.Course, []uint) {
	t.Helper()
	ctx := context.Background()

	instructor := &models.User{Name: "Grace", Email: fmt.Sprintf("grace-%d@example.com", time.Now().UnixNano()), Password: "x", Role: models.RoleInstructor}
	require.NoError(t, repo.User().Create(ctx, nil, instructor))

	course := &models.Course{CourseTitle: "Databases", Category: "CS"}
	require.NoError(t, repo.Course().Create(ctx, nil, course))
	_, err := repo.Course().LinkInstructor(ctx, nil, instructor.ID, course.ID)
	require.NoError(t, err)

	var ids []uint
	for _, title := range titles {
		lecture := &models.Lecture{LectureTitle: title}
		require.NoError(t, repo.Lecture().Create(ctx, nil, lecture))
		require.NoError(t, repo.Lecture().LinkToCourse(ctx, nil, course.ID, lecture.ID))
		ids = append(ids, lecture.ID)
	}
	return course, ids
}

func TestCourseCacheAside(t *testing.T) {
	repo, db, mr := newTestRepository(t)
	ctx := context.Background()
	course, _ := seedCourseWithLectures(t, repo)

	got, err := repo.Course().GetByID(ctx, nil, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Databases", got.CourseTitle)
	assert.True(t, mr.Exists(fmt.Sprintf("course:id:%d", course.ID)))

	// A write behind the repository's back is not seen while the entry lives
	require.NoError(t, db.Model(&models.Course{}).Where("id = ?", course.ID).Update("course_title", "Stale").Error)
	got, err = repo.Course().GetByID(ctx, nil, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Databases", got.CourseTitle)

	// Writes through the repository invalidate
	require.NoError(t, repo.Course().Update(ctx, nil, course.ID, map[string]interface{}{"course_title": "Relational Databases"}))
	assert.False(t, mr.Exists(fmt.Sprintf("course:id:%d", course.ID)))

	got, err = repo.Course().GetByID(ctx, nil, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Relational Databases", got.CourseTitle)

	_, err = repo.Course().GetByID(ctx, nil, 9999)
	assert.True(t, repositories.IsNotFoundError(err))
}

func TestCourseWithInstructor(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx := context.Background()
	course, _ := seedCourseWithLectures(t, repo)

	detail, err := repo.Course().GetWithInstructor(ctx, nil, course.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.InstructorName)
	assert.Equal(t, "Grace", *detail.InstructorName)

	instructorID, err := repo.Course().GetInstructorID(ctx, nil, course.ID)
	require.NoError(t, err)
	assert.Equal(t, *detail.InstructorID, instructorID)

	_, err = repo.Course().GetWithInstructor(ctx, nil, 9999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestLectureListInvalidatedOnLink(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx := context.Background()
	course, ids := seedCourseWithLectures(t, repo, "Intro", "Joins")

	lectures, err := repo.Lecture().GetByCourse(ctx, nil, course.ID, repositories.LectureOrderCreated)
	require.NoError(t, err)
	require.Len(t, lectures, 2)

	extra := &models.Lecture{LectureTitle: "Indexes"}
	require.NoError(t, repo.Lecture().Create(ctx, nil, extra))
	require.NoError(t, repo.Lecture().LinkToCourse(ctx, nil, course.ID, extra.ID))

	lectures, err = repo.Lecture().GetByCourse(ctx, nil, course.ID, repositories.LectureOrderCreated)
	require.NoError(t, err)
	assert.Len(t, lectures, 3)

	n, err := repo.Lecture().UnlockAllPreviews(ctx, nil, course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	lectures, err = repo.Lecture().GetByCourse(ctx, nil, course.ID, repositories.LectureOrderID)
	require.NoError(t, err)
	for _, l := range lectures {
		assert.True(t, l.IsPreviewFree, "lecture %d", l.ID)
	}
	assert.Equal(t, ids[0], lectures[0].ID)
}

func TestPreviewUnlockInvalidatesAfterCommit(t *testing.T) {
	repo, db, _ := newWALTestRepository(t)
	ctx := context.Background()
	course, _ := seedCourseWithLectures(t, repo, "Intro", "Joins")

	err := repositories.RunInTx(ctx, db, func(tx *gorm.DB) error {
		if _, err := repo.Lecture().UnlockAllPreviews(ctx, tx, course.ID); err != nil {
			return err
		}

		// A reader outside the transaction still sees locked lectures and caches them
		lectures, err := repo.Lecture().GetByCourse(ctx, nil, course.ID, repositories.LectureOrderID)
		if err != nil {
			return err
		}
		for _, l := range lectures {
			assert.False(t, l.IsPreviewFree, "lecture %d before commit", l.ID)
		}
		return nil
	})
	require.NoError(t, err)

	lectures, err := repo.Lecture().GetByCourse(ctx, nil, course.ID, repositories.LectureOrderID)
	require.NoError(t, err)
	require.Len(t, lectures, 2)
	for _, l := range lectures {
		assert.True(t, l.IsPreviewFree, "lecture %d after commit", l.ID)
	}
}

func TestRolledBackTransactionKeepsCache(t *testing.T) {
	repo, db, mr := newTestRepository(t)
	ctx := context.Background()
	course, ids := seedCourseWithLectures(t, repo, "Intro")

	_, err := repo.Lecture().GetByCourse(ctx, nil, course.ID, repositories.LectureOrderID)
	require.NoError(t, err)
	listKey := fmt.Sprintf("lecture:course:%d:list:%s", course.ID, repositories.LectureOrderID)
	require.True(t, mr.Exists(listKey))

	boom := errors.New("boom")
	err = repositories.RunInTx(ctx, db, func(tx *gorm.DB) error {
		if err := repo.Lecture().SetPreviewFree(ctx, tx, course.ID, ids[0], true); err != nil {
			return err
		}
		assert.True(t, mr.Exists(listKey), "invalidated before commit")
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, mr.Exists(listKey))

	lectures, err := repo.Lecture().GetByCourse(ctx, nil, course.ID, repositories.LectureOrderID)
	require.NoError(t, err)
	assert.False(t, lectures[0].IsPreviewFree)
}

func TestProfileCache(t *testing.T) {
	repo, _, mr := newTestRepository(t)
	ctx := context.Background()
	course, _ := seedCourseWithLectures(t, repo)

	student := &models.User{Name: "Ada", Email: "ada@example.com", Password: "hash"}
	require.NoError(t, repo.User().Create(ctx, nil, student))

	profile, err := repo.User().GetProfile(ctx, nil, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name)
	assert.Empty(t, profile.Password)
	assert.Empty(t, profile.Courses)
	assert.True(t, mr.Exists(fmt.Sprintf("user:profile:%d", student.ID)))

	_, err = repo.Enrollment().Enroll(ctx, nil, student.ID, course.ID)
	require.NoError(t, err)
	profile, err = repo.User().GetProfile(ctx, nil, student.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{course.ID}, profile.Courses)

	require.NoError(t, repo.User().Update(ctx, nil, student.ID, map[string]interface{}{"name": "Ada L."}))
	profile, err = repo.User().GetProfile(ctx, nil, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", profile.Name)

	_, err = repo.User().GetProfile(ctx, nil, 9999)
	assert.True(t, repositories.IsNotFoundError(err))
}

func TestInstructorRenameRefreshesCourseViews(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx := context.Background()
	course, _ := seedCourseWithLectures(t, repo)

	detail, err := repo.Course().GetWithInstructor(ctx, nil, course.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.InstructorID)

	require.NoError(t, repo.User().Update(ctx, nil, *detail.InstructorID, map[string]interface{}{"name": "Grace H."}))

	detail, err = repo.Course().GetWithInstructor(ctx, nil, course.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.InstructorName)
	assert.Equal(t, "Grace H.", *detail.InstructorName)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.User().Create(ctx, nil, &models.User{Name: "Ada", Email: "ada@example.com", Password: "x"}))
	err := repo.User().Create(ctx, nil, &models.User{Name: "Ada", Email: "ada@example.com", Password: "y"})
	assert.ErrorIs(t, err, repositories.ErrDuplicateKey)
}

func TestProgressCreateOverwritesExistingPair(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx := context.Background()
	course, ids := seedCourseWithLectures(t, repo, "Intro", "Joins")

	first := &models.CourseProgress{UserID: 7, CourseID: course.ID}
	require.NoError(t, first.SetEntries([]models.LectureProgress{{LectureID: ids[0], Viewed: true}}))
	require.NoError(t, repo.Progress().Create(ctx, nil, first))

	second := &models.CourseProgress{UserID: 7, CourseID: course.ID, Completed: true}
	require.NoError(t, second.SetEntries([]models.LectureProgress{{LectureID: ids[1], Viewed: true}}))
	require.NoError(t, repo.Progress().Create(ctx, nil, second))

	stored, err := repo.Progress().Get(ctx, nil, 7, course.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.True(t, stored.Completed)
	entries, err := stored.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ids[1], entries[0].LectureID)
}

func TestEnrollIsIdempotent(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx := context.Background()
	course, _ := seedCourseWithLectures(t, repo)

	student := &models.User{Name: "Ada", Email: "ada@example.com", Password: "x"}
	require.NoError(t, repo.User().Create(ctx, nil, student))

	created, err := repo.Enrollment().Enroll(ctx, nil, student.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Enrollment().Enroll(ctx, nil, student.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, created)

	profile, err := repo.User().GetProfile(ctx, nil, student.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{course.ID}, profile.Courses)
}

func TestWithTransactionRollsBack(t *testing.T) {
	repo, db, _ := newTestRepository(t)
	ctx := context.Background()
	course, _ := seedCourseWithLectures(t, repo)

	purchase := &models.CoursePurchase{CourseID: course.ID, UserID: 1, Amount: 10, Status: models.PurchasePending, PaymentID: "cs_rollback"}
	require.NoError(t, repo.Purchase().Create(ctx, nil, purchase))

	boom := errors.New("boom")
	err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Purchase().MarkCompleted(ctx, nil, purchase.ID, 10); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var stored models.CoursePurchase
	require.NoError(t, db.First(&stored, purchase.ID).Error)
	assert.Equal(t, models.PurchasePending, stored.Status)
}

func TestExpirePending(t *testing.T) {
	repo, db, _ := newTestRepository(t)
	ctx := context.Background()
	course, _ := seedCourseWithLectures(t, repo)

	old := time.Now().Add(-48 * time.Hour)
	rows := []*models.CoursePurchase{
		{CourseID: course.ID, UserID: 1, Amount: 10, Status: models.PurchasePending, PaymentID: "cs_old", CreatedAt: old},
		{CourseID: course.ID, UserID: 2, Amount: 10, Status: models.PurchasePending, PaymentID: "cs_new"},
		{CourseID: course.ID, UserID: 3, Amount: 10, Status: models.PurchaseCompleted, PaymentID: "cs_done", CreatedAt: old},
	}
	for _, p := range rows {
		require.NoError(t, db.Create(p).Error)
	}

	n, err := repo.Purchase().ExpirePending(ctx, nil, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.Purchase().GetByPaymentID(ctx, nil, "cs_old")
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseFailed, got.Status)

	got, err = repo.Purchase().GetByPaymentID(ctx, nil, "cs_done")
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseCompleted, got.Status)
}

func TestPingReportsCacheOutage(t *testing.T) {
	repo, _, mr := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Ping(ctx))
	mr.Close()
	assert.Error(t, repo.Ping(ctx))
}
