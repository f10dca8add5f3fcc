package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/lms-service/internal/models"
)

func TestPurchaseSweeper_RunOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.seedUser(t, "Ines")
	student := env.seedUser(t, "Sam")
	course, _ := env.seedCourse(t, instructor, 100, 1)

	require.NoError(t, env.repo.Purchase().Create(ctx, nil, &models.CoursePurchase{
		CourseID:  course.ID,
		UserID:    student.ID,
		Amount:    100,
		Status:    models.PurchasePending,
		PaymentID: "cs_stale",
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}))

	sweeper := NewPurchaseSweeper(env.purchaseService(), env.logger, "@every 1h", time.Hour)
	sweeper.RunOnce()

	p, err := env.repo.Purchase().GetByPaymentID(ctx, nil, "cs_stale")
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseFailed, p.Status)
}

func TestPurchaseSweeper_StartRejectsBadSpec(t *testing.T) {
	env := newTestEnv(t)
	sweeper := NewPurchaseSweeper(env.purchaseService(), env.logger, "not a spec", time.Hour)
	assert.Error(t, sweeper.Start())

	ok := NewPurchaseSweeper(env.purchaseService(), env.logger, "@every 1h", time.Hour)
	require.NoError(t, ok.Start())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ok.Stop(ctx)
}
