package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/events"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

type purchaseService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher

	now func() time.Time
}

func NewPurchaseService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) PurchaseService {
	return &purchaseService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		now:       time.Now,
	}
}

// InitiateCheckout opens a payment session and records a pending purchase.
// The already-purchased check is not locked; two concurrent checkouts may both
// leave pending rows, and only confirmed sessions complete.
func (s *purchaseService) InitiateCheckout(ctx context.Context, userID, courseID uint) (*CheckoutResponse, error) {
	s.logger.Info("Initiating checkout", "user_id", userID, "course_id", courseID)

	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, mapNotFound(err, ErrCourseNotFound)
	}

	purchased, err := s.repo.Purchase().HasCompleted(ctx, nil, userID, courseID)
	if err != nil {
		return nil, err
	}
	if purchased {
		return nil, ErrCourseAlreadyPurchased
	}

	if course.CoursePrice == nil || *course.CoursePrice < 0 {
		return nil, NewBusinessRuleError("course_price", "course has no price", map[string]interface{}{
			"course_id": courseID,
		})
	}
	price := *course.CoursePrice

	session, err := s.repo.Payment().CreateCheckoutSession(ctx, models.CheckoutItem{
		CourseID:    courseID,
		UserID:      userID,
		Title:       course.CourseTitle,
		Thumbnail:   course.CourseThumbnail,
		AmountMinor: int64(math.Round(price * 100)),
	})
	if err != nil {
		s.logger.Error("Failed to create checkout session", "user_id", userID, "course_id", courseID, "error", err)
		return nil, err
	}
	if session.URL == "" {
		return nil, ErrCheckoutSessionFailed
	}

	purchase := &models.CoursePurchase{
		CourseID:  courseID,
		UserID:    userID,
		Amount:    price,
		Status:    models.PurchasePending,
		PaymentID: session.ID,
	}
	if err := s.repo.Purchase().Create(ctx, nil, purchase); err != nil {
		return nil, err
	}

	purchaseEventsTotal.WithLabelValues(outcomeCheckoutStarted).Inc()
	s.logger.Info("Checkout session created", "purchase_id", purchase.ID, "payment_id", session.ID)

	return &CheckoutResponse{
		URL:      session.URL,
		Purchase: purchase,
	}, nil
}

// HandleWebhook verifies a payment notification and confirms completed checkouts.
// Other event types are acknowledged without effect.
func (s *purchaseService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.repo.Payment().ParseWebhookEvent(payload, signature)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidSignature) {
			purchaseEventsTotal.WithLabelValues(outcomeInvalidSignature).Inc()
			s.logger.Warn("Rejected webhook", "error", err)
			return ErrInvalidWebhookSignature
		}
		return fmt.Errorf("failed to parse webhook: %w", err)
	}

	if event.Type != models.PaymentEventCheckoutCompleted {
		s.logger.Debug("Ignoring webhook event", "event_id", event.ID, "type", event.Type)
		return nil
	}

	_, err = s.ConfirmPayment(ctx, event.SessionID, float64(event.AmountTotal)/100)
	return err
}

// ConfirmPayment completes the purchase, unlocks every lecture of the course
// for preview and enrolls the buyer, all in one transaction. Redelivery is
// harmless: the enrollment insert ignores duplicates.
func (s *purchaseService) ConfirmPayment(ctx context.Context, sessionID string, amount float64) (*models.CoursePurchase, error) {
	s.logger.Info("Confirming payment", "payment_id", sessionID, "amount", amount)

	purchase, err := s.repo.Purchase().GetByPaymentID(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			purchaseEventsTotal.WithLabelValues(outcomeUnknownSession).Inc()
			s.logger.Warn("Payment confirmation for unknown session", "payment_id", sessionID)
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}

	if errs := s.validator.GetBusinessValidator().ValidatePurchaseTransition(purchase.Status, models.PurchaseCompleted); len(errs) > 0 {
		return nil, errs
	}
	previous := purchase.Status

	var enrolled bool
	err = withTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.repo.Purchase().MarkCompleted(ctx, tx, purchase.ID, amount); err != nil {
			return err
		}

		if _, err := s.repo.Lecture().UnlockAllPreviews(ctx, tx, purchase.CourseID); err != nil {
			return err
		}

		created, err := s.repo.Enrollment().Enroll(ctx, tx, purchase.UserID, purchase.CourseID)
		if err != nil {
			return err
		}
		enrolled = created
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to confirm payment", "purchase_id", purchase.ID, "payment_id", sessionID, "error", err)
		return nil, err
	}

	purchase.Status = models.PurchaseCompleted
	purchase.Amount = amount

	if previous == models.PurchaseCompleted {
		purchaseEventsTotal.WithLabelValues(outcomeRedelivered).Inc()
		s.logger.Info("Payment confirmation redelivered", "purchase_id", purchase.ID)
		return purchase, nil
	}

	purchaseEventsTotal.WithLabelValues(outcomeCompleted).Inc()
	events.PublishSafe(ctx, s.publisher, s.logger, events.NewEvent(events.EventPurchaseCompleted, events.PurchaseCompletedEvent{
		PurchaseID: purchase.ID,
		CourseID:   purchase.CourseID,
		UserID:     purchase.UserID,
		Amount:     amount,
		PaymentID:  sessionID,
	}))

	s.logger.Info("Payment confirmed",
		"purchase_id", purchase.ID,
		"user_id", purchase.UserID,
		"course_id", purchase.CourseID,
		"previous_status", previous,
		"enrolled", enrolled)
	return purchase, nil
}

func (s *purchaseService) GetPurchaseStatus(ctx context.Context, userID, courseID uint) (bool, error) {
	return s.repo.Purchase().HasCompleted(ctx, nil, userID, courseID)
}

func (s *purchaseService) GetCourseDetailWithPurchaseStatus(ctx context.Context, userID, courseID uint) (*CourseDetailWithStatus, error) {
	detail, err := loadCourseDetail(ctx, s.repo, courseID)
	if err != nil {
		return nil, err
	}

	purchased, err := s.GetPurchaseStatus(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	return &CourseDetailWithStatus{
		Course:    detail,
		Purchased: purchased,
	}, nil
}

func (s *purchaseService) ListPurchasedCourses(ctx context.Context, userID uint) ([]*models.PurchasedCourse, error) {
	return s.repo.Purchase().ListCompletedByUser(ctx, nil, userID)
}

// SweepStalePending fails pending purchases older than olderThan. Completed
// rows are never touched, and a late webhook can still complete a failed row.
func (s *purchaseService) SweepStalePending(ctx context.Context, olderThan time.Duration) (int64, error) {
	before := s.now().Add(-olderThan)

	count, err := s.repo.Purchase().ExpirePending(ctx, nil, before)
	if err != nil {
		s.logger.Error("Failed to sweep pending purchases", "before", before, "error", err)
		return 0, err
	}

	if count > 0 {
		purchaseEventsTotal.WithLabelValues(outcomeExpired).Add(float64(count))
		events.PublishSafe(ctx, s.publisher, s.logger, events.NewEvent(events.EventPurchasesExpired, events.PurchasesExpiredEvent{
			Count:  count,
			Before: before,
		}))
	}

	s.logger.Info("Swept pending purchases", "expired", count, "before", before)
	return count, nil
}
