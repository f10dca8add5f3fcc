package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// PurchaseSweeper periodically fails checkouts that were never confirmed.
type PurchaseSweeper struct {
	purchases  PurchaseService
	logger     *slog.Logger
	spec       string
	pendingTTL time.Duration
	timeout    time.Duration

	cron *cron.Cron
}

func NewPurchaseSweeper(purchases PurchaseService, logger *slog.Logger, spec string, pendingTTL time.Duration) *PurchaseSweeper {
	return &PurchaseSweeper{
		purchases:  purchases,
		logger:     logger,
		spec:       spec,
		pendingTTL: pendingTTL,
		timeout:    time.Minute,
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Start schedules the sweep. It does not run one immediately.
func (s *PurchaseSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		return fmt.Errorf("failed to schedule purchase sweep %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("Purchase sweeper started", "spec", s.spec, "pending_ttl", s.pendingTTL)
	return nil
}

func (s *PurchaseSweeper) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.purchases.SweepStalePending(ctx, s.pendingTTL); err != nil {
		s.logger.Error("Purchase sweep failed", "error", err)
	}
}

// Stop waits for a running sweep to finish or ctx to expire.
func (s *PurchaseSweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Purchase sweeper stopped")
	case <-ctx.Done():
		s.logger.Warn("Purchase sweeper stop timed out")
	}
}
