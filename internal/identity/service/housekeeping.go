package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/openclass/identity/internal/identity/store"
)

// HousekeepingService periodically sweeps the revocation store so entries
// for long-expired tokens don't accumulate. Safe to run against a driver
// whose Sweep is a no-op (redis expires entries itself).
type HousekeepingService struct {
	Revocations store.RevocationStore
	Logger      *slog.Logger
	Interval    time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(revocations store.RevocationStore, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Revocations: revocations,
		Logger:      logger,
		Interval:    interval,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop() to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker. Blocks until any
// in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep immediately on startup to clear anything left from downtime.
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) sweep() {
	ctx := context.Background()

	removed, err := s.Revocations.Sweep(ctx, time.Now())
	if err != nil {
		s.Logger.Error("revocation sweep failed", "error", err)
		return
	}
	if removed > 0 {
		s.Logger.Info("revocation sweep completed", "removed", removed)
	}
}
