package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Sweeper evicts idle visitor sessions.
type Sweeper interface {
	Sweep(now time.Time) (int, error)
}

// CleanupResult summarizes a cleanup run.
type CleanupResult struct {
	EvictedSessions int
}

// CleanupService periodically evicts idle visitor sessions.
type CleanupService struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// CleanupOption configures CleanupService.
type CleanupOption func(*CleanupService)

// WithCleanupInterval overrides the cleanup interval when greater than zero.
func WithCleanupInterval(interval time.Duration) CleanupOption {
	return func(s *CleanupService) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithCleanupLogger overrides the logger used for cleanup errors.
func WithCleanupLogger(logger *slog.Logger) CleanupOption {
	return func(s *CleanupService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) CleanupOption {
	return func(s *CleanupService) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a CleanupService with options applied.
func New(sweeper Sweeper, opts ...CleanupOption) (*CleanupService, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("sweeper is required")
	}
	svc := &CleanupService{
		sweeper:  sweeper,
		interval: time.Minute,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Start runs cleanup periodically until ctx is cancelled.
func (s *CleanupService) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := s.RunOnce(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "session cleanup failed", "error", err)
			}
			if res.EvictedSessions > 0 {
				s.logger.InfoContext(ctx, "evicted idle sessions", "count", res.EvictedSessions)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce performs a single sweep.
func (s *CleanupService) RunOnce(_ context.Context) (CleanupResult, error) {
	n, err := s.sweeper.Sweep(s.now())
	if err != nil {
		return CleanupResult{EvictedSessions: n}, fmt.Errorf("sweep idle sessions: %w", err)
	}
	return CleanupResult{EvictedSessions: n}, nil
}
