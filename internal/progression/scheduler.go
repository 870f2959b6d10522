package progression

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// PassRunner runs one reconciliation pass. Satisfied by *Reconciler.
type PassRunner interface {
	RunPass(ctx context.Context) (PassSummary, error)
}

// NotifyFunc is called with the summary of a pass that changed something
// (e.g. a Discord webhook). A nil NotifyFunc disables notifications.
type NotifyFunc func(ctx context.Context, summary PassSummary) error

// Scheduler drives the daily reconciliation pass: once immediately on start,
// then every day at a fixed UTC hour, re-arming itself after each fire.
type Scheduler struct {
	runner  PassRunner
	notify  NotifyFunc
	hourUTC int
	logger  zerolog.Logger
	nowFunc func() time.Time

	// Lifecycle. running guards both double-starts and timer fires that race
	// with Stop.
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// passMu serializes passes: a manual trigger issued while a scheduled
	// pass is in flight waits for it instead of racing it.
	passMu sync.Mutex
}

// NewScheduler creates a scheduler firing daily at hourUTC (0-23).
func NewScheduler(runner PassRunner, notify NotifyFunc, hourUTC int, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		runner:  runner,
		notify:  notify,
		hourUTC: hourUTC,
		logger:  logger.With().Str("component", "scheduler").Logger(),
		nowFunc: time.Now,
	}
}

// NextRunAfter returns the next daily fire time strictly after now: today at
// hourUTC if now is before that hour, otherwise the same hour tomorrow.
func NextRunAfter(now time.Time, hourUTC int) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hourUTC, 0, 0, 0, time.UTC)
	if now.Hour() >= hourUTC {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start begins the scheduler: one pass immediately, then daily fires.
// Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn().Msg("Scheduler already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info().Int("hour_utc", s.hourUTC).Msg("Starting progression scheduler")
	go s.run(ctx)
}

// Stop prevents future fires. An in-flight pass completes; the timer is not
// re-armed. Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	<-done
	s.logger.Info().Msg("Progression scheduler stopped")
}

// Running reports whether the scheduler is started.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// TriggerNow runs a reconciliation pass on demand. It does not touch the
// schedule and works whether or not the scheduler is running.
func (s *Scheduler) TriggerNow(ctx context.Context) (PassSummary, error) {
	s.logger.Info().Msg("Manual progression update triggered")
	return s.runPass(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	// Run immediately on startup; do not wait for the first scheduled time.
	s.firePass(ctx)

	for {
		now := s.nowFunc()
		next := NextRunAfter(now, s.hourUTC)
		s.logger.Info().Time("next_run", next).Msg("Next daily update scheduled")

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.stopCh:
			timer.Stop()
			return
		case <-timer.C:
			if !s.Running() {
				return
			}
			s.firePass(ctx)
		}
	}
}

// firePass runs a scheduled pass; errors are logged and never stop the loop.
func (s *Scheduler) firePass(ctx context.Context) {
	if _, err := s.runPass(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Daily update failed")
	}
}

func (s *Scheduler) runPass(ctx context.Context) (PassSummary, error) {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	summary, err := s.runner.RunPass(ctx)
	if err != nil {
		return summary, err
	}

	if s.notify != nil && summary.SnapshotsUpdated > 0 {
		if err := s.notify(ctx, summary); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to send pass notification")
		}
	}
	return summary, nil
}
