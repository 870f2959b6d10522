package progression

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// countingRunner counts passes and tracks concurrent executions.
type countingRunner struct {
	passes      atomic.Int64
	inFlight    atomic.Int64
	maxInFlight atomic.Int64
	block       chan struct{} // when non-nil, RunPass waits on it
	err         error
	summary     PassSummary
}

func (r *countingRunner) RunPass(ctx context.Context) (PassSummary, error) {
	n := r.inFlight.Add(1)
	if n > r.maxInFlight.Load() {
		r.maxInFlight.Store(n)
	}
	defer r.inFlight.Add(-1)

	if r.block != nil {
		<-r.block
	}
	r.passes.Add(1)
	return r.summary, r.err
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestNextRunAfter(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before the hour fires same day",
			now:  time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC),
			want: time.Date(2026, 9, 1, 17, 0, 0, 0, time.UTC),
		},
		{
			name: "at the hour fires next day",
			now:  time.Date(2026, 9, 1, 17, 0, 0, 0, time.UTC),
			want: time.Date(2026, 9, 2, 17, 0, 0, 0, time.UTC),
		},
		{
			name: "within the hour fires next day",
			now:  time.Date(2026, 9, 1, 17, 45, 0, 0, time.UTC),
			want: time.Date(2026, 9, 2, 17, 0, 0, 0, time.UTC),
		},
		{
			name: "after the hour fires next day",
			now:  time.Date(2026, 9, 1, 23, 59, 0, 0, time.UTC),
			want: time.Date(2026, 9, 2, 17, 0, 0, 0, time.UTC),
		},
		{
			name: "month boundary",
			now:  time.Date(2026, 9, 30, 18, 0, 0, 0, time.UTC),
			want: time.Date(2026, 10, 1, 17, 0, 0, 0, time.UTC),
		},
		{
			name: "non-UTC input normalized",
			now:  time.Date(2026, 9, 1, 20, 0, 0, 0, time.FixedZone("CEST", 2*3600)), // 18:00 UTC
			want: time.Date(2026, 9, 2, 17, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextRunAfter(tt.now, 17)
			if !got.Equal(tt.want) {
				t.Errorf("NextRunAfter(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestScheduler_StartRunsImmediatePass(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, nil, 17, zerolog.Nop())

	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, time.Second, func() bool { return runner.passes.Load() == 1 })
}

func TestScheduler_StartIsIdempotent(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, nil, 17, zerolog.Nop())

	s.Start(context.Background())
	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, time.Second, func() bool { return runner.passes.Load() >= 1 })
	time.Sleep(20 * time.Millisecond)

	if got := runner.passes.Load(); got != 1 {
		t.Errorf("passes = %d after double start, want 1", got)
	}
}

func TestScheduler_StopThenStartAgain(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, nil, 17, zerolog.Nop())

	s.Start(context.Background())
	waitFor(t, time.Second, func() bool { return runner.passes.Load() == 1 })
	s.Stop()

	if s.Running() {
		t.Fatal("scheduler still running after Stop")
	}

	// Restartable: a fresh Start runs another immediate pass.
	s.Start(context.Background())
	defer s.Stop()
	waitFor(t, time.Second, func() bool { return runner.passes.Load() == 2 })
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler(&countingRunner{}, nil, 17, zerolog.Nop())
	s.Start(context.Background())
	s.Stop()
	s.Stop() // must not panic or block
}

func TestScheduler_PassErrorDoesNotStopScheduler(t *testing.T) {
	runner := &countingRunner{err: errors.New("ranking API down")}
	s := NewScheduler(runner, nil, 17, zerolog.Nop())

	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, time.Second, func() bool { return runner.passes.Load() == 1 })
	if !s.Running() {
		t.Error("scheduler stopped after a failed pass")
	}
}

func TestScheduler_TriggerNowIndependentOfRunning(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, nil, 17, zerolog.Nop())

	// Never started: manual trigger still runs a pass.
	if _, err := s.TriggerNow(context.Background()); err != nil {
		t.Fatalf("TriggerNow failed: %v", err)
	}
	if got := runner.passes.Load(); got != 1 {
		t.Errorf("passes = %d, want 1", got)
	}
}

func TestScheduler_PassesAreSerialized(t *testing.T) {
	runner := &countingRunner{block: make(chan struct{})}
	s := NewScheduler(runner, nil, 17, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.TriggerNow(context.Background())
		}()
	}

	waitFor(t, time.Second, func() bool { return runner.inFlight.Load() == 1 })
	close(runner.block)
	wg.Wait()

	if runner.maxInFlight.Load() != 1 {
		t.Errorf("max concurrent passes = %d, want 1", runner.maxInFlight.Load())
	}
	if runner.passes.Load() != 3 {
		t.Errorf("passes = %d, want 3", runner.passes.Load())
	}
}

func TestScheduler_NotifyOnUpdates(t *testing.T) {
	runner := &countingRunner{summary: PassSummary{SnapshotsUpdated: 2}}
	var notified atomic.Int64
	notify := func(ctx context.Context, summary PassSummary) error {
		notified.Add(1)
		if summary.SnapshotsUpdated != 2 {
			t.Errorf("notify summary updated = %d, want 2", summary.SnapshotsUpdated)
		}
		return nil
	}
	s := NewScheduler(runner, notify, 17, zerolog.Nop())

	if _, err := s.TriggerNow(context.Background()); err != nil {
		t.Fatalf("TriggerNow failed: %v", err)
	}
	if notified.Load() != 1 {
		t.Errorf("notified %d times, want 1", notified.Load())
	}
}

func TestScheduler_NoNotifyWithoutUpdates(t *testing.T) {
	runner := &countingRunner{}
	var notified atomic.Int64
	notify := func(ctx context.Context, summary PassSummary) error {
		notified.Add(1)
		return nil
	}
	s := NewScheduler(runner, notify, 17, zerolog.Nop())

	if _, err := s.TriggerNow(context.Background()); err != nil {
		t.Fatalf("TriggerNow failed: %v", err)
	}
	if notified.Load() != 0 {
		t.Errorf("notified %d times on a no-op pass, want 0", notified.Load())
	}
}

func TestScheduler_NotifyErrorDoesNotFailPass(t *testing.T) {
	runner := &countingRunner{summary: PassSummary{SnapshotsUpdated: 1}}
	notify := func(ctx context.Context, summary PassSummary) error {
		return errors.New("webhook down")
	}
	s := NewScheduler(runner, notify, 17, zerolog.Nop())

	if _, err := s.TriggerNow(context.Background()); err != nil {
		t.Fatalf("TriggerNow returned notify error: %v", err)
	}
}
