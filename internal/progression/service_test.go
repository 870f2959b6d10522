package progression

import (
	"context"
	"testing"
	"time"

	"maple-tracker/internal/store"
)

func addEntry(fs *fakeStore, characterID string, level int, exp uint64, at time.Time) {
	fs.entries[characterID] = append(fs.entries[characterID], store.ProgressionEntry{
		CharacterID: characterID,
		Level:       level,
		Experience:  exp,
		RecordedAt:  at,
	})
}

func newTestService(fs *fakeStore, now time.Time) *Service {
	s := NewService(fs)
	s.nowFunc = func() time.Time { return now }
	return s
}

func TestHistory_WindowAndOrdering(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	fs := newFakeStore(testCharacter("c1", "Mercedes", 205, 3000, nil))
	addEntry(fs, "c1", 200, 1000, now.AddDate(0, 0, -10))
	addEntry(fs, "c1", 203, 2000, now.AddDate(0, 0, -5))
	addEntry(fs, "c1", 205, 3000, now.AddDate(0, 0, -1))

	svc := newTestService(fs, now)

	entries, err := svc.History(context.Background(), "c1", 7)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (10-day-old entry outside 7-day window)", len(entries))
	}
	for _, e := range entries {
		if e.RecordedAt.Before(now.AddDate(0, 0, -7)) {
			t.Errorf("entry at %v older than window", e.RecordedAt)
		}
	}
	if !entries[0].RecordedAt.Before(entries[1].RecordedAt) {
		t.Error("entries not ascending by capture time")
	}
}

func TestHistory_EmptyIsNotAnError(t *testing.T) {
	fs := newFakeStore(testCharacter("c1", "Mercedes", 200, 1000, nil))
	svc := newTestService(fs, time.Now())

	entries, err := svc.History(context.Background(), "c1", 30)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestStats_ZeroHistoryReturnsZeroedStats(t *testing.T) {
	fs := newFakeStore(testCharacter("c1", "Mercedes", 200, 50000000000, nil))
	svc := newTestService(fs, time.Now())

	stats, err := svc.Stats(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	if stats.CharacterName != "Mercedes" || stats.CurrentLevel != 200 {
		t.Errorf("current snapshot not reflected: %+v", stats)
	}
	if stats.CurrentExperience != 50000000000 {
		t.Errorf("CurrentExperience = %d", stats.CurrentExperience)
	}
	if stats.LevelGained != 0 || stats.ExperienceGained != 0 || stats.DaysTracked != 0 || stats.AverageExpPerDay != 0 {
		t.Errorf("expected all-zero deltas, got %+v", stats)
	}
}

func TestStats_ComputesDeltas(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	fs := newFakeStore(testCharacter("c1", "Mercedes", 205, 52000000000, nil))
	addEntry(fs, "c1", 200, 50000000000, now.Add(-71*time.Hour))
	addEntry(fs, "c1", 202, 51000000000, now.Add(-40*time.Hour))
	addEntry(fs, "c1", 205, 52000000000, now.Add(-1*time.Hour))

	svc := newTestService(fs, now)

	stats, err := svc.Stats(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	if stats.LevelGained != 5 {
		t.Errorf("LevelGained = %d, want 5", stats.LevelGained)
	}
	if stats.ExperienceGained != 2000000000 {
		t.Errorf("ExperienceGained = %d, want 2000000000", stats.ExperienceGained)
	}
	// 70h span rounds up to 3 days.
	if stats.DaysTracked != 3 {
		t.Errorf("DaysTracked = %d, want 3", stats.DaysTracked)
	}
	if stats.AverageExpPerDay != 666666667 {
		t.Errorf("AverageExpPerDay = %d, want 666666667", stats.AverageExpPerDay)
	}
}

// Entries older than the 30-day stats window are excluded from the deltas.
func TestStats_IgnoresEntriesOutsideWindow(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	fs := newFakeStore(testCharacter("c1", "Mercedes", 205, 3000, nil))
	addEntry(fs, "c1", 100, 10, now.AddDate(0, 0, -60))
	addEntry(fs, "c1", 204, 2000, now.AddDate(0, 0, -2))
	addEntry(fs, "c1", 205, 3000, now.AddDate(0, 0, -1))

	svc := newTestService(fs, now)

	stats, err := svc.Stats(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.LevelGained != 1 {
		t.Errorf("LevelGained = %d, want 1 (old entry must be ignored)", stats.LevelGained)
	}
}

// A single entry in the window spans zero days: deltas and average stay zero.
func TestStats_SingleEntryZeroSpan(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	fs := newFakeStore(testCharacter("c1", "Mercedes", 200, 1000, nil))
	addEntry(fs, "c1", 200, 1000, now.Add(-1*time.Hour))

	svc := newTestService(fs, now)

	stats, err := svc.Stats(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.DaysTracked != 0 || stats.AverageExpPerDay != 0 || stats.LevelGained != 0 {
		t.Errorf("expected zero-span stats, got %+v", stats)
	}
}

func TestStats_SubDaySpanCountsOneDay(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	fs := newFakeStore(testCharacter("c1", "Mercedes", 201, 2000, nil))
	addEntry(fs, "c1", 200, 1000, now.Add(-2*time.Hour))
	addEntry(fs, "c1", 201, 2000, now.Add(-1*time.Hour))

	svc := newTestService(fs, now)

	stats, err := svc.Stats(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	// 1h span still counts as one day tracked.
	if stats.DaysTracked != 1 {
		t.Errorf("DaysTracked = %d, want 1", stats.DaysTracked)
	}
	if stats.AverageExpPerDay != 1000 {
		t.Errorf("AverageExpPerDay = %d, want 1000", stats.AverageExpPerDay)
	}
}

func TestStats_UnknownCharacter(t *testing.T) {
	svc := newTestService(newFakeStore(), time.Now())

	_, err := svc.Stats(context.Background(), "missing")
	if err != store.ErrNotFound {
		t.Errorf("err = %v, want store.ErrNotFound", err)
	}
}
