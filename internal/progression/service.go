package progression

import (
	"context"
	"fmt"
	"math"
	"time"

	"maple-tracker/internal/store"
)

// statsWindowDays is the fixed trailing window for aggregate stats.
const statsWindowDays = 30

// QueryStore is the read-only slice of the store the query service uses.
type QueryStore interface {
	GetCharacter(ctx context.Context, id string) (*store.Character, error)
	ProgressionSince(ctx context.Context, characterID string, since time.Time) ([]store.ProgressionEntry, error)
}

// Stats aggregates a character's progression over the trailing 30 days.
// All-zero deltas with DaysTracked 0 mean "no history yet", not an error.
type Stats struct {
	CharacterName     string
	CurrentLevel      int
	CurrentExperience uint64
	LevelGained       int
	ExperienceGained  int64
	DaysTracked       int
	AverageExpPerDay  int64
}

// Service answers progression history and aggregate stats queries.
// Read path only; it never mutates the store.
type Service struct {
	store   QueryStore
	nowFunc func() time.Time
}

// NewService creates the progression query service.
func NewService(st QueryStore) *Service {
	return &Service{store: st, nowFunc: time.Now}
}

// History returns a character's progression entries within the last `days`
// days, ascending by capture time. The day window must already be validated
// to [1, 365] at the API boundary.
func (s *Service) History(ctx context.Context, characterID string, days int) ([]store.ProgressionEntry, error) {
	since := s.nowFunc().AddDate(0, 0, -days)
	entries, err := s.store.ProgressionSince(ctx, characterID, since)
	if err != nil {
		return nil, fmt.Errorf("fetching progression history: %w", err)
	}
	return entries, nil
}

// Stats computes aggregate progression stats over the trailing 30-day window.
func (s *Service) Stats(ctx context.Context, characterID string) (*Stats, error) {
	character, err := s.store.GetCharacter(ctx, characterID)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		CharacterName:     character.Name,
		CurrentLevel:      character.Level,
		CurrentExperience: character.Experience,
	}

	history, err := s.History(ctx, characterID, statsWindowDays)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return stats, nil
	}

	first := history[0]
	last := history[len(history)-1]

	stats.LevelGained = last.Level - first.Level
	stats.ExperienceGained = int64(last.Experience) - int64(first.Experience)
	stats.DaysTracked = int(math.Ceil(last.RecordedAt.Sub(first.RecordedAt).Hours() / 24))
	if stats.DaysTracked > 0 {
		stats.AverageExpPerDay = int64(math.Round(float64(stats.ExperienceGained) / float64(stats.DaysTracked)))
	}

	return stats, nil
}
