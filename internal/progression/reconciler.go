// Package progression implements the character progression pipeline: the
// reconciler that diffs ranking data against stored snapshots, the daily
// scheduler that drives it, and the read-side query service.
package progression

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"maple-tracker/internal/maplestory"
	"maple-tracker/internal/store"
)

// CharacterStore is the slice of the store the reconciler writes through.
type CharacterStore interface {
	ListCharacters(ctx context.Context) ([]store.Character, error)
	GetCharacter(ctx context.Context, id string) (*store.Character, error)
	RecordProgression(ctx context.Context, characterID string, entry store.ProgressionEntry, snapshot store.SnapshotUpdate) error
}

// RecordFetcher resolves character names to ranking records.
// Satisfied by *maplestory.Fetcher.
type RecordFetcher interface {
	FetchAll(ctx context.Context, names []string) []maplestory.CharacterData
}

// LevelUp describes one character whose level changed during a pass.
type LevelUp struct {
	Name string
	From int
	To   int
}

// PassSummary reports what one reconciliation pass did.
type PassSummary struct {
	CharactersChecked int
	RecordsFetched    int
	SnapshotsUpdated  int
	Failures          int
	LevelUps          []LevelUp
	Duration          time.Duration
}

// Reconciler runs full reconciliation passes: fetch ranking records for every
// tracked character, append a history entry and update the snapshot for each
// one that changed.
type Reconciler struct {
	store   CharacterStore
	fetcher RecordFetcher
	logger  zerolog.Logger
	nowFunc func() time.Time
}

// NewReconciler wires a reconciler to its store and fetcher.
func NewReconciler(st CharacterStore, fetcher RecordFetcher, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		store:   st,
		fetcher: fetcher,
		logger:  logger.With().Str("component", "reconciler").Logger(),
		nowFunc: time.Now,
	}
}

// RunPass executes one full reconciliation pass. Per-character failures are
// logged and counted but never abort the pass.
func (r *Reconciler) RunPass(ctx context.Context) (PassSummary, error) {
	started := r.nowFunc()
	var summary PassSummary

	characters, err := r.store.ListCharacters(ctx)
	if err != nil {
		return summary, fmt.Errorf("listing characters: %w", err)
	}
	summary.CharactersChecked = len(characters)

	if len(characters) == 0 {
		r.logger.Info().Msg("No characters to update")
		return summary, nil
	}

	names := make([]string, len(characters))
	byName := make(map[string]*store.Character, len(characters))
	for i := range characters {
		names[i] = characters[i].Name
		byName[strings.ToLower(characters[i].Name)] = &characters[i]
	}

	r.logger.Info().Int("characters", len(characters)).Msg("Starting reconciliation pass")

	records := r.fetcher.FetchAll(ctx, names)
	summary.RecordsFetched = len(records)

	for i := range records {
		record := &records[i]
		character, ok := byName[strings.ToLower(record.CharacterName)]
		if !ok {
			// Never create characters here; registration happens elsewhere.
			r.logger.Warn().Str("character", record.CharacterName).
				Msg("Fetched record has no stored character, skipping")
			continue
		}

		updated, err := r.reconcileCharacter(ctx, character.ID, record)
		if err != nil {
			summary.Failures++
			r.logger.Error().Err(err).Str("character", record.CharacterName).
				Msg("Failed to update character, continuing pass")
			continue
		}
		if updated {
			summary.SnapshotsUpdated++
			if record.Level != character.Level {
				summary.LevelUps = append(summary.LevelUps, LevelUp{
					Name: character.Name,
					From: character.Level,
					To:   record.Level,
				})
			}
		}
	}

	summary.Duration = r.nowFunc().Sub(started)
	r.logger.Info().
		Int("checked", summary.CharactersChecked).
		Int("fetched", summary.RecordsFetched).
		Int("updated", summary.SnapshotsUpdated).
		Int("failures", summary.Failures).
		Dur("duration", summary.Duration).
		Msg("Reconciliation pass complete")

	return summary, nil
}

// reconcileCharacter diffs one fetched record against the stored snapshot and
// writes history + snapshot when something changed. Returns whether a write
// happened.
func (r *Reconciler) reconcileCharacter(ctx context.Context, characterID string, record *maplestory.CharacterData) (bool, error) {
	current, err := r.store.GetCharacter(ctx, characterID)
	if err != nil {
		return false, fmt.Errorf("reading snapshot: %w", err)
	}

	levelChanged := current.Level != record.Level
	expChanged := current.Experience != record.Exp
	avatarChanged := !avatarEqual(current.Avatar, record.CharacterImgURL)

	if !levelChanged && !expChanged && !avatarChanged {
		r.logger.Debug().Str("character", current.Name).Msg("No changes")
		return false, nil
	}

	// Season resets and source glitches can report lower values than stored.
	// Recorded as-is; history keeps what the source said.
	if record.Exp < current.Experience {
		r.logger.Warn().Str("character", current.Name).
			Uint64("stored", current.Experience).
			Uint64("fetched", record.Exp).
			Msg("Experience regression from ranking source")
	}

	now := r.nowFunc()
	rank := record.Rank
	legion := record.LegionLevel
	raid := record.RaidPower

	entry := store.ProgressionEntry{
		Level:       record.Level,
		Experience:  record.Exp,
		Rank:        &rank,
		LegionLevel: &legion,
		RaidPower:   &raid,
		RecordedAt:  now,
	}
	snapshot := store.SnapshotUpdate{
		Level:      record.Level,
		Experience: record.Exp,
		Avatar:     avatarOrNil(record.CharacterImgURL),
		UpdatedAt:  now,
	}

	if err := r.store.RecordProgression(ctx, characterID, entry, snapshot); err != nil {
		return false, fmt.Errorf("recording progression: %w", err)
	}

	r.logger.Info().Str("character", current.Name).
		Bool("level", levelChanged).
		Bool("exp", expChanged).
		Bool("avatar", avatarChanged).
		Msg("Character updated")

	return true, nil
}

func avatarEqual(stored *string, fetched string) bool {
	if stored == nil {
		return fetched == ""
	}
	return *stored == fetched
}

func avatarOrNil(url string) *string {
	if url == "" {
		return nil
	}
	return &url
}
