package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// ProgressionEntry is one immutable point-in-time record of a character's
// stats. Rows are only ever inserted.
type ProgressionEntry struct {
	ID          string
	CharacterID string
	Level       int
	Experience  uint64
	Rank        *int
	LegionLevel *int
	RaidPower   *int64
	RecordedAt  time.Time
}

// SnapshotUpdate carries the fields the reconciler writes back to the
// character snapshot alongside a history insert.
type SnapshotUpdate struct {
	Level      int
	Experience uint64
	Avatar     *string
	UpdatedAt  time.Time
}

// RecordProgression appends a history entry and updates the character
// snapshot in a single transaction, so a crash can never leave history ahead
// of the snapshot.
func (s *Store) RecordProgression(ctx context.Context, characterID string, entry ProgressionEntry, snapshot SnapshotUpdate) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO character_progression
				(character_id, level, experience, rank, legion_level, raid_power, recorded_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, characterID, entry.Level, entry.Experience, entry.Rank, entry.LegionLevel, entry.RaidPower, entry.RecordedAt)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE characters
			SET level = $2, experience = $3, avatar = $4, updated_at = $5
			WHERE id = $1
		`, characterID, snapshot.Level, snapshot.Experience, snapshot.Avatar, snapshot.UpdatedAt)
		return err
	})
}

// ProgressionSince returns a character's history entries recorded at or
// after the given time, ascending by capture time.
func (s *Store) ProgressionSince(ctx context.Context, characterID string, since time.Time) ([]ProgressionEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, character_id, level, experience, rank, legion_level, raid_power, recorded_at
		FROM character_progression
		WHERE character_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at ASC
	`, characterID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ProgressionEntry
	for rows.Next() {
		var e ProgressionEntry
		if err := rows.Scan(&e.ID, &e.CharacterID, &e.Level, &e.Experience,
			&e.Rank, &e.LegionLevel, &e.RaidPower, &e.RecordedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
