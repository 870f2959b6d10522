package store

import (
	"context"
	"time"
)

// Character is the current snapshot for one tracked character. Level,
// experience, avatar and updated_at are mutated only by the progression
// reconciler; the rest belongs to the registration/CRUD path.
type Character struct {
	ID            string
	Name          string
	Level         int
	Experience    uint64
	Avatar        *string
	Job           string
	World         string
	DiscordUserID *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const characterColumns = `id, name, level, experience, avatar, job, world, discord_user_id, created_at, updated_at`

// ListCharacters returns every tracked character, newest first.
func (s *Store) ListCharacters(ctx context.Context) ([]Character, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+characterColumns+`
		FROM characters
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var characters []Character
	for rows.Next() {
		var c Character
		if err := rows.Scan(&c.ID, &c.Name, &c.Level, &c.Experience, &c.Avatar,
			&c.Job, &c.World, &c.DiscordUserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		characters = append(characters, c)
	}
	return characters, rows.Err()
}

// ListCharactersByOwner returns the characters registered by one Discord user.
func (s *Store) ListCharactersByOwner(ctx context.Context, discordUserID string) ([]Character, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+characterColumns+`
		FROM characters
		WHERE discord_user_id = $1
		ORDER BY created_at DESC
	`, discordUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var characters []Character
	for rows.Next() {
		var c Character
		if err := rows.Scan(&c.ID, &c.Name, &c.Level, &c.Experience, &c.Avatar,
			&c.Job, &c.World, &c.DiscordUserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		characters = append(characters, c)
	}
	return characters, rows.Err()
}

// GetCharacter returns one character snapshot by id.
func (s *Store) GetCharacter(ctx context.Context, id string) (*Character, error) {
	var c Character
	err := s.pool.QueryRow(ctx, `
		SELECT `+characterColumns+`
		FROM characters
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Level, &c.Experience, &c.Avatar,
		&c.Job, &c.World, &c.DiscordUserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFoundAs(err)
	}
	return &c, nil
}

// CreateCharacter registers a new character and returns the stored row.
func (s *Store) CreateCharacter(ctx context.Context, c *Character) (*Character, error) {
	var created Character
	err := s.pool.QueryRow(ctx, `
		INSERT INTO characters (name, level, experience, avatar, job, world, discord_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+characterColumns+`
	`, c.Name, c.Level, c.Experience, c.Avatar, c.Job, c.World, c.DiscordUserID).
		Scan(&created.ID, &created.Name, &created.Level, &created.Experience, &created.Avatar,
			&created.Job, &created.World, &created.DiscordUserID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateCharacter updates the editable registration fields of a character.
// Returns ErrNotFound when no row matches.
func (s *Store) UpdateCharacter(ctx context.Context, id, name, job, world string, level int) (*Character, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE characters
		SET name = $2, job = $3, world = $4, level = $5, updated_at = now()
		WHERE id = $1
	`, id, name, job, world, level)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.GetCharacter(ctx, id)
}

// DeleteCharacter removes a character and, via cascade, its progression
// history.
func (s *Store) DeleteCharacter(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM characters
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
