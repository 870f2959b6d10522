package store

import (
	"context"
	"time"
)

// DiscordUser is a community member who registered characters through the
// Discord bot.
type DiscordUser struct {
	ID        string
	DiscordID string
	Username  string
	Avatar    *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User is a site account used for API authentication.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// ListDiscordUsers returns all community members, newest first.
func (s *Store) ListDiscordUsers(ctx context.Context) ([]DiscordUser, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, discord_id, username, avatar, created_at, updated_at
		FROM discord_users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []DiscordUser
	for rows.Next() {
		var u DiscordUser
		if err := rows.Scan(&u.ID, &u.DiscordID, &u.Username, &u.Avatar, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetDiscordUser returns one community member by id.
func (s *Store) GetDiscordUser(ctx context.Context, id string) (*DiscordUser, error) {
	var u DiscordUser
	err := s.pool.QueryRow(ctx, `
		SELECT id, discord_id, username, avatar, created_at, updated_at
		FROM discord_users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.DiscordID, &u.Username, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFoundAs(err)
	}
	return &u, nil
}

// CreateUser stores a new site account. The password must already be hashed.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, username, email, password_hash, created_at
	`, username, email, passwordHash).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail looks up a site account for login.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`, email).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, notFoundAs(err)
	}
	return &u, nil
}

// GetUser looks up a site account by id.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, notFoundAs(err)
	}
	return &u, nil
}
