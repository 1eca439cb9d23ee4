package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles user database operations.
type UserRepository struct {
	pool *pgxpool.Pool
}

// Upsert creates or updates a user. An existing avatar URL is kept when the
// new one is null.
func (r *UserRepository) Upsert(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (username, avatar_url)
		VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET
			avatar_url = COALESCE(EXCLUDED.avatar_url, users.avatar_url)
	`
	_, err := r.pool.Exec(ctx, query, user.Username, user.AvatarURL)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}
