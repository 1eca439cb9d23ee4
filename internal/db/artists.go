package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ArtistRepository handles artist database operations.
type ArtistRepository struct {
	pool *pgxpool.Pool
}

// Upsert creates or updates an artist, keyed by mbid when present and by
// name otherwise, and sets artist.ID to the store-assigned row id. The name
// is refreshed on conflict; the row is never duplicated.
func (r *ArtistRepository) Upsert(ctx context.Context, artist *Artist) error {
	if artist.MBID != nil {
		query := `
			INSERT INTO artists (mbid, name)
			VALUES ($1, $2)
			ON CONFLICT (mbid) WHERE mbid IS NOT NULL DO UPDATE SET
				name = EXCLUDED.name
			RETURNING id
		`
		if err := r.pool.QueryRow(ctx, query, artist.MBID, artist.Name).Scan(&artist.ID); err != nil {
			return fmt.Errorf("upserting artist: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO artists (name)
		VALUES ($1)
		ON CONFLICT (name) WHERE mbid IS NULL DO UPDATE SET
			name = EXCLUDED.name
		RETURNING id
	`
	if err := r.pool.QueryRow(ctx, query, artist.Name).Scan(&artist.ID); err != nil {
		return fmt.Errorf("upserting artist: %w", err)
	}
	return nil
}
