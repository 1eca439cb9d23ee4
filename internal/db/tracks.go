package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TrackRepository handles track database operations.
type TrackRepository struct {
	pool *pgxpool.Pool
}

// Upsert creates or updates a track, keyed by mbid when present and by
// (name, artist, album) otherwise, and sets track.ID to the store-assigned
// row id. The natural key treats a null album as a value, so an album-less
// single upserts onto itself rather than onto an album track of the same
// name.
func (r *TrackRepository) Upsert(ctx context.Context, track *Track) error {
	if track.MBID != nil {
		query := `
			INSERT INTO tracks (mbid, name, album_id, artist_id)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (mbid) WHERE mbid IS NOT NULL DO UPDATE SET
				name = EXCLUDED.name
			RETURNING id
		`
		if err := r.pool.QueryRow(ctx, query, track.MBID, track.Name, track.AlbumID, track.ArtistID).Scan(&track.ID); err != nil {
			return fmt.Errorf("upserting track: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO tracks (name, album_id, artist_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (name, artist_id, album_id) WHERE mbid IS NULL DO UPDATE SET
			name = EXCLUDED.name
		RETURNING id
	`
	if err := r.pool.QueryRow(ctx, query, track.Name, track.AlbumID, track.ArtistID).Scan(&track.ID); err != nil {
		return fmt.Errorf("upserting track: %w", err)
	}
	return nil
}
