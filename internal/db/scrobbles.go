package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ScrobbleRepository handles scrobble database operations.
type ScrobbleRepository struct {
	pool *pgxpool.Pool
}

// Insert appends one scrobble. The year column is derived from the play
// time in UTC for fast range queries. Scrobbles are never deduplicated.
func (r *ScrobbleRepository) Insert(ctx context.Context, username string, trackID int64, playedAt time.Time) error {
	playedAt = playedAt.UTC()
	query := `
		INSERT INTO scrobbles (username, track_id, played_at, played_at_unix, year)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, username, trackID, playedAt, playedAt.Unix(), playedAt.Year())
	if err != nil {
		return fmt.Errorf("inserting scrobble: %w", err)
	}
	return nil
}

// ForReleaseYearLookup retrieves a user's scrobbles for a year that still
// need a release year, joined with the identifiers the lookup needs.
func (r *ScrobbleRepository) ForReleaseYearLookup(ctx context.Context, username string, year int) ([]ScrobbleForLookup, error) {
	query := `
		SELECT s.id, t.mbid, al.mbid, ar.name, t.name
		FROM scrobbles s
		JOIN tracks t ON s.track_id = t.id
		JOIN artists ar ON t.artist_id = ar.id
		LEFT JOIN albums al ON t.album_id = al.id
		WHERE s.username = $1 AND s.year = $2 AND s.release_year IS NULL
		ORDER BY s.id
	`
	rows, err := r.pool.Query(ctx, query, username, year)
	if err != nil {
		return nil, fmt.Errorf("querying scrobbles for release year lookup: %w", err)
	}
	defer rows.Close()

	var scrobbles []ScrobbleForLookup
	for rows.Next() {
		var s ScrobbleForLookup
		if err := rows.Scan(
			&s.ID,
			&s.TrackMBID,
			&s.AlbumMBID,
			&s.ArtistName,
			&s.TrackName,
		); err != nil {
			return nil, fmt.Errorf("scanning scrobble: %w", err)
		}
		scrobbles = append(scrobbles, s)
	}
	return scrobbles, rows.Err()
}

// SetReleaseYear stores the looked-up release year for a scrobble. A nil
// year records that the lookup found nothing.
func (r *ScrobbleRepository) SetReleaseYear(ctx context.Context, id int64, releaseYear *int) error {
	query := `
		UPDATE scrobbles
		SET release_year = $2
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, releaseYear)
	if err != nil {
		return fmt.Errorf("updating scrobble release year: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
