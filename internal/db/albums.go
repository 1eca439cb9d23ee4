package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AlbumRepository handles album database operations.
type AlbumRepository struct {
	pool *pgxpool.Pool
}

// Upsert creates or updates an album, keyed by mbid when present and by
// (name, artist) otherwise, and sets album.ID to the store-assigned row id.
func (r *AlbumRepository) Upsert(ctx context.Context, album *Album) error {
	if album.MBID != nil {
		query := `
			INSERT INTO albums (mbid, name, artist_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (mbid) WHERE mbid IS NOT NULL DO UPDATE SET
				name = EXCLUDED.name
			RETURNING id
		`
		if err := r.pool.QueryRow(ctx, query, album.MBID, album.Name, album.ArtistID).Scan(&album.ID); err != nil {
			return fmt.Errorf("upserting album: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO albums (name, artist_id)
		VALUES ($1, $2)
		ON CONFLICT (name, artist_id) WHERE mbid IS NULL DO UPDATE SET
			name = EXCLUDED.name
		RETURNING id
	`
	if err := r.pool.QueryRow(ctx, query, album.Name, album.ArtistID).Scan(&album.ID); err != nil {
		return fmt.Errorf("upserting album: %w", err)
	}
	return nil
}

// MissingURL retrieves albums that have an mbid but no page URL yet, the
// input set for URL enrichment.
func (r *AlbumRepository) MissingURL(ctx context.Context) ([]Album, error) {
	query := `
		SELECT id, mbid, name, artist_id, album_url
		FROM albums
		WHERE mbid IS NOT NULL AND album_url IS NULL
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying albums missing URL: %w", err)
	}
	defer rows.Close()

	var albums []Album
	for rows.Next() {
		var album Album
		if err := rows.Scan(
			&album.ID,
			&album.MBID,
			&album.Name,
			&album.ArtistID,
			&album.AlbumURL,
		); err != nil {
			return nil, fmt.Errorf("scanning album: %w", err)
		}
		albums = append(albums, album)
	}
	return albums, rows.Err()
}

// SetURL stores the album's Last.fm page URL.
func (r *AlbumRepository) SetURL(ctx context.Context, id int64, url string) error {
	query := `
		UPDATE albums
		SET album_url = $2
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, url)
	if err != nil {
		return fmt.Errorf("updating album URL: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
