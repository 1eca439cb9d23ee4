// Package musicbrainz looks up release years against a MusicBrainz
// PostgreSQL mirror.
package musicbrainz

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors.
var (
	// ErrNotConfigured is returned by LoadConfig when the MusicBrainz
	// environment variables are absent.
	ErrNotConfigured = errors.New("MusicBrainz database not configured")

	// ErrNoReleaseYear is returned when no release year could be found.
	ErrNoReleaseYear = errors.New("no release year found")
)

// Config holds MusicBrainz mirror connection settings.
type Config struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// LoadConfig reads MusicBrainz configuration from environment variables.
// Returns ErrNotConfigured when none of them are set; the mirror is an
// optional dependency.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Host:     os.Getenv("MUSICBRAINZ_DB_HOST"),
		Port:     os.Getenv("MUSICBRAINZ_DB_PORT"),
		Name:     os.Getenv("MUSICBRAINZ_DB_NAME"),
		User:     os.Getenv("MUSICBRAINZ_DB_USER"),
		Password: os.Getenv("MUSICBRAINZ_DB_PASSWORD"),
	}

	if cfg.Host == "" && cfg.Port == "" && cfg.Name == "" && cfg.User == "" && cfg.Password == "" {
		return nil, ErrNotConfigured
	}

	var missing []string
	if cfg.Host == "" {
		missing = append(missing, "MUSICBRAINZ_DB_HOST")
	}
	if cfg.Port == "" {
		missing = append(missing, "MUSICBRAINZ_DB_PORT")
	}
	if cfg.Name == "" {
		missing = append(missing, "MUSICBRAINZ_DB_NAME")
	}
	if cfg.User == "" {
		missing = append(missing, "MUSICBRAINZ_DB_USER")
	}
	if cfg.Password == "" {
		missing = append(missing, "MUSICBRAINZ_DB_PASSWORD")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required MusicBrainz environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// Client queries a MusicBrainz database mirror.
type Client struct {
	pool *pgxpool.Pool
}

// New creates a client and verifies the connection.
func New(ctx context.Context, cfg *Config) (*Client, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name,
	)

	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing MusicBrainz connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating MusicBrainz connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging MusicBrainz database: %w", err)
	}

	return &Client{pool: pool}, nil
}

// Close closes the connection pool.
func (c *Client) Close() {
	c.pool.Close()
}

// ReleaseYearByAlbumMBID finds the first-release year of the release with
// the given gid. Returns ErrNoReleaseYear when the release is unknown or
// has no year.
func (c *Client) ReleaseYearByAlbumMBID(ctx context.Context, mbid string) (int, error) {
	query := `
		SELECT rgm.first_release_date_year
		FROM musicbrainz.release r
		JOIN musicbrainz.release_group rg ON r.release_group = rg.id
		LEFT JOIN musicbrainz.release_group_meta rgm ON rg.id = rgm.id
		WHERE r.gid = $1::uuid
		LIMIT 1
	`
	return c.queryYear(ctx, query, mbid)
}

// ReleaseYearByTrackMBID finds the first-release year of the release group
// containing the recording with the given gid.
func (c *Client) ReleaseYearByTrackMBID(ctx context.Context, mbid string) (int, error) {
	query := `
		SELECT rgm.first_release_date_year
		FROM musicbrainz.recording r
		JOIN musicbrainz.track t ON r.id = t.recording
		JOIN musicbrainz.medium m ON t.medium = m.id
		JOIN musicbrainz.release rel ON m.release = rel.id
		JOIN musicbrainz.release_group rg ON rel.release_group = rg.id
		LEFT JOIN musicbrainz.release_group_meta rgm ON rg.id = rgm.id
		WHERE r.gid = $1::uuid
		LIMIT 1
	`
	return c.queryYear(ctx, query, mbid)
}

// ReleaseYearByArtistTrack finds a release year by fuzzy artist and track
// name search, normalizing collaboration separators and stripping version
// suffixes first, then retrying with only the first credited artist.
func (c *Client) ReleaseYearByArtistTrack(ctx context.Context, artistName, trackName string) (int, error) {
	artist := preprocessArtistName(artistName)
	track := preprocessTrackName(trackName)

	year, err := c.tryReleaseYear(ctx, artist, track)
	if err == nil {
		return year, nil
	}

	if first := extractFirstArtist(artist); first != artist {
		return c.tryReleaseYear(ctx, first, track)
	}

	return 0, ErrNoReleaseYear
}

// tryReleaseYear performs the two-step lookup: resolve the artist
// (including aliases), then find a recording by that artist.
func (c *Client) tryReleaseYear(ctx context.Context, artistName, trackName string) (int, error) {
	artistQuery := `
		SELECT DISTINCT a.id
		FROM musicbrainz.artist a
		LEFT JOIN musicbrainz.artist_alias aa ON a.id = aa.artist
		WHERE a.name ILIKE '%' || $1 || '%'
		   OR aa.name ILIKE '%' || $1 || '%'
		LIMIT 1
	`
	var artistID int64
	err := c.pool.QueryRow(ctx, artistQuery, strings.TrimSpace(artistName)).Scan(&artistID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNoReleaseYear
	}
	if err != nil {
		return 0, fmt.Errorf("searching artist %q: %w", artistName, err)
	}

	recordingQuery := `
		SELECT rgm.first_release_date_year
		FROM musicbrainz.recording r
		JOIN musicbrainz.artist_credit ac ON r.artist_credit = ac.id
		JOIN musicbrainz.artist_credit_name acn ON ac.id = acn.artist_credit
		JOIN musicbrainz.track t ON r.id = t.recording
		JOIN musicbrainz.medium m ON t.medium = m.id
		JOIN musicbrainz.release rel ON m.release = rel.id
		JOIN musicbrainz.release_group rg ON rel.release_group = rg.id
		LEFT JOIN musicbrainz.release_group_meta rgm ON rg.id = rgm.id
		WHERE acn.artist = $1
		  AND r.name ILIKE '%' || $2 || '%'
		LIMIT 1
	`
	return c.queryYear(ctx, recordingQuery, artistID, strings.TrimSpace(trackName))
}

func (c *Client) queryYear(ctx context.Context, query string, args ...any) (int, error) {
	var year *int
	err := c.pool.QueryRow(ctx, query, args...).Scan(&year)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNoReleaseYear
	}
	if err != nil {
		return 0, fmt.Errorf("querying release year: %w", err)
	}
	if year == nil {
		return 0, ErrNoReleaseYear
	}
	return *year, nil
}
