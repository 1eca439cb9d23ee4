// Package enrich backfills metadata that is not available at ingestion
// time: album page URLs from Last.fm and release years from a MusicBrainz
// mirror.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jellebouwman/lastyearfm/internal/db"
	"github.com/jellebouwman/lastyearfm/internal/musicbrainz"
)

// AlbumInfoSource fetches an album's page URL by external id.
type AlbumInfoSource interface {
	AlbumInfo(ctx context.Context, mbid string) (string, error)
}

// ReleaseYearSource looks up release years. Implemented by the MusicBrainz
// client; lookups that find nothing return musicbrainz.ErrNoReleaseYear.
type ReleaseYearSource interface {
	ReleaseYearByAlbumMBID(ctx context.Context, mbid string) (int, error)
	ReleaseYearByTrackMBID(ctx context.Context, mbid string) (int, error)
	ReleaseYearByArtistTrack(ctx context.Context, artistName, trackName string) (int, error)
}

// Service runs enrichment passes over stored records.
type Service struct {
	db     *db.DB
	albums AlbumInfoSource
	years  ReleaseYearSource
}

// New creates an enrichment service. years may be nil when no MusicBrainz
// mirror is configured; release-year enrichment is then unavailable.
func New(database *db.DB, albums AlbumInfoSource, years ReleaseYearSource) *Service {
	return &Service{db: database, albums: albums, years: years}
}

// HasReleaseYears reports whether release-year enrichment is available.
func (s *Service) HasReleaseYears() bool {
	return s.years != nil
}

// AlbumURLResult contains the outcome of an album URL pass.
type AlbumURLResult struct {
	Updated int
	Skipped int
}

// AlbumURLs fetches page URLs for stored albums that have an external id
// but no URL yet. Individual fetch or update failures are skipped.
func (s *Service) AlbumURLs(ctx context.Context) (*AlbumURLResult, error) {
	albums, err := s.db.Albums().MissingURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing albums missing URL: %w", err)
	}

	result := &AlbumURLResult{}
	for _, album := range albums {
		url, err := s.albums.AlbumInfo(ctx, *album.MBID)
		if err != nil {
			log.Printf("Failed to fetch album info for mbid %s: %v", *album.MBID, err)
			result.Skipped++
			continue
		}
		if err := s.db.Albums().SetURL(ctx, album.ID, url); err != nil {
			log.Printf("Failed to store URL for album %d: %v", album.ID, err)
			result.Skipped++
			continue
		}
		result.Updated++
	}

	log.Printf("Album URL enrichment complete: %d updated, %d skipped", result.Updated, result.Skipped)
	return result, nil
}

// ReleaseYearResult contains the outcome of a release-year pass.
type ReleaseYearResult struct {
	Processed  int
	MBIDFound  int
	FuzzyFound int
	NotFound   int
}

// ReleaseYears backfills release years for a user's scrobbles of one year.
// Pass 1 resolves scrobbles with external ids (album first, then track);
// pass 2 falls back to fuzzy artist/track search for the rest. Scrobbles
// whose lookup finds nothing are marked processed with a null year so they
// are not retried every run.
func (s *Service) ReleaseYears(ctx context.Context, username string, year int) (*ReleaseYearResult, error) {
	if s.years == nil {
		return nil, musicbrainz.ErrNotConfigured
	}

	scrobbles, err := s.db.Scrobbles().ForReleaseYearLookup(ctx, username, year)
	if err != nil {
		return nil, fmt.Errorf("listing scrobbles for lookup: %w", err)
	}

	log.Printf("Found %d scrobbles to process for release years", len(scrobbles))

	result := &ReleaseYearResult{}
	resolved := make(map[int64]bool, len(scrobbles))

	// Pass 1: direct external-id lookups
	for _, scrobble := range scrobbles {
		releaseYear, ok := s.directYear(ctx, scrobble)
		if !ok {
			continue
		}
		if err := s.db.Scrobbles().SetReleaseYear(ctx, scrobble.ID, &releaseYear); err != nil {
			log.Printf("Failed to update scrobble %d: %v", scrobble.ID, err)
			continue
		}
		result.MBIDFound++
		result.Processed++
		resolved[scrobble.ID] = true
	}

	// Pass 2: fuzzy search for the rest
	for _, scrobble := range scrobbles {
		if resolved[scrobble.ID] {
			continue
		}

		var releaseYear *int
		y, err := s.years.ReleaseYearByArtistTrack(ctx, scrobble.ArtistName, scrobble.TrackName)
		if err == nil {
			releaseYear = &y
			result.FuzzyFound++
		} else {
			if !errors.Is(err, musicbrainz.ErrNoReleaseYear) {
				log.Printf("Fuzzy lookup failed for %q - %q: %v", scrobble.ArtistName, scrobble.TrackName, err)
			}
			result.NotFound++
		}

		if err := s.db.Scrobbles().SetReleaseYear(ctx, scrobble.ID, releaseYear); err != nil {
			log.Printf("Failed to update scrobble %d: %v", scrobble.ID, err)
			continue
		}
		result.Processed++
	}

	log.Printf("Release year lookup complete: processed=%d, mbid_found=%d, fuzzy_found=%d, not_found=%d",
		result.Processed, result.MBIDFound, result.FuzzyFound, result.NotFound)
	return result, nil
}

// directYear resolves a scrobble's release year through its external ids,
// trying the album id before the track id.
func (s *Service) directYear(ctx context.Context, scrobble db.ScrobbleForLookup) (int, bool) {
	if scrobble.AlbumMBID != nil {
		if y, err := s.years.ReleaseYearByAlbumMBID(ctx, *scrobble.AlbumMBID); err == nil {
			return y, true
		}
	}
	if scrobble.TrackMBID != nil {
		if y, err := s.years.ReleaseYearByTrackMBID(ctx, *scrobble.TrackMBID); err == nil {
			return y, true
		}
	}
	return 0, false
}
