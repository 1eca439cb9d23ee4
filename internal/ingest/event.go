// Package ingest implements the scrobble reconciliation pipeline: raw play
// events from a track history source are validated, keyed, deduplicated,
// and written to the record store as artist, album, track, and scrobble
// rows.
package ingest

import (
	"context"
	"time"
)

// Event is one play reported by the track history source. MBID fields are
// optional and untrusted: they may be empty or malformed. An event without
// a completion time (or flagged as now playing) represents a track that is
// still playing.
type Event struct {
	TrackName  string
	TrackMBID  string
	ArtistName string
	ArtistMBID string
	AlbumName  string
	AlbumMBID  string
	PlayedAt   *time.Time
	NowPlaying bool
}

// Window is a half-open time range in unix seconds.
type Window struct {
	From int64
	To   int64
}

// WindowForYear returns the window covering one calendar year in UTC.
func WindowForYear(year int) Window {
	from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC)
	return Window{From: from.Unix(), To: to.Unix()}
}

// Source provides a user's play history for a time window. A failed fetch
// is reported as an error; the ingestion run treats it as an empty batch.
type Source interface {
	RecentTracks(ctx context.Context, user string, window Window, limit int) ([]Event, error)
}

// Validate filters a batch down to completed plays. Events still playing
// (no completion timestamp, or an explicit now-playing marker) are
// silently dropped; that is normal steady-state input, not an error.
// Nothing else is validated here.
func Validate(events []Event) []Event {
	var kept []Event
	for _, e := range events {
		if e.NowPlaying || e.PlayedAt == nil {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}
