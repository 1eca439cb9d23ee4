package lastfm

import (
	"context"

	"github.com/jellebouwman/lastyearfm/internal/ingest"
)

// EventSource adapts Client to the ingestion pipeline's Source interface.
type EventSource struct {
	client *Client
}

// NewEventSource wraps a client as a track history source.
func NewEventSource(client *Client) *EventSource {
	return &EventSource{client: client}
}

// RecentTracks fetches the user's history and converts it to play events.
func (s *EventSource) RecentTracks(ctx context.Context, user string, window ingest.Window, limit int) ([]ingest.Event, error) {
	tracks, err := s.client.RecentTracks(ctx, user, window.From, window.To, limit)
	if err != nil {
		return nil, err
	}

	events := make([]ingest.Event, len(tracks))
	for i, t := range tracks {
		events[i] = ingest.Event{
			TrackName:  t.Name,
			TrackMBID:  t.MBID,
			ArtistName: t.ArtistName,
			ArtistMBID: t.ArtistMBID,
			AlbumName:  t.AlbumName,
			AlbumMBID:  t.AlbumMBID,
			PlayedAt:   t.PlayedAt,
			NowPlaying: t.NowPlaying,
		}
	}
	return events, nil
}
