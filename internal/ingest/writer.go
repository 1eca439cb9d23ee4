package ingest

import (
	"context"
	"log"
	"time"
)

// Store persists reconciled entities. Upserts are keyed by entity identity
// (external id when present, natural key otherwise) and must be safe to
// call repeatedly with identical input: an existing row is refreshed, never
// duplicated. The returned ids are the store-assigned row identifiers that
// child rows reference.
type Store interface {
	UpsertUser(ctx context.Context, username string, avatarURL *string) error
	UpsertArtist(ctx context.Context, name string, mbid *string) (int64, error)
	UpsertAlbum(ctx context.Context, name string, mbid *string, artistID int64) (int64, error)
	UpsertTrack(ctx context.Context, name string, mbid *string, albumID *int64, artistID int64) (int64, error)
	InsertScrobble(ctx context.Context, username string, trackID int64, playedAt time.Time) error
}

// Summary counts what a write pass persisted versus skipped.
type Summary struct {
	Artists   int
	Albums    int
	Tracks    int
	Scrobbles int

	SkippedEntities  int
	SkippedScrobbles int
}

// Writer maps a deduplicated batch onto store writes.
type Writer struct {
	store Store
}

// NewWriter creates a writer over the given store.
func NewWriter(store Store) *Writer {
	return &Writer{store: store}
}

// Write persists the batch in dependency order: artists, then albums, then
// tracks, then scrobbles. Parent row ids are resolved from each tier's
// upserts before the next tier runs. A failed row is logged with its
// identity and skipped along with anything that depends on it; writes are
// best effort, not a transaction.
func (w *Writer) Write(ctx context.Context, username string, batch *Batch) Summary {
	var sum Summary

	artistIDs := make(map[ArtistKey]int64, len(batch.Artists))
	for _, a := range batch.Artists {
		id, err := w.store.UpsertArtist(ctx, a.Name, mbidPtr(a.MBID))
		if err != nil {
			log.Printf("Failed to upsert %s: %v", a.Key, err)
			sum.SkippedEntities++
			continue
		}
		artistIDs[a.Key] = id
		sum.Artists++
	}

	albumIDs := make(map[AlbumKey]int64, len(batch.Albums))
	for _, al := range batch.Albums {
		artistID, ok := artistIDs[al.Artist]
		if !ok {
			log.Printf("Skipping %s: unresolved %s", al.Key, al.Artist)
			sum.SkippedEntities++
			continue
		}
		id, err := w.store.UpsertAlbum(ctx, al.Name, mbidPtr(al.MBID), artistID)
		if err != nil {
			log.Printf("Failed to upsert %s: %v", al.Key, err)
			sum.SkippedEntities++
			continue
		}
		albumIDs[al.Key] = id
		sum.Albums++
	}

	trackIDs := make(map[TrackKey]int64, len(batch.Tracks))
	for _, t := range batch.Tracks {
		artistID, ok := artistIDs[t.Artist]
		if !ok {
			log.Printf("Skipping %s: unresolved %s", t.Key, t.Artist)
			sum.SkippedEntities++
			continue
		}
		var albumID *int64
		if !t.Album.IsZero() {
			id, ok := albumIDs[t.Album]
			if !ok {
				log.Printf("Skipping %s: unresolved %s", t.Key, t.Album)
				sum.SkippedEntities++
				continue
			}
			albumID = &id
		}
		id, err := w.store.UpsertTrack(ctx, t.Name, mbidPtr(t.MBID), albumID, artistID)
		if err != nil {
			log.Printf("Failed to upsert %s: %v", t.Key, err)
			sum.SkippedEntities++
			continue
		}
		trackIDs[t.Key] = id
		sum.Tracks++
	}

	for i, p := range batch.Plays {
		trackID, ok := trackIDs[p.Track]
		if !ok {
			log.Printf("Skipping scrobble %d: unresolved %s", i, p.Track)
			sum.SkippedScrobbles++
			continue
		}
		if err := w.store.InsertScrobble(ctx, username, trackID, p.PlayedAt); err != nil {
			log.Printf("Failed to insert scrobble %d (%s): %v", i, p.Track, err)
			sum.SkippedScrobbles++
			continue
		}
		sum.Scrobbles++
	}

	return sum
}

func mbidPtr(mbid string) *string {
	if mbid == "" {
		return nil
	}
	return &mbid
}
