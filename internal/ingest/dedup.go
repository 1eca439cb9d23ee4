package ingest

import "time"

// Artist is a deduplicated artist observed in a batch.
type Artist struct {
	Key  ArtistKey
	Name string
	MBID string // canonical external id, "" when keyed by name
}

// Album is a deduplicated album observed in a batch.
type Album struct {
	Key    AlbumKey
	Name   string
	MBID   string
	Artist ArtistKey
}

// Track is a deduplicated track observed in a batch. Album is the zero key
// when the track was played without an album (single/EP).
type Track struct {
	Key    TrackKey
	Name   string
	MBID   string
	Album  AlbumKey
	Artist ArtistKey
}

// Play is one validated event annotated with its resolved track key.
type Play struct {
	Track    TrackKey
	PlayedAt time.Time
}

// Batch holds the deduplicated entity sets for one ingestion run.
// Artists, Albums, and Tracks are in first-observation order.
type Batch struct {
	Artists []*Artist
	Albums  []*Album
	Tracks  []*Track
	Plays   []Play

	artists map[ArtistKey]*Artist
	albums  map[AlbumKey]*Album
	tracks  map[TrackKey]*Track
}

// Dedupe folds a batch of validated events into unique artist, album, and
// track sets plus the annotated play sequence. Identity and first-seen
// order are immutable; display names take the most recently observed
// spelling so that re-runs stay deterministic without reordering entities.
func Dedupe(events []Event) *Batch {
	b := &Batch{
		artists: make(map[ArtistKey]*Artist),
		albums:  make(map[AlbumKey]*Album),
		tracks:  make(map[TrackKey]*Track),
	}

	for _, e := range events {
		artistKey := artistKeyFor(e)
		if a, ok := b.artists[artistKey]; ok {
			a.Name = e.ArtistName
		} else {
			a := &Artist{Key: artistKey, Name: e.ArtistName, MBID: artistKey.MBID}
			b.artists[artistKey] = a
			b.Artists = append(b.Artists, a)
		}

		albumKey, hasAlbum := albumKeyFor(e)
		if hasAlbum {
			if al, ok := b.albums[albumKey]; ok {
				al.Name = e.AlbumName
			} else {
				al := &Album{Key: albumKey, Name: e.AlbumName, MBID: albumKey.MBID, Artist: artistKey}
				b.albums[albumKey] = al
				b.Albums = append(b.Albums, al)
			}
		}

		trackKey := trackKeyFor(e)
		if t, ok := b.tracks[trackKey]; ok {
			t.Name = e.TrackName
		} else {
			t := &Track{Key: trackKey, Name: e.TrackName, MBID: trackKey.MBID, Artist: artistKey}
			if hasAlbum {
				t.Album = albumKey
			}
			b.tracks[trackKey] = t
			b.Tracks = append(b.Tracks, t)
		}

		if e.PlayedAt != nil {
			b.Plays = append(b.Plays, Play{Track: trackKey, PlayedAt: *e.PlayedAt})
		}
	}

	return b
}
