package ingest

import (
	"fmt"

	"github.com/google/uuid"
)

// Identity keys are comparable structs rather than concatenated strings so
// that composite natural keys cannot collide across field boundaries
// (artist "A" + album "BC" versus artist "AB" + album "C").
//
// Every key takes its external id when the source supplied a valid one,
// and falls back to the natural key otherwise. A key never carries both:
// when MBID is set the name fields are left zero so that two sightings of
// the same id with different name spellings compare equal.

// ArtistKey identifies an artist within and across ingestion runs.
type ArtistKey struct {
	MBID string
	Name string
}

// String renders the key for log lines.
func (k ArtistKey) String() string {
	if k.MBID != "" {
		return "artist mbid=" + k.MBID
	}
	return fmt.Sprintf("artist name=%q", k.Name)
}

// AlbumKey identifies an album. Albums with the same name by different
// artists are distinct.
type AlbumKey struct {
	MBID   string
	Name   string
	Artist ArtistKey
}

// IsZero reports whether the key is empty, i.e. the play had no album.
func (k AlbumKey) IsZero() bool {
	return k == AlbumKey{}
}

func (k AlbumKey) String() string {
	if k.MBID != "" {
		return "album mbid=" + k.MBID
	}
	return fmt.Sprintf("album name=%q (%s)", k.Name, k.Artist)
}

// TrackKey identifies a track. The same title under a different album or
// artist is a distinct track.
type TrackKey struct {
	MBID   string
	Name   string
	Album  AlbumKey
	Artist ArtistKey
}

func (k TrackKey) String() string {
	if k.MBID != "" {
		return "track mbid=" + k.MBID
	}
	return fmt.Sprintf("track name=%q (%s)", k.Name, k.Artist)
}

// normalizeMBID returns the canonical form of an external id, or "" if the
// id is absent or does not parse as a UUID. Malformed upstream ids are
// treated as absent, never as errors.
func normalizeMBID(mbid string) string {
	if mbid == "" {
		return ""
	}
	id, err := uuid.Parse(mbid)
	if err != nil {
		return ""
	}
	return id.String()
}

// artistKeyFor derives the identity key for the event's artist.
func artistKeyFor(e Event) ArtistKey {
	if mbid := normalizeMBID(e.ArtistMBID); mbid != "" {
		return ArtistKey{MBID: mbid}
	}
	return ArtistKey{Name: e.ArtistName}
}

// albumKeyFor derives the identity key for the event's album. The second
// return value is false when the event has no album (singles and EPs).
func albumKeyFor(e Event) (AlbumKey, bool) {
	mbid := normalizeMBID(e.AlbumMBID)
	if mbid == "" && e.AlbumName == "" {
		return AlbumKey{}, false
	}
	if mbid != "" {
		return AlbumKey{MBID: mbid}, true
	}
	return AlbumKey{Name: e.AlbumName, Artist: artistKeyFor(e)}, true
}

// trackKeyFor derives the identity key for the event's track.
func trackKeyFor(e Event) TrackKey {
	if mbid := normalizeMBID(e.TrackMBID); mbid != "" {
		return TrackKey{MBID: mbid}
	}
	album, _ := albumKeyFor(e)
	return TrackKey{Name: e.TrackName, Album: album, Artist: artistKeyFor(e)}
}
