package db

// User represents a Last.fm user whose history is imported.
type User struct {
	Username  string
	AvatarURL *string // nullable
}

// Artist represents a reconciled artist.
type Artist struct {
	ID   int64
	MBID *string // nullable, canonical UUID when present
	Name string
}

// Album represents a reconciled album.
type Album struct {
	ID       int64
	MBID     *string // nullable
	Name     string
	ArtistID int64
	AlbumURL *string // nullable, populated by enrichment
}

// Track represents a reconciled track. AlbumID is nil for singles played
// without an album.
type Track struct {
	ID       int64
	MBID     *string // nullable
	Name     string
	AlbumID  *int64 // nullable
	ArtistID int64
}

// ScrobbleForLookup is a scrobble joined with the identifiers needed for a
// release-year lookup.
type ScrobbleForLookup struct {
	ID         int64
	TrackMBID  *string
	AlbumMBID  *string
	ArtistName string
	TrackName  string
}
