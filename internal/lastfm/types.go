package lastfm

import (
	"fmt"
	"strconv"
	"time"
)

// Track is one entry from a user's recent-tracks history. MBIDs are
// optional and occasionally malformed upstream; callers must not assume
// they parse. A track that is still playing has NowPlaying set and no
// PlayedAt.
type Track struct {
	Name       string
	MBID       string
	ArtistName string
	ArtistMBID string
	AlbumName  string
	AlbumMBID  string
	URL        string
	PlayedAt   *time.Time
	NowPlaying bool
}

// entityRef is the mbid/#text pair Last.fm uses for artists and albums.
type entityRef struct {
	MBID string `json:"mbid"`
	Name string `json:"#text"`
}

type recentTrack struct {
	Artist     entityRef `json:"artist"`
	Album      entityRef `json:"album"`
	MBID       string    `json:"mbid"`
	Name       string    `json:"name"`
	Streamable string    `json:"streamable"`
	URL        string    `json:"url"`
	// Present once the play has completed and been registered.
	Date *struct {
		UTS  string `json:"uts"`
		Text string `json:"#text"`
	} `json:"date"`
	// Present while the track is still playing.
	Attr *struct {
		NowPlaying string `json:"nowplaying"`
	} `json:"@attr"`
}

// recentTracksResponse is the JSON response for user.getRecentTracks.
type recentTracksResponse struct {
	RecentTracks *struct {
		Track []recentTrack `json:"track"`
		Attr  struct {
			User       string `json:"user"`
			Page       string `json:"page"`
			PerPage    string `json:"perPage"`
			TotalPages string `json:"totalPages"`
			Total      string `json:"total"`
		} `json:"@attr"`
	} `json:"recenttracks"`
}

// toTrack validates a raw recent-tracks entry and converts it. The API
// still serves some legacy encodings (string booleans, stringly unix
// timestamps); anything outside the documented shapes fails the fetch so
// that format drift never leaks past this boundary.
func (rt recentTrack) toTrack() (Track, error) {
	if rt.Streamable != "0" && rt.Streamable != "1" {
		return Track{}, fmt.Errorf("unexpected streamable value %q", rt.Streamable)
	}

	t := Track{
		Name:       rt.Name,
		MBID:       rt.MBID,
		ArtistName: rt.Artist.Name,
		ArtistMBID: rt.Artist.MBID,
		AlbumName:  rt.Album.Name,
		AlbumMBID:  rt.Album.MBID,
		URL:        rt.URL,
	}

	if rt.Attr != nil {
		switch rt.Attr.NowPlaying {
		case "true":
			t.NowPlaying = true
		case "false":
		default:
			return Track{}, fmt.Errorf("unexpected nowplaying value %q", rt.Attr.NowPlaying)
		}
	}

	if rt.Date != nil {
		uts, err := strconv.ParseInt(rt.Date.UTS, 10, 64)
		if err != nil {
			return Track{}, fmt.Errorf("parsing date.uts %q: %w", rt.Date.UTS, err)
		}
		playedAt := time.Unix(uts, 0).UTC()
		t.PlayedAt = &playedAt
	}

	return t, nil
}

// albumInfoResponse is the JSON response for album.getInfo.
type albumInfoResponse struct {
	Album *struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"album"`
}

// apiError represents a Last.fm API error response.
type apiError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}
