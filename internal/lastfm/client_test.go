package lastfm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

const recentTracksBody = `{
	"recenttracks": {
		"track": [
			{
				"artist": {"mbid": "a16371b9-7d36-497a-a9d4-42b0a0440c5e", "#text": "Slowdive"},
				"streamable": "0",
				"image": [],
				"mbid": "729400f2-60e8-4eda-b1e7-538cdaee7743",
				"album": {"mbid": "4acdaa51-aa44-4a9b-954f-3c6eaab65590", "#text": "everything is alive"},
				"name": "chained to a cloud",
				"url": "https://www.last.fm/music/Slowdive/_/chained+to+a+cloud",
				"@attr": {"nowplaying": "true"}
			},
			{
				"artist": {"mbid": "a16371b9-7d36-497a-a9d4-42b0a0440c5e", "#text": "Slowdive"},
				"streamable": "0",
				"image": [],
				"mbid": "729400f2-60e8-4eda-b1e7-538cdaee7743",
				"album": {"mbid": "", "#text": ""},
				"name": "chained to a cloud",
				"url": "https://www.last.fm/music/Slowdive/_/chained+to+a+cloud",
				"date": {"uts": "1703951089", "#text": "30 Dec 2023, 15:44"}
			}
		],
		"@attr": {"user": "jellebouwman", "page": "1", "perPage": "200", "totalPages": "1", "total": "2"}
	}
}`

// testClient returns a client pointed at the given test server.
func testClient(server *httptest.Server) *Client {
	return &Client{
		apiKey:     "test-api-key",
		httpClient: server.Client(),
		baseURL:    server.URL + "/",
	}
}

func TestRecentTracks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("method"); got != "user.getRecentTracks" {
			t.Errorf("method = %s, want user.getRecentTracks", got)
		}
		if got := r.URL.Query().Get("user"); got != "jellebouwman" {
			t.Errorf("user = %s, want jellebouwman", got)
		}
		if got := r.URL.Query().Get("limit"); got != "200" {
			t.Errorf("limit = %s, want 200", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(recentTracksBody))
	}))
	defer server.Close()

	client := testClient(server)

	tracks, err := client.RecentTracks(context.Background(), "jellebouwman", 1672527600, 1704063600, 0)
	if err != nil {
		t.Fatalf("RecentTracks() error = %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("RecentTracks() returned %d tracks, want 2", len(tracks))
	}

	playing := tracks[0]
	if !playing.NowPlaying {
		t.Error("tracks[0].NowPlaying = false, want true")
	}
	if playing.PlayedAt != nil {
		t.Errorf("tracks[0].PlayedAt = %v, want nil", playing.PlayedAt)
	}
	if playing.AlbumMBID != "4acdaa51-aa44-4a9b-954f-3c6eaab65590" {
		t.Errorf("tracks[0].AlbumMBID = %s", playing.AlbumMBID)
	}

	done := tracks[1]
	if done.NowPlaying {
		t.Error("tracks[1].NowPlaying = true, want false")
	}
	if done.PlayedAt == nil {
		t.Fatal("tracks[1].PlayedAt = nil, want set")
	}
	if got := done.PlayedAt.Unix(); got != 1703951089 {
		t.Errorf("tracks[1].PlayedAt.Unix() = %d, want 1703951089", got)
	}
	if done.ArtistName != "Slowdive" {
		t.Errorf("tracks[1].ArtistName = %s, want Slowdive", done.ArtistName)
	}
	if done.AlbumName != "" || done.AlbumMBID != "" {
		t.Errorf("tracks[1] album = (%q, %q), want empty", done.AlbumName, done.AlbumMBID)
	}
}

func TestRecentTracks_MalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing recenttracks object",
			body: `{"weeklyalbumchart": {}}`,
		},
		{
			name: "unparseable date uts",
			body: `{"recenttracks": {"track": [
				{"artist": {"mbid": "", "#text": "Bonobo"}, "streamable": "0",
				 "mbid": "", "album": {"mbid": "", "#text": ""}, "name": "Kerala",
				 "url": "", "date": {"uts": "not-a-number", "#text": ""}}
			], "@attr": {"user": "u", "page": "1", "perPage": "200", "totalPages": "1", "total": "1"}}}`,
		},
		{
			name: "unexpected streamable encoding",
			body: `{"recenttracks": {"track": [
				{"artist": {"mbid": "", "#text": "Bonobo"}, "streamable": "yes",
				 "mbid": "", "album": {"mbid": "", "#text": ""}, "name": "Kerala",
				 "url": "", "date": {"uts": "1703951089", "#text": ""}}
			], "@attr": {"user": "u", "page": "1", "perPage": "200", "totalPages": "1", "total": "1"}}}`,
		},
		{
			name: "unexpected nowplaying encoding",
			body: `{"recenttracks": {"track": [
				{"artist": {"mbid": "", "#text": "Bonobo"}, "streamable": "0",
				 "mbid": "", "album": {"mbid": "", "#text": ""}, "name": "Kerala",
				 "url": "", "@attr": {"nowplaying": "1"}}
			], "@attr": {"user": "u", "page": "1", "perPage": "200", "totalPages": "1", "total": "1"}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := testClient(server).RecentTracks(context.Background(), "u", 0, 1, 200)
			if err == nil {
				t.Error("RecentTracks() error = nil, want validation failure")
			}
		})
	}
}

func TestRecentTracks_APIErrors(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		wantErr error
	}{
		{name: "invalid parameters", code: 6, wantErr: ErrUserNotFound},
		{name: "invalid API key", code: 10, wantErr: ErrInvalidAPIKey},
		{name: "private profile", code: 17, wantErr: ErrPrivateProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"error": ` + strconv.Itoa(tt.code) + `, "message": "boom"}`))
			}))
			defer server.Close()

			_, err := testClient(server).RecentTracks(context.Background(), "u", 0, 1, 200)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("RecentTracks() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecentTracks_RetriesRateLimit(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if requests.Add(1) == 1 {
			w.Write([]byte(`{"error": 29, "message": "rate limited"}`))
			return
		}
		w.Write([]byte(recentTracksBody))
	}))
	defer server.Close()

	start := time.Now()
	tracks, err := testClient(server).RecentTracks(context.Background(), "u", 0, 1, 200)
	if err != nil {
		t.Fatalf("RecentTracks() error = %v", err)
	}
	if len(tracks) != 2 {
		t.Errorf("RecentTracks() returned %d tracks, want 2", len(tracks))
	}
	if requests.Load() != 2 {
		t.Errorf("server saw %d requests, want 2", requests.Load())
	}
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Errorf("retry happened after %v, want at least 1s backoff", elapsed)
	}
}

func TestAlbumInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("method"); got != "album.getInfo" {
			t.Errorf("method = %s, want album.getInfo", got)
		}
		if got := r.URL.Query().Get("mbid"); got != "4acdaa51-aa44-4a9b-954f-3c6eaab65590" {
			t.Errorf("mbid = %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"album": {"name": "everything is alive", "url": "https://www.last.fm/music/Slowdive/everything+is+alive"}}`))
	}))
	defer server.Close()

	url, err := testClient(server).AlbumInfo(context.Background(), "4acdaa51-aa44-4a9b-954f-3c6eaab65590")
	if err != nil {
		t.Fatalf("AlbumInfo() error = %v", err)
	}
	if url != "https://www.last.fm/music/Slowdive/everything+is+alive" {
		t.Errorf("AlbumInfo() = %s", url)
	}
}

func TestAlbumInfo_MissingAlbum(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	if _, err := testClient(server).AlbumInfo(context.Background(), "mbid"); err == nil {
		t.Error("AlbumInfo() error = nil, want missing album failure")
	}
}
