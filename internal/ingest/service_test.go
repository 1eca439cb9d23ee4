package ingest

import (
	"context"
	"errors"
	"testing"
)

// fakeSource serves a canned batch or a canned failure.
type fakeSource struct {
	events []Event
	err    error

	gotUser   string
	gotWindow Window
	gotLimit  int
}

func (s *fakeSource) RecentTracks(_ context.Context, user string, window Window, limit int) ([]Event, error) {
	s.gotUser = user
	s.gotWindow = window
	s.gotLimit = limit
	return s.events, s.err
}

func TestServiceRun(t *testing.T) {
	source := &fakeSource{events: []Event{
		{
			TrackName:  "Treat Each Other Right",
			TrackMBID:  "f55cfd26-7a0e-4f9a-99f4-9ce08bcf06cc",
			ArtistName: "Jamie xx",
			ArtistMBID: "d1511f42-82f2-4055-8c43-b1b309e847bc",
			AlbumName:  "In Waves",
			AlbumMBID:  "e1459276-b4ce-4de7-9c55-e17253b482b7",
			PlayedAt:   completedAt(1733646660),
		},
		{TrackName: "Dafodil", ArtistName: "Jamie xx", NowPlaying: true},
	}}
	store := newFakeStore()

	result, err := New(source, store).Run(context.Background(), "jellebouwman", 2024)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Fetched != 2 {
		t.Errorf("Fetched = %d, want 2", result.Fetched)
	}
	if result.Artists != 1 || result.Albums != 1 || result.Tracks != 1 || result.Scrobbles != 1 {
		t.Errorf("summary = %+v, want one of each", result.Summary)
	}
	if !store.users["jellebouwman"] {
		t.Error("user row was not upserted before scrobbles")
	}
	if got := store.scrobbles[0].playedAt.UTC().Year(); got != 2024 {
		t.Errorf("scrobble year = %d, want 2024", got)
	}

	if source.gotUser != "jellebouwman" {
		t.Errorf("source fetched user %q", source.gotUser)
	}
	if source.gotLimit != DefaultLimit {
		t.Errorf("source fetched with limit %d, want %d", source.gotLimit, DefaultLimit)
	}
	want := WindowForYear(2024)
	if source.gotWindow != want {
		t.Errorf("source fetched window %+v, want %+v", source.gotWindow, want)
	}
}

func TestServiceRunSourceUnavailable(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	store := newFakeStore()

	result, err := New(source, store).Run(context.Background(), "jellebouwman", 2024)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil: a dead source means an empty run", err)
	}

	if result.Fetched != 0 || result.Scrobbles != 0 {
		t.Errorf("result = %+v, want zero run", result)
	}
	if len(store.users) != 0 || len(store.scrobbles) != 0 {
		t.Error("store was written during an empty run")
	}
}

func TestServiceRunAllNowPlaying(t *testing.T) {
	source := &fakeSource{events: []Event{
		{TrackName: "Dafodil", ArtistName: "Jamie xx", NowPlaying: true},
	}}
	store := newFakeStore()

	result, err := New(source, store).Run(context.Background(), "jellebouwman", 2024)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Fetched != 1 || result.Scrobbles != 0 {
		t.Errorf("result = %+v, want fetched 1, written 0", result)
	}
}

func TestWithLimit(t *testing.T) {
	source := &fakeSource{}
	store := newFakeStore()

	if _, err := New(source, store, WithLimit(50)).Run(context.Background(), "u", 2023); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if source.gotLimit != 50 {
		t.Errorf("source fetched with limit %d, want 50", source.gotLimit)
	}
}

func TestWindowForYear(t *testing.T) {
	w := WindowForYear(2023)
	if w.From != 1672531200 {
		t.Errorf("From = %d, want 1672531200 (2023-01-01T00:00:00Z)", w.From)
	}
	if w.To != 1704067200 {
		t.Errorf("To = %d, want 1704067200 (2024-01-01T00:00:00Z)", w.To)
	}
}
