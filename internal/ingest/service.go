package ingest

import (
	"context"
	"fmt"
	"log"
)

// DefaultLimit is the number of events requested per run, matching the
// source API's page maximum.
const DefaultLimit = 200

// Service runs ingestion: fetch a user's play history for a year, reconcile
// it, and persist it. Re-running over an overlapping window is safe because
// entity writes are idempotent upserts; scrobbles are appended every run.
type Service struct {
	source Source
	store  Store
	limit  int
}

// Option configures a Service.
type Option func(*Service)

// WithLimit sets the number of events requested from the source.
func WithLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

// New creates a new ingestion service.
func New(source Source, store Store, opts ...Option) *Service {
	s := &Service{
		source: source,
		store:  store,
		limit:  DefaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result contains the outcome of one ingestion run.
type Result struct {
	Summary
	Fetched int
}

// Run ingests one user's listening history for one calendar year. A source
// failure is treated as "no events this run": the run completes with a zero
// result instead of failing. Store errors on individual rows are skipped
// and counted; only the user upsert (the foreign-key target for every
// scrobble) aborts the run.
func (s *Service) Run(ctx context.Context, username string, year int) (*Result, error) {
	events, err := s.source.RecentTracks(ctx, username, WindowForYear(year), s.limit)
	if err != nil {
		log.Printf("Track history source unavailable for %q: %v", username, err)
		events = nil
	}

	valid := Validate(events)
	if len(valid) == 0 {
		log.Printf("No scrobbles found for user %q in year %d", username, year)
		return &Result{Fetched: len(events)}, nil
	}

	if err := s.store.UpsertUser(ctx, username, nil); err != nil {
		return nil, fmt.Errorf("upserting user: %w", err)
	}

	batch := Dedupe(valid)
	sum := NewWriter(s.store).Write(ctx, username, batch)

	log.Printf("Ingestion complete for user %q, year %d: %d artists, %d albums, %d tracks, %d scrobbles written (%d entities, %d scrobbles skipped)",
		username, year, sum.Artists, sum.Albums, sum.Tracks, sum.Scrobbles, sum.SkippedEntities, sum.SkippedScrobbles)

	return &Result{Summary: sum, Fetched: len(events)}, nil
}
