package db

import (
	"context"
	"time"
)

// RecordStore adapts the repositories to the ingestion pipeline's store
// interface.
type RecordStore struct {
	db *DB
}

// RecordStore returns the ingestion-facing store adapter.
func (db *DB) RecordStore() *RecordStore {
	return &RecordStore{db: db}
}

// UpsertUser creates or updates a user.
func (s *RecordStore) UpsertUser(ctx context.Context, username string, avatarURL *string) error {
	return s.db.Users().Upsert(ctx, &User{Username: username, AvatarURL: avatarURL})
}

// UpsertArtist creates or updates an artist and returns its row id.
func (s *RecordStore) UpsertArtist(ctx context.Context, name string, mbid *string) (int64, error) {
	artist := Artist{MBID: mbid, Name: name}
	if err := s.db.Artists().Upsert(ctx, &artist); err != nil {
		return 0, err
	}
	return artist.ID, nil
}

// UpsertAlbum creates or updates an album and returns its row id.
func (s *RecordStore) UpsertAlbum(ctx context.Context, name string, mbid *string, artistID int64) (int64, error) {
	album := Album{MBID: mbid, Name: name, ArtistID: artistID}
	if err := s.db.Albums().Upsert(ctx, &album); err != nil {
		return 0, err
	}
	return album.ID, nil
}

// UpsertTrack creates or updates a track and returns its row id.
func (s *RecordStore) UpsertTrack(ctx context.Context, name string, mbid *string, albumID *int64, artistID int64) (int64, error) {
	track := Track{MBID: mbid, Name: name, AlbumID: albumID, ArtistID: artistID}
	if err := s.db.Tracks().Upsert(ctx, &track); err != nil {
		return 0, err
	}
	return track.ID, nil
}

// InsertScrobble appends one scrobble.
func (s *RecordStore) InsertScrobble(ctx context.Context, username string, trackID int64, playedAt time.Time) error {
	return s.db.Scrobbles().Insert(ctx, username, trackID, playedAt)
}
