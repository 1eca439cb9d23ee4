// Package lastfm provides Last.fm API integration for fetching a user's
// listening history and album metadata.
package lastfm

import (
	"errors"
	"os"
)

// ErrMissingAPIKey is returned when LAST_FM_APPLICATION_API_KEY is not set.
var ErrMissingAPIKey = errors.New("missing LAST_FM_APPLICATION_API_KEY environment variable")

// Config holds Last.fm API configuration.
type Config struct {
	APIKey string
}

// LoadConfig reads Last.fm configuration from environment variables.
// Returns ErrMissingAPIKey if LAST_FM_APPLICATION_API_KEY is not set.
func LoadConfig() (*Config, error) {
	apiKey := os.Getenv("LAST_FM_APPLICATION_API_KEY")
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Config{APIKey: apiKey}, nil
}
