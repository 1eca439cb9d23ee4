package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	baseURL   = "http://ws.audioscrobbler.com/2.0/"
	userAgent = "lastyearfm/1.0"
)

// MaxLimit is the most recent-tracks entries the API returns per page.
const MaxLimit = 200

// Last.fm API error codes.
const (
	errCodeInvalidParams  = 6
	errCodeInvalidAPIKey  = 10
	errCodePrivateProfile = 17
	errCodeRateLimited    = 29
)

// Sentinel errors.
var (
	// ErrUserNotFound is returned when the user does not exist or the
	// request parameters were rejected.
	ErrUserNotFound = errors.New("user not found or invalid parameters")

	// ErrInvalidAPIKey is returned when the API key is invalid.
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrPrivateProfile is returned when the user's listening history is
	// not publicly visible.
	ErrPrivateProfile = errors.New("user has a private profile")

	// ErrRateLimited is returned when the API rate limit is exceeded
	// after retries.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// Client is a Last.fm API client.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Last.fm API client from the provided configuration.
func NewClient(cfg *Config) *Client {
	return &Client{
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

// RecentTracks fetches the user's listening history within [from, to]
// (unix seconds). Limit is clamped to MaxLimit; only the first page is
// fetched. Entries that fail the response shape validation fail the whole
// call.
func (c *Client) RecentTracks(ctx context.Context, user string, from, to int64, limit int) ([]Track, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}

	params := url.Values{
		"method":  {"user.getRecentTracks"},
		"user":    {user},
		"from":    {strconv.FormatInt(from, 10)},
		"to":      {strconv.FormatInt(to, 10)},
		"limit":   {strconv.Itoa(limit)},
		"format":  {"json"},
		"api_key": {c.apiKey},
	}

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fetching recent tracks: %w", err)
	}

	var resp recentTracksResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing recent tracks response: %w", err)
	}
	if resp.RecentTracks == nil {
		return nil, fmt.Errorf("recent tracks response missing recenttracks object")
	}

	tracks := make([]Track, 0, len(resp.RecentTracks.Track))
	for i, rt := range resp.RecentTracks.Track {
		t, err := rt.toTrack()
		if err != nil {
			return nil, fmt.Errorf("validating recent track %d: %w", i, err)
		}
		tracks = append(tracks, t)
	}

	return tracks, nil
}

// AlbumInfo fetches the Last.fm page URL for an album by its MBID.
func (c *Client) AlbumInfo(ctx context.Context, mbid string) (string, error) {
	params := url.Values{
		"method":  {"album.getInfo"},
		"mbid":    {mbid},
		"format":  {"json"},
		"api_key": {c.apiKey},
	}

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return "", fmt.Errorf("fetching album info: %w", err)
	}

	var resp albumInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing album info response: %w", err)
	}
	if resp.Album == nil {
		return "", fmt.Errorf("album info response missing album object")
	}

	return resp.Album.URL, nil
}

// doRequest performs an HTTP GET request with retry on rate limit.
// Retries up to 3 times with exponential backoff (1s, 2s, 4s).
func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + "?" + params.Encode()

	delays := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	var lastErr error

	for attempt := 0; attempt <= len(delays); attempt++ {
		// Wait before retry (skip on first attempt)
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delays[attempt-1]):
			}
		}

		body, err := c.doSingleRequest(ctx, reqURL)
		if err == nil {
			return body, nil
		}

		if errors.Is(err, ErrRateLimited) {
			lastErr = err
			continue
		}

		// Non-retryable error
		return nil, err
	}

	return nil, lastErr
}

// doSingleRequest performs a single HTTP request.
func (c *Client) doSingleRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	// Check for API error in response
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != 0 {
		switch apiErr.Error {
		case errCodeInvalidParams:
			return nil, ErrUserNotFound
		case errCodeInvalidAPIKey:
			return nil, ErrInvalidAPIKey
		case errCodePrivateProfile:
			return nil, ErrPrivateProfile
		case errCodeRateLimited:
			return nil, ErrRateLimited
		default:
			return nil, fmt.Errorf("API error %d: %s", apiErr.Error, apiErr.Message)
		}
	}

	return body, nil
}
