package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jellebouwman/lastyearfm/internal/enrich"
	"github.com/jellebouwman/lastyearfm/internal/ingest"
)

// DefaultUsername is used when an import request names no user.
const DefaultUsername = "jellebouwman"

// minYear is the first year Last.fm has scrobble data for.
const minYear = 2002

// Importer runs an ingestion for one user and year.
type Importer interface {
	Run(ctx context.Context, username string, year int) (*ingest.Result, error)
}

// Enricher backfills release years for a user's scrobbles.
type Enricher interface {
	ReleaseYears(ctx context.Context, username string, year int) (*enrich.ReleaseYearResult, error)
}

// AlbumEnricher backfills page URLs for stored albums.
type AlbumEnricher interface {
	AlbumURLs(ctx context.Context) (*enrich.AlbumURLResult, error)
}

// Handlers contains the worker's HTTP handlers.
type Handlers struct {
	importer Importer
	albums   AlbumEnricher
	enricher Enricher // nil when no MusicBrainz mirror is configured
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(importer Importer, albums AlbumEnricher, enricher Enricher) *Handlers {
	return &Handlers{
		importer: importer,
		albums:   albums,
		enricher: enricher,
	}
}

// ImportRequest is the body of POST /import.
type ImportRequest struct {
	Username string `json:"username"`
	Year     int    `json:"year"`
}

// ImportResponse is the response of POST /import.
type ImportResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	ScrobblesCount int    `json:"scrobbles_count,omitempty"`
	SkippedCount   int    `json:"skipped_count,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Import handles POST /import: fetch and reconcile one user's listening
// history for one year.
func (h *Handlers) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ImportResponse{
			Success: false,
			Error:   "Invalid JSON body",
		})
		return
	}

	applyDefaults(&req.Username, &req.Year)

	if msg, ok := validateYear(req.Year); !ok {
		respondJSON(w, http.StatusBadRequest, ImportResponse{
			Success: false,
			Error:   msg,
		})
		return
	}

	result, err := h.importer.Run(r.Context(), req.Username, req.Year)
	if err != nil {
		log.Printf("Import error for user %s, year %d: %v", req.Username, req.Year, err)
		respondJSON(w, http.StatusInternalServerError, ImportResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, ImportResponse{
		Success:        true,
		Message:        fmt.Sprintf("Imported %d scrobbles for %s in %d", result.Scrobbles, req.Username, req.Year),
		ScrobblesCount: result.Scrobbles,
		SkippedCount:   result.SkippedScrobbles,
	})
}

// AlbumURLsResponse is the response of POST /album-urls.
type AlbumURLsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Updated int    `json:"updated,omitempty"`
	Skipped int    `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AlbumURLs handles POST /album-urls: fetch page URLs for stored albums
// that do not have one yet.
func (h *Handlers) AlbumURLs(w http.ResponseWriter, r *http.Request) {
	result, err := h.albums.AlbumURLs(r.Context())
	if err != nil {
		log.Printf("Album URL enrichment error: %v", err)
		respondJSON(w, http.StatusInternalServerError, AlbumURLsResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, AlbumURLsResponse{
		Success: true,
		Message: fmt.Sprintf("Updated %d album URLs (%d skipped)", result.Updated, result.Skipped),
		Updated: result.Updated,
		Skipped: result.Skipped,
	})
}

// ReleaseYearsRequest is the body of POST /release-years.
type ReleaseYearsRequest struct {
	Username string `json:"username"`
	Year     int    `json:"year"`
}

// ReleaseYearsResponse is the response of POST /release-years.
type ReleaseYearsResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Processed  int    `json:"processed,omitempty"`
	Found      int    `json:"found,omitempty"`
	MbidFound  int    `json:"mbid_found,omitempty"`
	FuzzyFound int    `json:"fuzzy_found,omitempty"`
	NotFound   int    `json:"not_found,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ReleaseYears handles POST /release-years: backfill release years for a
// user's stored scrobbles.
func (h *Handlers) ReleaseYears(w http.ResponseWriter, r *http.Request) {
	if h.enricher == nil {
		respondJSON(w, http.StatusServiceUnavailable, ReleaseYearsResponse{
			Success: false,
			Error:   "MusicBrainz database not available",
		})
		return
	}

	var req ReleaseYearsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ReleaseYearsResponse{
			Success: false,
			Error:   "Invalid JSON body",
		})
		return
	}

	applyDefaults(&req.Username, &req.Year)

	if msg, ok := validateYear(req.Year); !ok {
		respondJSON(w, http.StatusBadRequest, ReleaseYearsResponse{
			Success: false,
			Error:   msg,
		})
		return
	}

	result, err := h.enricher.ReleaseYears(r.Context(), req.Username, req.Year)
	if err != nil {
		log.Printf("Release years error for user %s, year %d: %v", req.Username, req.Year, err)
		respondJSON(w, http.StatusInternalServerError, ReleaseYearsResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, ReleaseYearsResponse{
		Success: true,
		Message: fmt.Sprintf("Processed %d scrobbles for %s in %d: %d via MBID, %d via fuzzy, %d not found",
			result.Processed, req.Username, req.Year, result.MBIDFound, result.FuzzyFound, result.NotFound),
		Processed:  result.Processed,
		Found:      result.MBIDFound + result.FuzzyFound,
		MbidFound:  result.MBIDFound,
		FuzzyFound: result.FuzzyFound,
		NotFound:   result.NotFound,
	})
}

func applyDefaults(username *string, year *int) {
	if *username == "" {
		*username = DefaultUsername
	}
	if *year == 0 {
		*year = time.Now().Year()
	}
}

func validateYear(year int) (string, bool) {
	if year < minYear || year > time.Now().Year() {
		return fmt.Sprintf("Invalid year. Must be between %d and %d", minYear, time.Now().Year()), false
	}
	return "", true
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}
