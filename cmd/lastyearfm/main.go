// Command lastyearfm runs the Last.fm listening-history ingestion worker.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/jellebouwman/lastyearfm/internal/db"
	"github.com/jellebouwman/lastyearfm/internal/enrich"
	"github.com/jellebouwman/lastyearfm/internal/ingest"
	"github.com/jellebouwman/lastyearfm/internal/lastfm"
	"github.com/jellebouwman/lastyearfm/internal/musicbrainz"
	"github.com/jellebouwman/lastyearfm/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	loadEnv()

	ctx := context.Background()

	lastfmCfg, err := lastfm.LoadConfig()
	if err != nil {
		return err
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable not set")
	}

	if err := db.Migrate(databaseURL); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	database, err := db.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := seedUser(ctx, database); err != nil {
		return err
	}

	client := lastfm.NewClient(lastfmCfg)
	importer := ingest.New(lastfm.NewEventSource(client), database.RecordStore())

	// The MusicBrainz mirror is optional; without it only release-year
	// enrichment is unavailable.
	var years enrich.ReleaseYearSource
	mbCfg, err := musicbrainz.LoadConfig()
	switch {
	case err == nil:
		mb, err := musicbrainz.New(ctx, mbCfg)
		if err != nil {
			log.Printf("Warning: failed to connect to MusicBrainz: %v", err)
			log.Printf("The /release-years endpoint will not be available")
		} else {
			defer mb.Close()
			years = mb
			log.Printf("MusicBrainz connection pool initialized")
		}
	case errors.Is(err, musicbrainz.ErrNotConfigured):
		log.Printf("MusicBrainz not configured; the /release-years endpoint will not be available")
	default:
		return err
	}

	enricher := enrich.New(database, client, years)

	addr := web.DefaultAddr
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	serverCfg := web.ServerConfig{
		Addr:     addr,
		Importer: importer,
		Albums:   enricher,
	}
	if enricher.HasReleaseYears() {
		serverCfg.Enricher = enricher
	}

	return web.NewServer(serverCfg).Run()
}

// loadEnv loads .env files outside production, trying .env.local first.
func loadEnv() {
	if os.Getenv("GO_ENV") == "production" {
		log.Printf("Running in production mode - using system environment variables")
		return
	}

	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("No .env file loaded (tried .env.local and .env)")
		} else {
			log.Printf("Loaded .env")
		}
	} else {
		log.Printf("Loaded .env.local")
	}
}

// seedUser upserts the user named by SEED_USERNAME, if set, so imports for
// a known account work before the first request.
func seedUser(ctx context.Context, database *db.DB) error {
	username := os.Getenv("SEED_USERNAME")
	if username == "" {
		return nil
	}

	user := db.User{Username: username}
	if avatar := os.Getenv("SEED_AVATAR_URL"); avatar != "" {
		user.AvatarURL = &avatar
	}
	if err := database.Users().Upsert(ctx, &user); err != nil {
		return fmt.Errorf("seeding user %q: %w", username, err)
	}
	log.Printf("Seeded user %q", username)
	return nil
}
