// Package web provides the HTTP surface of the ingestion worker.
package web

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultAddr is the default server address.
const DefaultAddr = "127.0.0.1:8080"

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr     string
	Importer Importer
	Albums   AlbumEnricher
	Enricher Enricher
}

// Server is the HTTP server for the ingestion worker.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
}

// NewServer creates a new worker server.
func NewServer(cfg ServerConfig) *Server {
	handlers := NewHandlers(cfg.Importer, cfg.Albums, cfg.Enricher)

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		handlers: handlers,
	}
	s.setupRoutes()

	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	s.server = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Post("/import", s.handlers.Import)
	s.router.Post("/album-urls", s.handlers.AlbumURLs)
	s.router.Post("/release-years", s.handlers.ReleaseYears)
}

// Run starts the server and blocks until it is shut down by SIGINT or
// SIGTERM.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		log.Printf("Worker server starting at http://%s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
		log.Println("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}

	log.Println("Server stopped")
	return nil
}
