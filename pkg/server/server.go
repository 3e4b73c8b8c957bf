// Package server exposes the phrase corpus over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/japaniel/tatoebando/pkg/phrases"
)

// Corpus is the phrase store the server reads from.
type Corpus interface {
	Phrases() []phrases.Phrase
	Search(query string) []phrases.Phrase
	Stats() phrases.Stats
	Reload() *phrases.Snapshot
}

// Server represents the HTTP server
type Server struct {
	router    *http.ServeMux
	server    *http.Server
	addr      string
	staticDir string
	logger    *zap.Logger
	corpus    Corpus
}

// New creates a new HTTP server. staticDir holds index.html and the logo.
func New(addr string, corpus Corpus, staticDir string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:    http.NewServeMux(),
		addr:      addr,
		staticDir: staticDir,
		logger:    logger,
		corpus:    corpus,
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.applyMiddleware(s.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start listens and serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP implements http.Handler with the full middleware chain.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler; the last one applied runs first.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	handler = CORSMiddleware()(handler)
	return handler
}
