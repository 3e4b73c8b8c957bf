package server

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/japaniel/tatoebando/pkg/phrases"
)

const (
	indexFile = "index.html"
	logoFile  = "tatuebando-logo.png"

	indexNotFound = "index.html not found!"
	reloadMessage = "Phrase database reloaded successfully!"
)

func (s *Server) registerRoutes() {
	s.router.HandleFunc("GET /{$}", s.handleIndex)
	s.router.HandleFunc("GET /"+logoFile, s.handleLogo)

	s.router.HandleFunc("GET /api/search", s.handleSearch) // ?q=...
	s.router.HandleFunc("GET /api/phrases", s.handlePhrases)
	s.router.HandleFunc("GET /api/stats", s.handleStats)
	s.router.HandleFunc("POST /api/reload", s.handleReload)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(filepath.Join(s.staticDir, indexFile))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("failed to read index page", zap.Error(err))
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(indexNotFound))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

func (s *Server) handleLogo(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(s.staticDir, logoFile))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.corpus.Search(r.URL.Query().Get("q")))
}

func (s *Server) handlePhrases(w http.ResponseWriter, r *http.Request) {
	list := s.corpus.Phrases()
	if list == nil {
		list = []phrases.Phrase{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.corpus.Stats())
}

type reloadResponse struct {
	Success bool   `json:"success"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	snap := s.corpus.Reload()
	writeJSON(w, http.StatusOK, reloadResponse{
		Success: true,
		Total:   len(snap.Phrases),
		Message: reloadMessage,
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v as UTF-8 JSON. HTML characters are not escaped.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
