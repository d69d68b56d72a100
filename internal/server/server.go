// Package server provides the HTTP API and handlers.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bryan-buckman/headlines/internal/database"
	"github.com/bryan-buckman/headlines/internal/model"
	"github.com/bryan-buckman/headlines/internal/prefs"
	"github.com/bryan-buckman/headlines/internal/reader"
	"github.com/bryan-buckman/headlines/internal/rss"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// Server is the main HTTP server.
type Server struct {
	reader  *reader.Reader
	log     logrus.FieldLogger
	router  chi.Router
	origins []string
}

// New creates a new server. origins lists the allowed CORS origins.
func New(rd *reader.Reader, log logrus.FieldLogger, origins []string) *Server {
	s := &Server{
		reader:  rd,
		log:     log.WithField("component", "server"),
		origins: origins,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}).Handler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/articles", s.handleArticles)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/article", s.handleArticle)
		r.Get("/channel", s.handleChannel)

		r.Get("/favorites", s.handleFavorites)
		r.Post("/favorites", s.handleAddFavorite)
		r.Delete("/favorites", s.handleRemoveFavorite)
		r.Post("/favorites/clear", s.handleClearFavorites)
		r.Get("/favorites/export", s.handleExportFavorites)
		r.Post("/favorites/import", s.handleImportFavorites)

		r.Get("/preferences", s.handleGetPreferences)
		r.Post("/preferences", s.handleSavePreferences)
	})

	s.router = r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start loads the feed in the background and serves until ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	go s.initialLoad(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("Server starting")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("Server stopped")
	return nil
}

func (s *Server) initialLoad(ctx context.Context) {
	res := <-s.reader.Refresh(ctx)
	if res.Err != nil {
		s.log.WithField("notice", res.Notice).Warn("Initial load failed")
		return
	}
	s.log.WithField("articles", len(res.Articles)).Info("Initial load complete")
}

// --- Articles ---

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	notice := s.reader.RefreshingNotice()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":      q,
		"articles":   s.reader.Search(q),
		"refreshing": notice != "",
		"notice":     notice,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	res := <-s.reader.Refresh(r.Context())
	if res.Err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": res.Notice})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(res.Articles),
		"articles": res.Articles,
	})
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	d, err := s.reader.Select(title)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleChannel(w http.ResponseWriter, r *http.Request) {
	ch, err := s.reader.Channel(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

// --- Favorites ---

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := s.reader.Favorites()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"favorites": favs})
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var a model.Article
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if a.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	added, notice, err := s.reader.AddFavorite(a)
	if err != nil {
		s.fail(w, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]interface{}{"added": added, "notice": notice})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	notice, err := s.reader.RemoveFavorite(title)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"notice": notice})
}

func (s *Server) handleClearFavorites(w http.ResponseWriter, r *http.Request) {
	notice, err := s.reader.ClearFavorites()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"notice": notice})
}

func (s *Server) handleExportFavorites(w http.ResponseWriter, r *http.Request) {
	out, err := s.reader.ExportFavorites()
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/x-opml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="favorites.opml"`)
	w.Write(out)
}

func (s *Server) handleImportFavorites(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("opml")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	n, notice, err := s.reader.ImportFavorites(file)
	if err != nil {
		if database.IsStorageError(err) {
			s.fail(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse OPML: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"imported": n, "notice": notice})
}

// --- Preferences ---

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reader.Preferences().Snapshot())
}

func (s *Server) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DarkTheme *bool   `json:"dark_theme"`
		Language  *string `json:"app_language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	p := s.reader.Preferences()
	if req.Language != nil {
		if _, err := prefs.ParseLanguage(*req.Language); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := p.SetLanguage(*req.Language); err != nil {
			s.fail(w, err)
			return
		}
	}
	if req.DarkTheme != nil {
		if err := p.SetDarkTheme(*req.DarkTheme); err != nil {
			s.fail(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, p.Snapshot())
}

// fail maps an operation error to a status code.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case database.IsStorageError(err):
		s.log.WithError(err).Error("Storage failure")
		writeError(w, http.StatusInternalServerError, "storage unavailable")
	case rss.IsFeedError(err):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, reader.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
