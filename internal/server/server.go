// Package server exposes the sync core to a UI layer as a loopback HTTP
// API: the catalog, auth and display-name endpoints, and the per-video
// player session with its state document.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/remolabs/remo/internal/catalog"
	"github.com/remolabs/remo/internal/httputil"
	"github.com/remolabs/remo/internal/identity"
	"github.com/remolabs/remo/internal/ratelimit"
	"github.com/remolabs/remo/internal/session"
	"github.com/remolabs/remo/internal/validate"
)

// Prober reports whether the comment backend is reachable.
type Prober interface {
	Health(ctx context.Context) error
}

type Config struct {
	Prober   Prober
	Catalog  *catalog.Catalog
	Sessions *session.Manager
	Identity *identity.Manager
}

type Server struct {
	router        chi.Router
	prober        Prober
	catalog       *catalog.Catalog
	sessions      *session.Manager
	identity      *identity.Manager
	commentLimits *ratelimit.Limiter
}

func New(cfg Config) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(slogMiddleware)

	s := &Server{
		router:        r,
		prober:        cfg.Prober,
		catalog:       cfg.Catalog,
		sessions:      cfg.Sessions,
		identity:      cfg.Identity,
		commentLimits: ratelimit.NewLimiter(ratelimit.CommentRate, ratelimit.CommentBurst),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/limits", s.handleLimits)

	s.router.Route("/api/videos", func(r chi.Router) {
		r.Get("/", s.handleListVideos)
		r.Post("/seed", s.handleSeedVideos)
		r.Post("/import", s.handleImportVideo)
		r.Delete("/{id}", s.handleRemoveVideo)
	})

	s.router.Route("/api/auth", func(r chi.Router) {
		r.Post("/google", s.handleGoogleSignIn)
		r.Post("/logout", s.handleSignOut)
		r.Get("/session", s.handleSession)
		r.Put("/display-name", s.handleSetDisplayName)
	})

	s.router.Route("/api/player", func(r chi.Router) {
		r.Post("/select", s.handleSelectVideo)
		r.Delete("/select", s.handleClearSelection)
		r.Get("/state", s.handleState)
		r.Post("/time", s.handleAdvanceTime)
		r.Post("/timestamp", s.handleSelectTimestamp)
		r.Post("/follow-live", s.handleFollowLive)
		r.Post("/scroll", s.handleScroll)
		r.Post("/show-all", s.handleShowAll)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/comments", s.handleAddComment)
		r.Delete("/comments/{id}", s.handleDeleteComment)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.prober != nil {
		if err := s.prober.Health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded","error":"comment backend unreachable"}`))
			return
		}
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleLimits(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, validate.FieldLimits())
}

type videoResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	SourceType      string `json:"sourceType"`
	MediaURL        string `json:"mediaUrl,omitempty"`
	ThumbnailURL    string `json:"thumbnailUrl,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
}

type videoListResponse struct {
	Videos       []videoResponse `json:"videos"`
	BackendError string          `json:"backendError,omitempty"`
}

func videoView(v catalog.Video) videoResponse {
	return videoResponse{
		ID:              v.ID,
		Title:           v.Title,
		SourceType:      string(v.SourceType),
		MediaURL:        v.MediaURL,
		ThumbnailURL:    v.ThumbnailURL,
		DurationSeconds: v.DurationSeconds,
	}
}

// handleListVideos returns the merged catalog. A backend failure degrades
// to the locally imported half plus an error note, not a hard failure.
func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := s.catalog.List(r.Context())
	resp := videoListResponse{Videos: make([]videoResponse, 0, len(videos))}
	for _, v := range videos {
		resp.Videos = append(resp.Videos, videoView(v))
	}
	if err != nil {
		resp.BackendError = err.Error()
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSeedVideos(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Seed(r.Context()); err != nil {
		httputil.WriteErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type importVideoRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

func (s *Server) handleImportVideo(w http.ResponseWriter, r *http.Request) {
	var req importVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v, err := s.catalog.ImportURL(req.URL, req.Title)
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, videoView(v))
}

func (s *Server) handleRemoveVideo(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Remove(chi.URLParam(r, "id")); err != nil {
		httputil.WriteErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
