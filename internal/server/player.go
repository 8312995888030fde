package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/remolabs/remo/internal/apperr"
	"github.com/remolabs/remo/internal/httputil"
	"github.com/remolabs/remo/internal/identity"
)

type selectVideoRequest struct {
	VideoID string `json:"videoId"`
}

func (s *Server) handleSelectVideo(w http.ResponseWriter, r *http.Request) {
	var req selectVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.sessions.SelectVideo(r.Context(), req.VideoID); err != nil {
		httputil.WriteErr(w, err)
		return
	}
	s.writeState(w, r)
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, r)
}

// writeState renders the session state document for the restored viewer.
func (s *Server) writeState(w http.ResponseWriter, r *http.Request) {
	viewer, err := s.viewer()
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.sessions.Snapshot(viewer))
}

func (s *Server) viewer() (identity.Session, error) {
	return s.identity.Restore()
}

type advanceTimeRequest struct {
	Seconds int `json:"seconds"`
}

type advanceTimeResponse struct {
	ScrollToLatest bool `json:"scrollToLatest"`
}

func (s *Server) handleAdvanceTime(w http.ResponseWriter, r *http.Request) {
	var req advanceTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	scroll := s.sessions.AdvanceTo(req.Seconds)
	httputil.WriteJSON(w, http.StatusOK, advanceTimeResponse{ScrollToLatest: scroll})
}

type selectTimestampRequest struct {
	Timestamp string `json:"timestamp"`
}

type selectTimestampResponse struct {
	SeekToSeconds int `json:"seekToSeconds"`
}

func (s *Server) handleSelectTimestamp(w http.ResponseWriter, r *http.Request) {
	var req selectTimestampRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	seconds, err := s.sessions.SelectTimestamp(req.Timestamp)
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, selectTimestampResponse{SeekToSeconds: seconds})
}

func (s *Server) handleFollowLive(w http.ResponseWriter, r *http.Request) {
	s.sessions.FollowLive()
	w.WriteHeader(http.StatusNoContent)
}

type scrollRequest struct {
	NearBottom bool `json:"nearBottom"`
}

func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	var req scrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.sessions.ReportScroll(req.NearBottom)
	w.WriteHeader(http.StatusNoContent)
}

type showAllRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleShowAll(w http.ResponseWriter, r *http.Request) {
	var req showAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.sessions.SetShowAll(req.Enabled)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.sessions.RefreshComments()
	w.WriteHeader(http.StatusNoContent)
}

type addCommentRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	viewer, err := s.viewer()
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}
	if !s.commentLimits.Allow(limiterKey(viewer)) {
		httputil.WriteErr(w, apperr.ErrRateLimited)
		return
	}

	c, err := s.sessions.AddComment(r.Context(), req.Text, viewer)
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{
		"id":       c.ID,
		"momentId": c.MomentID,
	})
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	viewer, err := s.viewer()
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}
	if err := s.sessions.DeleteComment(r.Context(), chi.URLParam(r, "id"), viewer); err != nil {
		httputil.WriteErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// limiterKey buckets comment posting per author. Guests share the bucket
// of their display name.
func limiterKey(viewer identity.Session) string {
	if id := viewer.AuthorID(); id != "" {
		return "user:" + id
	}
	return "guest:" + viewer.DisplayName
}
