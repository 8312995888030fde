package server

import (
	"encoding/json"
	"net/http"

	"github.com/remolabs/remo/internal/httputil"
	"github.com/remolabs/remo/internal/identity"
)

type googleSignInRequest struct {
	IDToken string `json:"idToken"`
}

type sessionResponse struct {
	DisplayName string        `json:"displayName,omitempty"`
	SignedIn    bool          `json:"signedIn"`
	User        *userResponse `json:"user,omitempty"`
}

type userResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
}

func sessionView(sess identity.Session) sessionResponse {
	resp := sessionResponse{DisplayName: sess.DisplayName, SignedIn: sess.User != nil}
	if sess.User != nil {
		resp.User = &userResponse{
			ID:      sess.User.ID,
			Name:    sess.User.Name,
			Email:   sess.User.Email,
			Picture: sess.User.Picture,
		}
	}
	return resp
}

func (s *Server) handleGoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req googleSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := s.identity.SignIn(r.Context(), req.IDToken)
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sessionView(sess))
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.identity.SignOut(); err != nil {
		httputil.WriteErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.identity.Restore()
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sessionView(sess))
}

type displayNameRequest struct {
	DisplayName string `json:"displayName"`
}

func (s *Server) handleSetDisplayName(w http.ResponseWriter, r *http.Request) {
	var req displayNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.identity.SetDisplayName(req.DisplayName); err != nil {
		httputil.WriteErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
