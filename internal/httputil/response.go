package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/remolabs/remo/internal/apperr"
)

type ErrorBody struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorBody{Error: message})
}

// ErrorStatus maps the core's error taxonomy onto HTTP status codes.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, apperr.ErrNetworkUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteErr renders a taxonomy error with its mapped status.
func WriteErr(w http.ResponseWriter, err error) {
	WriteError(w, ErrorStatus(err), err.Error())
}
