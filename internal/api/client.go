// Package api is the client for the ReMo backend: the video catalog,
// per-video comments, seed data and Google sign-in exchange.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/remolabs/remo/internal/apperr"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type VideoRecord struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	VideoURL        string  `json:"video_url"`
	ThumbnailURL    string  `json:"thumbnail_url"`
	DurationSeconds float64 `json:"duration_seconds"`
	CreatedAt       string  `json:"created_at"`
}

type CommentRecord struct {
	ID               string  `json:"id"`
	Body             string  `json:"body"`
	AuthorName       string  `json:"author_name"`
	AuthorID         *string `json:"author_id"`
	TimestampSeconds float64 `json:"timestamp_seconds"`
	CreatedAt        string  `json:"created_at"`
}

type CreateCommentRequest struct {
	AuthorName       string  `json:"author_name"`
	AuthorID         *string `json:"author_id"`
	TimestampSeconds int     `json:"timestamp_seconds"`
	Body             string  `json:"body"`
}

type MomentRecord struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

type AuthUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

type AuthResult struct {
	AccessToken string   `json:"access_token"`
	User        AuthUser `json:"user"`
}

type authRequest struct {
	IDToken string `json:"id_token"`
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) FetchVideos(ctx context.Context) ([]VideoRecord, error) {
	var out []VideoRecord
	if err := c.do(ctx, http.MethodGet, "/videos", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SeedVideos asks the backend to populate its sample catalog. The backend
// treats it as an idempotent initializer.
func (c *Client) SeedVideos(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/seed", nil, nil)
}

func (c *Client) FetchMoments(ctx context.Context) ([]MomentRecord, error) {
	var out []MomentRecord
	if err := c.do(ctx, http.MethodGet, "/moments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) FetchComments(ctx context.Context, videoID string) ([]CommentRecord, error) {
	var out []CommentRecord
	path := "/videos/" + url.PathEscape(videoID) + "/comments"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateComment(ctx context.Context, videoID string, req CreateCommentRequest) (CommentRecord, error) {
	var out CommentRecord
	path := "/videos/" + url.PathEscape(videoID) + "/comments"
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return CommentRecord{}, err
	}
	return out, nil
}

// DeleteComment removes a comment. The backend authorizes against the
// acting user id passed as a query parameter.
func (c *Client) DeleteComment(ctx context.Context, commentID, actingUserID string) error {
	path := "/comments/" + url.PathEscape(commentID)
	if actingUserID != "" {
		path += "?user_id=" + url.QueryEscape(actingUserID)
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) Authenticate(ctx context.Context, idToken string) (AuthResult, error) {
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/google", authRequest{IDToken: idToken}, &out); err != nil {
		return AuthResult{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Network(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusError(resp.StatusCode); err != nil {
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Network(fmt.Errorf("decode response: %v", err))
	}
	return nil
}

func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusForbidden, code == http.StatusUnauthorized:
		return fmt.Errorf("remo api returned status %d: %w", code, apperr.ErrNotAuthorized)
	case code == http.StatusNotFound:
		return fmt.Errorf("remo api returned status %d: %w", code, apperr.ErrNotFound)
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("remo api returned status %d: %w", code, apperr.ErrRateLimited)
	case code >= 400 && code < 500:
		return fmt.Errorf("remo api returned status %d: %w", code, apperr.ErrValidation)
	default:
		return fmt.Errorf("remo api returned status %d: %w", code, apperr.ErrNetworkUnavailable)
	}
}
