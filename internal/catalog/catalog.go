// Package catalog merges backend videos and user-imported videos into one
// addressable catalog. Ids are origin-prefixed so uniqueness across
// sources holds by construction.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/remolabs/remo/internal/api"
	"github.com/remolabs/remo/internal/apperr"
	"github.com/remolabs/remo/internal/store"
	"github.com/remolabs/remo/internal/validate"
)

type SourceType string

const (
	SourceAPI    SourceType = "api"
	SourceLocal  SourceType = "local"
	SourceRemote SourceType = "remote"
	SourceCustom SourceType = "custom"
)

type Video struct {
	ID              string
	Title           string
	SourceType      SourceType
	MediaURL        string
	ThumbnailURL    string
	DurationSeconds int
}

// Backend is the slice of the API client the catalog consumes.
type Backend interface {
	FetchVideos(ctx context.Context) ([]api.VideoRecord, error)
	SeedVideos(ctx context.Context) error
}

type Catalog struct {
	backend Backend
	store   *store.Store
	now     func() time.Time
	newID   func() string
}

func New(backend Backend, st *store.Store) *Catalog {
	return &Catalog{
		backend: backend,
		store:   st,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// List merges the backend catalog with locally imported videos. A backend
// read failure degrades to the local half plus the error, so the catalog
// screen keeps working offline.
func (c *Catalog) List(ctx context.Context) ([]Video, error) {
	var out []Video

	records, apiErr := c.backend.FetchVideos(ctx)
	for _, rec := range records {
		out = append(out, Video{
			ID:              string(SourceAPI) + "-" + rec.ID,
			Title:           rec.Title,
			SourceType:      SourceAPI,
			MediaURL:        rec.VideoURL,
			ThumbnailURL:    rec.ThumbnailURL,
			DurationSeconds: int(rec.DurationSeconds),
		})
	}

	imported, err := c.store.ImportedVideos()
	if err != nil {
		return out, err
	}
	for _, rec := range imported {
		out = append(out, Video{
			ID:         rec.ID,
			Title:      rec.Title,
			SourceType: SourceType(rec.SourceType),
			MediaURL:   rec.MediaURL,
		})
	}

	return out, apiErr
}

// Find resolves a catalog id against the merged listing.
func (c *Catalog) Find(ctx context.Context, id string) (Video, error) {
	videos, err := c.List(ctx)
	for _, v := range videos {
		if v.ID == id {
			return v, nil
		}
	}
	if err != nil {
		return Video{}, err
	}
	return Video{}, fmt.Errorf("video %s: %w", id, apperr.ErrNotFound)
}

// Seed asks the backend to populate its sample data when the remote half
// of the catalog is empty. Idempotent.
func (c *Catalog) Seed(ctx context.Context) error {
	records, err := c.backend.FetchVideos(ctx)
	if err != nil {
		return err
	}
	if len(records) > 0 {
		return nil
	}
	return c.backend.SeedVideos(ctx)
}

// ImportURL adds a remote MP4 to the local catalog. An empty title is
// derived from the URL.
func (c *Catalog) ImportURL(rawURL, title string) (Video, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := ValidateMediaURL(rawURL); err != nil {
		return Video{}, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = TitleFromURL(rawURL)
	}
	if msg := validate.Title(title); msg != "" {
		return Video{}, apperr.Validation(msg)
	}

	rec := store.ImportedVideo{
		ID:           string(SourceCustom) + "-" + c.newID(),
		Title:        title,
		SourceType:   string(SourceCustom),
		MediaURL:     rawURL,
		CreatedAtISO: c.now().UTC().Format(time.RFC3339),
	}
	if err := c.store.AddImportedVideo(rec); err != nil {
		return Video{}, err
	}

	return Video{
		ID:         rec.ID,
		Title:      rec.Title,
		SourceType: SourceCustom,
		MediaURL:   rec.MediaURL,
	}, nil
}

func (c *Catalog) Remove(id string) error {
	return c.store.RemoveImportedVideo(id)
}

// ServerID strips the origin prefix from an api-sourced catalog id,
// recovering the backend's own identifier.
func ServerID(id string) string {
	return strings.TrimPrefix(id, string(SourceAPI)+"-")
}

// ValidateMediaURL accepts http(s) URLs up to the length limit whose path
// points at an MP4 file; query strings are allowed.
func ValidateMediaURL(rawURL string) error {
	if rawURL == "" {
		return apperr.Validation("media URL is required")
	}
	if msg := validate.MediaURL(rawURL); msg != "" {
		return apperr.Validation(msg)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return apperr.Validation("media URL is not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return apperr.Validation("media URL must start with http:// or https://")
	}
	if !strings.HasSuffix(strings.ToLower(u.Path), ".mp4") {
		return apperr.Validation("media URL must point to an MP4 file")
	}
	return nil
}

// TitleFromURL derives a readable title from the file name of the URL.
func TitleFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "Imported Video"
	}
	name := path.Base(u.Path)
	name = strings.TrimSuffix(name, path.Ext(name))
	if name == "" || name == "." || name == "/" {
		return "Imported Video"
	}
	return name
}
