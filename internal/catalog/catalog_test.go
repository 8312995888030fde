package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/remolabs/remo/internal/api"
	"github.com/remolabs/remo/internal/apperr"
	"github.com/remolabs/remo/internal/store"
)

type fakeBackend struct {
	videos    []api.VideoRecord
	fetchErr  error
	seedCalls int
}

func (f *fakeBackend) FetchVideos(ctx context.Context) ([]api.VideoRecord, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.videos, nil
}

func (f *fakeBackend) SeedVideos(ctx context.Context) error {
	f.seedCalls++
	return nil
}

func newTestCatalog(t *testing.T, backend *fakeBackend) (*Catalog, *store.Store) {
	t.Helper()
	st, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	c := New(backend, st)
	c.newID = func() string { return "fixed" }
	return c, st
}

func TestListMergesSourcesWithPrefixedIDs(t *testing.T) {
	backend := &fakeBackend{videos: []api.VideoRecord{{ID: "v1", Title: "Backend video", VideoURL: "https://cdn.example.com/v1.mp4"}}}
	c, st := newTestCatalog(t, backend)
	_ = st.AddImportedVideo(store.ImportedVideo{ID: "custom-abc", Title: "Mine", SourceType: "custom", MediaURL: "https://example.com/a.mp4"})

	videos, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(videos))
	}
	if videos[0].ID != "api-v1" || videos[0].SourceType != SourceAPI {
		t.Errorf("backend video: %+v", videos[0])
	}
	if videos[1].ID != "custom-abc" || videos[1].SourceType != SourceCustom {
		t.Errorf("imported video: %+v", videos[1])
	}
}

func TestListDegradesWhenBackendUnavailable(t *testing.T) {
	backend := &fakeBackend{fetchErr: apperr.ErrNetworkUnavailable}
	c, st := newTestCatalog(t, backend)
	_ = st.AddImportedVideo(store.ImportedVideo{ID: "custom-abc", Title: "Mine", SourceType: "custom"})

	videos, err := c.List(context.Background())
	if !errors.Is(err, apperr.ErrNetworkUnavailable) {
		t.Errorf("expected network error flag, got %v", err)
	}
	if len(videos) != 1 || videos[0].ID != "custom-abc" {
		t.Errorf("local catalog should survive backend failure: %+v", videos)
	}
}

func TestSeedOnlyWhenBackendEmpty(t *testing.T) {
	backend := &fakeBackend{}
	c, _ := newTestCatalog(t, backend)

	if err := c.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if backend.seedCalls != 1 {
		t.Errorf("seedCalls = %d, want 1", backend.seedCalls)
	}

	backend.videos = []api.VideoRecord{{ID: "v1"}}
	if err := c.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if backend.seedCalls != 1 {
		t.Errorf("seed must be skipped for a non-empty catalog, calls = %d", backend.seedCalls)
	}
}

func TestImportURLPersistsAndDerivesTitle(t *testing.T) {
	c, st := newTestCatalog(t, &fakeBackend{})

	v, err := c.ImportURL("https://example.com/clips/great-goal.mp4?sig=abc", "")
	if err != nil {
		t.Fatalf("ImportURL: %v", err)
	}
	if v.ID != "custom-fixed" {
		t.Errorf("id = %q", v.ID)
	}
	if v.Title != "great-goal" {
		t.Errorf("title = %q, want great-goal", v.Title)
	}

	stored, _ := st.ImportedVideos()
	if len(stored) != 1 || stored[0].MediaURL != "https://example.com/clips/great-goal.mp4?sig=abc" {
		t.Errorf("unexpected persisted videos: %+v", stored)
	}
}

func TestValidateMediaURL(t *testing.T) {
	valid := []string{
		"https://example.com/a.mp4",
		"http://example.com/a.MP4",
		"https://example.com/a.mp4?token=1",
	}
	for _, u := range valid {
		if err := ValidateMediaURL(u); err != nil {
			t.Errorf("ValidateMediaURL(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{
		"",
		"ftp://example.com/a.mp4",
		"example.com/a.mp4",
		"https://example.com/a.webm",
		"https://example.com/" + strings.Repeat("x", 2001) + ".mp4",
	}
	for _, u := range invalid {
		if err := ValidateMediaURL(u); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("ValidateMediaURL(%q) = %v, want ErrValidation", u, err)
		}
	}
}

func TestTitleFromURL(t *testing.T) {
	cases := map[string]string{
		"https://example.com/clips/intro.mp4": "intro",
		"https://example.com/":                "Imported Video",
		"://bad":                              "Imported Video",
	}
	for raw, want := range cases {
		if got := TitleFromURL(raw); got != want {
			t.Errorf("TitleFromURL(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestFindUnknownIDIsNotFound(t *testing.T) {
	c, _ := newTestCatalog(t, &fakeBackend{})
	_, err := c.Find(context.Background(), "api-nope")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
