// Package store is the local persistence layer: a Badger-backed key-value
// store holding the imported-video catalog, local comments for videos the
// backend does not know about, and the cached auth session. Values are
// JSON documents under namespaced keys; absent reads come back as empty
// collections, never as errors.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
)

const (
	commentsPrefix = "comments:"
	videosKey      = "videos:imported"
	sessionKey     = "auth:session"
	nameKey        = "auth:displayname"
)

type Store struct {
	db *badger.DB
}

func Open(path string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory backs the store with Badger's in-memory mode. Used by
// tests and by --ephemeral runs.
func OpenInMemory() (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open in-memory store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Get unmarshals the value at key into v. The boolean reports presence.
func (s *Store) Get(key string, v any) (bool, error) {
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	return found, nil
}

func (s *Store) Set(key string, v any) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), buf)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// StoredComment is the local comment schema, one list per video.
type StoredComment struct {
	ID               string `json:"id"`
	TimestampSeconds int    `json:"timestampSeconds"`
	TimestampLabel   string `json:"timestampLabel"`
	Text             string `json:"text"`
	DisplayName      string `json:"displayName"`
	AuthorID         string `json:"authorId,omitempty"`
	CreatedAtISO     string `json:"createdAtISO"`
}

func (s *Store) CommentsForVideo(videoID string) ([]StoredComment, error) {
	var out []StoredComment
	if _, err := s.Get(commentsPrefix+videoID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AppendComment adds a comment to the video's list and rewrites it sorted
// by (timestampSeconds, createdAtISO). ISO-8601 strings sort as times do,
// so a lexicographic tie-break matches the canonical ordering.
func (s *Store) AppendComment(videoID string, c StoredComment) error {
	comments, err := s.CommentsForVideo(videoID)
	if err != nil {
		return err
	}
	comments = append(comments, c)
	sort.SliceStable(comments, func(i, j int) bool {
		if comments[i].TimestampSeconds != comments[j].TimestampSeconds {
			return comments[i].TimestampSeconds < comments[j].TimestampSeconds
		}
		return comments[i].CreatedAtISO < comments[j].CreatedAtISO
	})
	return s.Set(commentsPrefix+videoID, comments)
}

// ImportedVideo is a catalog entry added by the user, keyed outside the
// backend's namespace. MediaURL is the opaque locator the player resolves.
type ImportedVideo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	SourceType   string `json:"sourceType"`
	MediaURL     string `json:"mediaUrl"`
	CreatedAtISO string `json:"createdAtISO"`
}

func (s *Store) ImportedVideos() ([]ImportedVideo, error) {
	var out []ImportedVideo
	if _, err := s.Get(videosKey, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) AddImportedVideo(v ImportedVideo) error {
	videos, err := s.ImportedVideos()
	if err != nil {
		return err
	}
	return s.Set(videosKey, append(videos, v))
}

func (s *Store) RemoveImportedVideo(id string) error {
	videos, err := s.ImportedVideos()
	if err != nil {
		return err
	}
	filtered := videos[:0]
	for _, v := range videos {
		if v.ID != id {
			filtered = append(filtered, v)
		}
	}
	return s.Set(videosKey, filtered)
}

// SessionRecord caches the signed-in identity between runs.
type SessionRecord struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
	UserName    string `json:"userName"`
	UserEmail   string `json:"userEmail"`
	UserPicture string `json:"userPicture"`
}

func (s *Store) SessionRecord() (SessionRecord, bool, error) {
	var rec SessionRecord
	found, err := s.Get(sessionKey, &rec)
	return rec, found, err
}

func (s *Store) SaveSessionRecord(rec SessionRecord) error {
	return s.Set(sessionKey, rec)
}

func (s *Store) ClearSessionRecord() error {
	return s.Delete(sessionKey)
}

func (s *Store) DisplayName() (string, error) {
	var name string
	if _, err := s.Get(nameKey, &name); err != nil {
		return "", err
	}
	return name, nil
}

func (s *Store) SaveDisplayName(name string) error {
	return s.Set(nameKey, name)
}
