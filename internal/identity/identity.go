// Package identity holds the explicit session value passed into mutation
// paths: the viewer's display name and, when signed in, the backend user.
package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/remolabs/remo/internal/api"
	"github.com/remolabs/remo/internal/apperr"
	"github.com/remolabs/remo/internal/store"
)

type User struct {
	ID      string
	Name    string
	Email   string
	Picture string
}

// Session is the identity carried into comment mutations. User is nil for
// guests, who can post but never delete.
type Session struct {
	DisplayName string
	User        *User
	AccessToken string
}

// AuthorID is the acting user id, empty for guests.
func (s Session) AuthorID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

// AuthorName is the name attached to new comments: the account name when
// signed in, the chosen display name otherwise.
func (s Session) AuthorName() string {
	if s.User != nil && s.User.Name != "" {
		return s.User.Name
	}
	return s.DisplayName
}

// Authenticator exchanges a Google ID token for a backend session.
type Authenticator interface {
	Authenticate(ctx context.Context, idToken string) (api.AuthResult, error)
}

// Manager owns sign-in, sign-out and session restore against the local
// store.
type Manager struct {
	store *store.Store
	auth  Authenticator
	now   func() time.Time
}

func NewManager(st *store.Store, auth Authenticator) *Manager {
	return &Manager{store: st, auth: auth, now: time.Now}
}

func (m *Manager) SignIn(ctx context.Context, idToken string) (Session, error) {
	if strings.TrimSpace(idToken) == "" {
		return Session{}, apperr.Validation("identity token is required")
	}

	result, err := m.auth.Authenticate(ctx, idToken)
	if err != nil {
		return Session{}, fmt.Errorf("authenticate: %w", err)
	}

	rec := store.SessionRecord{
		AccessToken: result.AccessToken,
		UserID:      result.User.ID,
		UserName:    result.User.Name,
		UserEmail:   result.User.Email,
		UserPicture: result.User.Picture,
	}
	if err := m.store.SaveSessionRecord(rec); err != nil {
		return Session{}, err
	}

	return m.sessionFromRecord(rec), nil
}

func (m *Manager) SignOut() error {
	return m.store.ClearSessionRecord()
}

// Restore rebuilds the session from the local store. An expired access
// token drops the signed-in user but keeps the display name, so the guest
// posting flow keeps working offline.
func (m *Manager) Restore() (Session, error) {
	name, err := m.store.DisplayName()
	if err != nil {
		return Session{}, err
	}

	rec, found, err := m.store.SessionRecord()
	if err != nil {
		return Session{}, err
	}
	if !found {
		return Session{DisplayName: name}, nil
	}

	if tokenExpired(rec.AccessToken, m.now()) {
		_ = m.store.ClearSessionRecord()
		return Session{DisplayName: name}, nil
	}

	sess := m.sessionFromRecord(rec)
	sess.DisplayName = name
	return sess, nil
}

func (m *Manager) SetDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.Validation("display name is required")
	}
	return m.store.SaveDisplayName(name)
}

func (m *Manager) sessionFromRecord(rec store.SessionRecord) Session {
	return Session{
		DisplayName: rec.UserName,
		AccessToken: rec.AccessToken,
		User: &User{
			ID:      rec.UserID,
			Name:    rec.UserName,
			Email:   rec.UserEmail,
			Picture: rec.UserPicture,
		},
	}
}

// tokenExpired inspects the backend-issued JWT's exp claim. The client
// holds no signing secret, so the token is decoded without verification;
// the backend remains the authority on every request. Tokens that do not
// parse or carry no expiry are treated as expired.
func tokenExpired(tokenStr string, now time.Time) bool {
	if tokenStr == "" {
		return true
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return now.After(exp.Time)
}
