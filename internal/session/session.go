// Package session identifies browser sessions with a signed cookie
// carrying a ULID. Session data lives in a cache.SessionCache.
package session

import (
	"crypto/rand"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/oklog/ulid/v2"
)

const CookieName = "sms_session"

type Manager struct {
	codec *securecookie.SecureCookie
	ttl   time.Duration
}

func NewManager(secret []byte, ttl time.Duration) (*Manager, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret must not be empty")
	}
	codec := securecookie.New(secret, nil)
	codec.MaxAge(int(ttl.Seconds()))
	return &Manager{codec: codec, ttl: ttl}, nil
}

// ID returns the request's session id. A missing or tampered cookie gets a
// fresh id, which is written back on w.
func (m *Manager) ID(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(CookieName); err == nil {
		var id string
		if err := m.codec.Decode(CookieName, c.Value, &id); err == nil && id != "" {
			return id, nil
		}
	}

	id, err := newID()
	if err != nil {
		return "", err
	}

	encoded, err := m.codec.Encode(CookieName, id)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}

func newID() (string, error) {
	id, err := ulid.New(ulid.Now(), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
