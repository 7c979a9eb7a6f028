// Package session keeps the token of the browser client in a server side
// session referenced by a cookie. The backend itself stays stateless.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/api"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/auth"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "session"

	dataKey = "data"
)

// ErrNilStorage is returned when no storage backend is given.
var ErrNilStorage = errors.New("session storage is nil")

// Data is what the browser client remembers about a login.
type Data struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      api.User  `json:"user"`
}

// Role returns the role last reported by the backend.
func (d *Data) Role() rbac.Role {
	if d == nil {
		return ""
	}

	return rbac.Role(d.User.Role)
}

// Valid reports whether the stored token has not expired at now.
func (d *Data) Valid(now time.Time) bool {
	return d != nil && d.Token != "" && now.Before(d.ExpiresAt)
}

// Store reads and writes Data through fiber sessions.
type Store struct {
	store *session.Store
	now   func() time.Time
}

// Config configures a Store.
type Config struct {
	Storage    fiber.Storage
	Expiration time.Duration
	Secure     bool
}

// New returns a session store on cfg.Storage.
func New(cfg Config) (*Store, error) {
	if cfg.Storage == nil {
		return nil, ErrNilStorage
	}

	if cfg.Expiration <= 0 {
		cfg.Expiration = auth.DefaultTokenTTL
	}

	return &Store{
		store: session.New(session.Config{
			Storage:        cfg.Storage,
			Expiration:     cfg.Expiration,
			KeyLookup:      "cookie:" + CookieName,
			CookieHTTPOnly: true,
			CookieSecure:   cfg.Secure,
			CookieSameSite: fiber.CookieSameSiteLaxMode,
		}),
		now: time.Now,
	}, nil
}

// Load returns the session data of the request, or nil when there is none.
// A session whose token has expired is dropped.
func (s *Store) Load(c *fiber.Ctx) (*Data, error) {
	sess, err := s.store.Get(c)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	raw, ok := sess.Get(dataKey).(string)
	if !ok || raw == "" {
		return nil, nil //nolint:nilnil
	}

	var d Data
	if err = json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, s.destroy(sess, fmt.Errorf("failed to decode session: %w", err))
	}

	if !d.Valid(s.now()) {
		return nil, s.destroy(sess, nil)
	}

	return &d, nil
}

// Save starts a fresh session holding d. The expiry is read from the token
// itself, the client has no key to verify it.
func (s *Store) Save(c *fiber.Ctx, d Data) error {
	if d.ExpiresAt.IsZero() {
		exp, err := auth.ExpiresAt(d.Token)
		if err != nil {
			return err //nolint:wrapcheck
		}

		d.ExpiresAt = exp
	}

	sess, err := s.store.Get(c)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	if err = sess.Regenerate(); err != nil {
		return fmt.Errorf("failed to regenerate session: %w", err)
	}

	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	sess.Set(dataKey, string(raw))

	if ttl := d.ExpiresAt.Sub(s.now()); ttl > 0 {
		sess.SetExpiry(ttl)
	}

	if err = sess.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Destroy removes the session of the request.
func (s *Store) Destroy(c *fiber.Ctx) error {
	sess, err := s.store.Get(c)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	return s.destroy(sess, nil)
}

func (s *Store) destroy(sess *session.Session, cause error) error {
	if err := sess.Destroy(); err != nil {
		return errors.Join(cause, fmt.Errorf("failed to destroy session: %w", err))
	}

	return cause
}
