package auth

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

const revokedPrefix = "revoked:"

// Denylist records revoked token ids until the tokens expire on their own.
// It is filled by logout only; a role change does not revoke tokens.
type Denylist struct {
	storage fiber.Storage
	now     func() time.Time
}

// NewDenylist returns a denylist backed by storage. A nil storage disables revocation.
func NewDenylist(storage fiber.Storage) *Denylist {
	return &Denylist{storage: storage, now: time.Now}
}

// Enabled reports whether revocation is active.
func (d *Denylist) Enabled() bool {
	return d != nil && d.storage != nil
}

// Revoke marks the token of id as revoked for the rest of its lifetime.
func (d *Denylist) Revoke(id Identity) error {
	if !d.Enabled() || id.TokenID == "" {
		return nil
	}

	ttl := id.ExpiresAt.Sub(d.now())
	if ttl <= 0 {
		return nil
	}

	// storage backends expire with second granularity
	ttl = ttl.Truncate(time.Second) + time.Second

	if err := d.storage.Set(revokedPrefix+id.TokenID, []byte{1}, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// Check returns a revoked TokenError when the token of id was revoked.
func (d *Denylist) Check(id Identity) error {
	if !d.Enabled() || id.TokenID == "" {
		return nil
	}

	val, err := d.storage.Get(revokedPrefix + id.TokenID)
	if err != nil {
		return fmt.Errorf("failed to read revocation state: %w", err)
	}

	if len(val) > 0 {
		return reject(ReasonRevoked, nil)
	}

	return nil
}
