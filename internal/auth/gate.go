package auth

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
)

// Authorize checks that id holds permission.
//
// It returns nil when allowed, an error matching ErrForbidden when denied and
// an error matching rbac.ErrUnknownPermission when permission is not part of
// the taxonomy. The last case is a programming error and must be surfaced as
// an internal failure, never as a denial.
func Authorize(id Identity, permission rbac.Permission) error {
	ok, err := rbac.Evaluate(id.Role, permission)
	if err != nil {
		decisions.WithLabelValues(string(permission), outcomeError).Inc()
		log.Error().Err(err).Str("condition", "unknown_permission").
			Str("permission", string(permission)).Msg("authorization against an unknown permission")

		return err //nolint:wrapcheck
	}

	if !ok {
		decisions.WithLabelValues(string(permission), outcomeDenied).Inc()
		log.Debug().Uint64("user_id", id.UserID).Str("role", string(id.Role)).
			Str("permission", string(permission)).Msg("permission denied")

		return fmt.Errorf("%w: role %q lacks %s", ErrForbidden, id.Role, permission)
	}

	decisions.WithLabelValues(string(permission), outcomeAllowed).Inc()

	return nil
}

// AuthorizeRoleChange checks that actor may set the role of targetID to requested.
// The checks run in a fixed order: the permission, then self modification,
// then the validity of the requested role. It returns the parsed role.
func AuthorizeRoleChange(actor Identity, targetID uint64, requested string) (rbac.Role, error) {
	if err := Authorize(actor, rbac.PermManageUsers); err != nil {
		return "", err
	}

	if actor.UserID == targetID {
		return "", ErrSelfRoleChange
	}

	role, err := rbac.ParseRole(requested)
	if err != nil {
		return "", err //nolint:wrapcheck
	}

	return role, nil
}

// AuthorizeUserDeletion checks that actor may delete the account targetID.
func AuthorizeUserDeletion(actor Identity, targetID uint64) error {
	if err := Authorize(actor, rbac.PermManageUsers); err != nil {
		return err
	}

	if actor.UserID == targetID {
		return ErrSelfDeletion
	}

	return nil
}

// IsForbidden reports whether err is a denial.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}
