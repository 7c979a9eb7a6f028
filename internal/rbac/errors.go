package rbac

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPermission is returned when a permission outside the closed set is evaluated.
	// It indicates a programming error, never a denial.
	ErrUnknownPermission = errors.New("unknown permission")

	// ErrInvalidRole is returned when a string does not name an enumerated role.
	ErrInvalidRole = errors.New("invalid role")
)

// UnknownPermissionError carries the offending permission name.
type UnknownPermissionError struct {
	Permission string
}

func (e *UnknownPermissionError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownPermission, e.Permission)
}

// Unwrap allows errors.Is(err, ErrUnknownPermission).
func (e *UnknownPermissionError) Unwrap() error { return ErrUnknownPermission }

// InvalidRoleError carries the rejected role name.
type InvalidRoleError struct {
	Role string
}

func (e *InvalidRoleError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidRole, e.Role)
}

// Unwrap allows errors.Is(err, ErrInvalidRole).
func (e *InvalidRoleError) Unwrap() error { return ErrInvalidRole }
