// Package login provides the REST handlers for registration and login.
//
// This file defines exported error values used throughout the login flow.
package login

import "errors"

var (
	// ErrLocalAuthDisabled is returned when local (email/password) authentication
	// is disabled by configuration.
	ErrLocalAuthDisabled = errors.New("local authentication is disabled")

	// ErrLDAPAuthDisabled is returned when LDAP authentication is disabled by
	// configuration.
	ErrLDAPAuthDisabled = errors.New("ldap authentication is disabled")
)
