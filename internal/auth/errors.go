package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is the category of every token rejection.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when an authenticated identity is denied an action.
	ErrForbidden = errors.New("forbidden")

	// ErrSelfRoleChange is returned when a user tries to change their own role.
	ErrSelfRoleChange = fmt.Errorf("%w: users cannot change their own role", ErrForbidden)

	// ErrSelfDeletion is returned when a user tries to delete their own account.
	ErrSelfDeletion = fmt.Errorf("%w: users cannot delete their own account", ErrForbidden)

	// ErrNoIDToken is returned when the OAuth2 token response doesn't contain an ID token.
	ErrNoIDToken = errors.New("no id_token in token response")

	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	// Both cases share one error so callers cannot probe for accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailExists is returned when registering an email that is already taken.
	ErrEmailExists = errors.New("user with this email already exists")

	// ErrUserNotFound is returned when a user cannot be found in the database or directory.
	ErrUserNotFound = errors.New("user not found")

	// ErrMultipleUsersFound is returned when a directory query expected one user but found multiple.
	ErrMultipleUsersFound = errors.New("multiple users found")

	// ErrOTPRequired is returned when an account has a second factor but no code was sent.
	ErrOTPRequired = errors.New("one-time password required")

	// ErrInvalidOTP is returned for a wrong or expired one-time password.
	ErrInvalidOTP = errors.New("invalid one-time password")

	// ErrWeakSecret is returned when the token signing key is too short.
	ErrWeakSecret = errors.New("token signing key is too short")

	// ErrInvalidSubject is returned when a token would be issued for user id 0.
	ErrInvalidSubject = errors.New("token subject must be a positive user id")
)

// RejectReason tells why a token was not accepted.
type RejectReason string

const (
	// ReasonMissing means no token was presented.
	ReasonMissing RejectReason = "missing"
	// ReasonMalformed means the token could not be parsed or carries invalid claims.
	ReasonMalformed RejectReason = "malformed"
	// ReasonInvalidSignature means the signature does not match or the algorithm is not accepted.
	ReasonInvalidSignature RejectReason = "invalid_signature"
	// ReasonExpired means the token is past its expiry.
	ReasonExpired RejectReason = "expired"
	// ReasonRevoked means the token was revoked by a logout.
	ReasonRevoked RejectReason = "revoked"
)

// TokenError is returned by token verification. It always matches ErrUnauthenticated.
type TokenError struct {
	Reason RejectReason
	Err    error
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrUnauthenticated, e.Reason)
	}

	return fmt.Sprintf("%s: %s: %v", ErrUnauthenticated, e.Reason, e.Err)
}

// Unwrap returns the underlying parser error, if any.
func (e *TokenError) Unwrap() error { return e.Err }

// Is reports ErrUnauthenticated as the category of every TokenError.
func (e *TokenError) Is(target error) bool {
	return target == ErrUnauthenticated //nolint:errorlint
}

func reject(reason RejectReason, err error) *TokenError {
	return &TokenError{Reason: reason, Err: err}
}

// ReasonOf returns the reject reason of err, or an empty reason when err is not a TokenError.
func ReasonOf(err error) RejectReason {
	var te *TokenError
	if errors.As(err, &te) {
		return te.Reason
	}

	return ""
}
