// Package auth authenticates users and authorizes their actions.
//
// # Tokens
//
// TokenService issues HS256 signed tokens carrying the user id, the role at
// the time of issuance, an id and the issue and expiry instants. Verify
// accepts only HS256 and reports every failure as a *TokenError whose reason
// is one of missing, malformed, invalid_signature, expired or revoked.
//
// The role inside a token is authoritative for its whole lifetime. Changing a
// user's role does not affect tokens issued before the change; the user sees
// the new role after logging in again.
//
// # Authorization
//
// Authorize is the single entry point used by request handlers. It evaluates
// the permission table of package rbac against the identity of a verified
// token. Role changes and account deletions have their own checks that forbid
// acting on one's own account.
//
// # Providers
//
// LocalProvider stores accounts with Argon2id hashed passwords. LDAPProvider
// and OIDCProvider authenticate against external sources and link the result
// to a local account. OTPVerifier adds an optional TOTP second factor.
//
// # Revocation
//
// Denylist remembers the ids of tokens presented at logout until they would
// have expired anyway.
package auth
