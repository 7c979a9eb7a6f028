package auth

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
)

const (
	// DefaultTokenTTL is the lifetime of an issued token.
	DefaultTokenTTL = 24 * time.Hour

	// MinSecretLength is the minimum signing key length in bytes.
	MinSecretLength = 32

	bearerPrefix = "bearer "
)

// Identity is the authenticated subject of a request, taken from a verified token.
// The role is the one recorded at issuance and is not re-read from the store.
type Identity struct {
	UserID    uint64
	Role      rbac.Role
	TokenID   string
	ExpiresAt time.Time
}

// Claims is the signed payload of a token.
type Claims struct {
	UserID uint64 `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Token is an issued, signed token.
type Token struct {
	Raw       string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
	newID  func() string
}

// Option configures a TokenService.
type Option func(*TokenService)

// WithClock replaces the time source, used for issuance and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

// WithIssuer sets the iss claim and requires it on verification.
func WithIssuer(issuer string) Option {
	return func(s *TokenService) { s.issuer = issuer }
}

// WithIDGenerator replaces the jti generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *TokenService) { s.newID = fn }
}

// NewTokenService returns a token service signing with secret.
// A ttl of zero selects DefaultTokenTTL.
func NewTokenService(secret []byte, ttl time.Duration, opts ...Option) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}

	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	s := &TokenService{
		secret: key,
		ttl:    ttl,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// TTL returns the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token binding userID to role.
func (s *TokenService) Issue(userID uint64, role rbac.Role) (Token, error) {
	if userID == 0 {
		return Token{}, ErrInvalidSubject
	}

	if _, err := rbac.ParseRole(string(role)); err != nil {
		return Token{}, err
	}

	// jwt NumericDate has second precision
	now := s.now().Truncate(time.Second)
	exp := now.Add(s.ttl)
	id := s.newID()

	claims := Claims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, err //nolint:wrapcheck
	}

	return Token{Raw: raw, ID: id, IssuedAt: now, ExpiresAt: exp}, nil
}

// Verify checks signature, algorithm and expiry of raw and returns the identity it carries.
// Every failure is a *TokenError.
func (s *TokenService) Verify(raw string) (Identity, error) {
	if strings.TrimSpace(raw) == "" {
		return Identity{}, reject(ReasonMissing, nil)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
	}

	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, classify(raw, err)
	}

	role, err := rbac.ParseRole(claims.Role)
	if err != nil {
		return Identity{}, reject(ReasonMalformed, err)
	}

	if claims.UserID == 0 || claims.ID == "" {
		return Identity{}, reject(ReasonMalformed, jwt.ErrTokenRequiredClaimMissing)
	}

	return Identity{
		UserID:    claims.UserID,
		Role:      role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// classify maps parser errors to reject reasons. The parser checks the
// signature before the time based claims, so a tampered expired token is
// reported as an invalid signature.
func classify(raw string, err error) *TokenError {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed) && signatureUndecodable(raw):
		return reject(ReasonInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return reject(ReasonMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return reject(ReasonInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return reject(ReasonExpired, err)
	default:
		return reject(ReasonMalformed, err)
	}
}

// signatureUndecodable reports whether header and claims of raw are intact
// JSON segments, which leaves the signature as the part that failed.
func signatureUndecodable(raw string) bool {
	parts := strings.SplitN(raw, ".", 3)
	if len(parts) != 3 {
		return false
	}

	p := jwt.NewParser(jwt.WithStrictDecoding())

	for _, seg := range parts[:2] {
		b, err := p.DecodeSegment(seg)
		if err != nil || !json.Valid(b) {
			return false
		}
	}

	return true
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", reject(ReasonMissing, nil)
	}

	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", reject(ReasonMalformed, errors.New("authorization scheme is not bearer"))
	}

	raw := strings.TrimSpace(header[len(bearerPrefix):])
	if raw == "" {
		return "", reject(ReasonMissing, nil)
	}

	return raw, nil
}

// ExpiresAt reads the expiry of a token without verifying it.
// Only for clients that hold no signing key and use it for UX decisions.
func ExpiresAt(raw string) (time.Time, error) {
	claims := &Claims{}

	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, reject(ReasonMalformed, err)
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, reject(ReasonMalformed, jwt.ErrTokenRequiredClaimMissing)
	}

	return claims.ExpiresAt.Time, nil
}
