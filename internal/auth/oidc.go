package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/config"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/models"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/uniuri"
)

const (
	oidcStatePrefix = "oidc_state:"
	oidcStateTTL    = 5 * time.Minute
)

var (
	// ErrOIDCDisabled is returned when OIDC is disabled via configuration.
	ErrOIDCDisabled = errors.New("oidc authentication is disabled")
	// ErrInvalidState is returned when the callback state is unknown or expired.
	ErrInvalidState = errors.New("invalid or expired oidc state")
	// ErrMissingEmail is returned when the ID token carries no email claim.
	ErrMissingEmail = errors.New("oidc id token has no email claim")
)

// OIDCProvider handles the authorization code flow against an OpenID Connect provider.
type OIDCProvider struct {
	verifier *oidc.IDTokenVerifier
	oauth2   oauth2.Config
	states   fiber.Storage
	local    *LocalProvider
	settings DefaultRoleSource
}

// DefaultRoleSource yields the role given to newly provisioned accounts.
type DefaultRoleSource interface {
	DefaultRole(ctx context.Context) rbac.Role
}

// NewOIDCProvider discovers the provider and prepares the OAuth2 client.
// Pending login states are kept in states.
func NewOIDCProvider(
	ctx context.Context,
	cfg config.OIDCAuth,
	states fiber.Storage,
	local *LocalProvider,
	settings DefaultRoleSource,
) (*OIDCProvider, error) {
	if !cfg.Enabled {
		return nil, ErrOIDCDisabled
	}

	provider, err := oidc.NewProvider(ctx, cfg.ProviderURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	return &OIDCProvider{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth2: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       scopes,
		},
		states:   states,
		local:    local,
		settings: settings,
	}, nil
}

// GenerateStateToken generates a random state token for CSRF protection.
func GenerateStateToken() (string, error) {
	return uniuri.New() //nolint:wrapcheck
}

// AuthURL creates and stores a state and returns the provider login URL.
func (p *OIDCProvider) AuthURL() (string, error) {
	state, err := GenerateStateToken()
	if err != nil {
		return "", err
	}

	if err = p.states.Set(oidcStatePrefix+state, []byte{1}, oidcStateTTL); err != nil {
		return "", fmt.Errorf("failed to store oidc state: %w", err)
	}

	return p.oauth2.AuthCodeURL(state), nil
}

// consumeState checks and removes state so it can be used once.
func (p *OIDCProvider) consumeState(state string) error {
	if state == "" {
		return ErrInvalidState
	}

	val, err := p.states.Get(oidcStatePrefix + state)
	if err != nil {
		return fmt.Errorf("failed to read oidc state: %w", err)
	}

	if len(val) == 0 {
		return ErrInvalidState
	}

	if err = p.states.Delete(oidcStatePrefix + state); err != nil {
		return fmt.Errorf("failed to delete oidc state: %w", err)
	}

	return nil
}

// HandleCallback exchanges code, verifies the ID token and returns the linked account.
func (p *OIDCProvider) HandleCallback(ctx context.Context, state, code string) (*models.User, error) {
	if err := p.consumeState(state); err != nil {
		return nil, err
	}

	oauth2Token, err := p.oauth2.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, ErrNoIDToken
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}

	if err = idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}

	if claims.Email == "" {
		return nil, ErrMissingEmail
	}

	if claims.Name == "" {
		claims.Name = claims.Email
	}

	role := rbac.RoleLead
	if p.settings != nil {
		role = p.settings.DefaultRole(ctx)
	}

	return p.local.UpsertExternal(ctx, models.AuthSourceOIDC, claims.Sub, claims.Email, claims.Name, role)
}
