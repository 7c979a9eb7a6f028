// Package oidc provides the REST handlers of the OpenID Connect login.
//
// The provider redirects the browser to the configured redirect URL. When that
// URL points at the browser client, the client forwards state and code to
// CallbackPath and receives the same session body as a password login.
package oidc

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/api"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/auth"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler"
)

const (
	// LoginPath is the path to initiate OIDC login, relative to the API prefix.
	LoginPath = handler.RootPath + "auth/oidc/login"

	// CallbackPath is the path for OIDC callback, relative to the API prefix.
	CallbackPath = handler.RootPath + "auth/oidc/callback"
)

// Service is the OIDC handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Init registers the routes. Without a provider both endpoints answer 404.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	router.Get(LoginPath, s.Login)
	router.Get(CallbackPath, s.Callback)

	return nil
}

func (s *Service) available() error {
	if s.deps.OIDC == nil {
		return handler.ErrNotFound
	}

	return nil
}

// Login redirects to the provider.
func (s *Service) Login(c *fiber.Ctx) error {
	if err := s.available(); err != nil {
		return handler.SendError(c, err)
	}

	authURL, err := s.deps.OIDC.AuthURL()
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.Redirect(authURL)
}

// Callback completes the login and returns a token.
func (s *Service) Callback(c *fiber.Ctx) error {
	if err := s.available(); err != nil {
		return handler.SendError(c, err)
	}

	if errParam := c.Query("error"); errParam != "" {
		log.Warn().Str("error", errParam).Str("description", c.Query("error_description")).
			Msg("oidc provider returned an error")

		return handler.SendError(c, auth.ErrInvalidCredentials)
	}

	user, err := s.deps.OIDC.HandleCallback(c.UserContext(), c.Query("state"), c.Query("code"))
	if err != nil {
		return handler.SendError(c, err)
	}

	tok, err := s.deps.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		return handler.SendError(c, err)
	}

	log.Info().Uint64("user_id", user.ID).Msg("oidc login")

	return c.JSON(api.Session{Token: tok.Raw, ExpiresAt: tok.ExpiresAt, User: api.NewUser(user)})
}
