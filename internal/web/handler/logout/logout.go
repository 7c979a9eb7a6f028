// Package logout provides the REST handler ending a token's validity.
package logout

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/api"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler"
	authmw "github.com/GoBlogAdmin/GoBlogAdmin/internal/web/middleware/auth"
)

// Path is the logout endpoint, relative to the API prefix.
const Path = handler.RootPath + "logout"

// Service is the logout handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Init registers the route.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	router.Post(Path, authmw.RequireToken(deps.Tokens, deps.Denylist), s.Logout)

	return nil
}

// Logout revokes the presented token when revocation is enabled. Without
// revocation the client simply forgets the token.
func (s *Service) Logout(c *fiber.Ctx) error {
	id, _ := handler.Identity(c)

	if err := s.deps.Denylist.Revoke(id); err != nil {
		return handler.SendError(c, err)
	}

	log.Debug().Uint64("user_id", id.UserID).Bool("revoked", s.deps.Denylist.Enabled()).Msg("logout")

	return c.JSON(api.Message{Message: "logged out"})
}
