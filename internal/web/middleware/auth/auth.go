package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	authn "github.com/GoBlogAdmin/GoBlogAdmin/internal/auth"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler"
)

// RequireToken verifies the bearer token of the request and stores the
// identity in fiber.Locals. Requests without a valid token end with 401.
func RequireToken(tokens *authn.TokenService, denylist *authn.Denylist) fiber.Handler {
	if tokens == nil {
		log.Fatal().Msg("token service is nil")
	}

	return func(c *fiber.Ctx) error {
		raw, err := authn.BearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			authn.CountRejection(err)
			return handler.SendError(c, err)
		}

		id, err := tokens.Verify(raw)
		if err != nil {
			authn.CountRejection(err)
			log.Debug().Err(err).Str("path", c.Path()).Msg("token rejected")

			return handler.SendError(c, err)
		}

		if err = denylist.Check(id); err != nil {
			authn.CountRejection(err)
			return handler.SendError(c, err)
		}

		c.Locals(handler.LocalsIdentity, id)

		return c.Next()
	}
}

// RequirePermission lets the request through only when the identity stored by
// RequireToken holds permission. It panics at route registration for a
// permission outside the taxonomy.
func RequirePermission(permission rbac.Permission) fiber.Handler {
	if !permission.Known() {
		panic(fmt.Sprintf("route registered with unknown permission %q", permission))
	}

	return func(c *fiber.Ctx) error {
		id, ok := handler.Identity(c)
		if !ok {
			return handler.SendError(c, &authn.TokenError{Reason: authn.ReasonMissing})
		}

		if err := authn.Authorize(id, permission); err != nil {
			return handler.SendError(c, err)
		}

		return c.Next()
	}
}
