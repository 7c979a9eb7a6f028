// Package rbac serves the read-only role and permission table.
package rbac

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/api"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler"
)

// Path is the table endpoint, relative to the API prefix.
const Path = handler.RootPath + "rbac"

// Service is the rbac handler service.
type Service struct {
	handler.Service
}

// Init registers the route.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	router.Get(Path, s.Get)

	return nil
}

// Get returns the table.
func (s *Service) Get(c *fiber.Ctx) error {
	roles := rbac.Roles()
	perms := rbac.Permissions()

	out := api.RBAC{
		Roles:       make([]string, 0, len(roles)),
		Permissions: make([]string, 0, len(perms)),
		Table:       rbac.Table(),
	}

	for _, r := range roles {
		out.Roles = append(out.Roles, string(r))
	}

	for _, p := range perms {
		out.Permissions = append(out.Permissions, string(p))
	}

	c.Set(fiber.HeaderCacheControl, "public, max-age=300")

	return c.JSON(out)
}
