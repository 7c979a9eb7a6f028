// Package settings provides the REST handlers for runtime site settings.
package settings

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/api"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/models"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler"
	authmw "github.com/GoBlogAdmin/GoBlogAdmin/internal/web/middleware/auth"
)

// Path is the collection endpoint, relative to the API prefix.
const Path = handler.RootPath + "settings"

// Service is the settings handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Init registers routes. Every route needs MANAGE_USERS.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	router.Route(Path, func(r fiber.Router) {
		r.Use(authmw.RequireToken(deps.Tokens, deps.Denylist), authmw.RequirePermission(rbac.PermManageUsers))
		r.Get(handler.RootPath, s.List)
		r.Get("/:name", s.Get)
		r.Put("/:name", s.Put)
		r.Delete("/:name", s.Delete)
	})

	return nil
}

func toAPI(m *models.Setting) api.Setting {
	return api.Setting{Name: m.Name, Value: string(m.Value)}
}

// List returns all stored settings.
func (s *Service) List(c *fiber.Ctx) error {
	all, err := s.deps.Settings.All(c.UserContext())
	if err != nil {
		return handler.SendError(c, err)
	}

	out := make([]api.Setting, 0, len(all))
	for i := range all {
		out = append(out, toAPI(&all[i]))
	}

	return c.JSON(out)
}

// Get returns one setting.
func (s *Service) Get(c *fiber.Ctx) error {
	m, err := s.deps.Settings.Get(c.UserContext(), c.Params("name"))
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(toAPI(m))
}

// Put creates or replaces a setting. The registration default role must name a role.
func (s *Service) Put(c *fiber.Ctx) error {
	name := c.Params("name")

	in := new(api.SettingRequest)
	if err := handler.Bind(c, s.deps, in); err != nil {
		return handler.SendError(c, err)
	}

	var err error

	if name == models.SettingDefaultRole {
		err = s.deps.Settings.SetDefaultRole(c.UserContext(), in.Value)
	} else {
		_, err = s.deps.Settings.Set(c.UserContext(), name, []byte(in.Value))
	}

	if err != nil {
		return handler.SendError(c, err)
	}

	actor, _ := handler.Identity(c)
	log.Info().Uint64("user_id", actor.UserID).Str("setting", name).Msg("setting saved")

	return c.JSON(api.Setting{Name: name, Value: in.Value})
}

// Delete removes a setting, which restores its default.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := s.deps.Settings.Delete(c.UserContext(), c.Params("name")); err != nil {
		return handler.SendError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
