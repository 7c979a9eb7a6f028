// Package user provides the REST handlers for account management.
package user

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/api"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/auth"
	blogstore "github.com/GoBlogAdmin/GoBlogAdmin/internal/db/controller/blog"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler"
	authmw "github.com/GoBlogAdmin/GoBlogAdmin/internal/web/middleware/auth"
)

// Path is the collection endpoint, relative to the API prefix.
const Path = handler.RootPath + "users"

// Service is the user handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Init registers routes.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	token := authmw.RequireToken(deps.Tokens, deps.Denylist)
	manage := authmw.RequirePermission(rbac.PermManageUsers)

	router.Route(Path, func(r fiber.Router) {
		r.Put("/me", token, s.UpdateMe)
		r.Get(handler.RootPath, token, manage, s.List)
		r.Put("/:id/role", token, manage, s.UpdateRole)
		r.Delete("/:id", token, manage, s.Delete)
	})

	return nil
}

// List returns all accounts without their secrets.
func (s *Service) List(c *fiber.Ctx) error {
	users, err := s.deps.Users.ListUsers(c.UserContext())
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(api.NewUsers(users))
}

// UpdateRole changes the role of another account. The caller's own role can
// never be changed through this endpoint. Tokens issued before the change keep
// the role they carry until they expire.
func (s *Service) UpdateRole(c *fiber.Ctx) error {
	actor, _ := handler.Identity(c)

	targetID, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	in := new(api.RoleRequest)
	if err = c.BodyParser(in); err != nil {
		return handler.SendError(c, handler.Validationf("invalid request body: %v", err))
	}

	role, err := auth.AuthorizeRoleChange(actor, targetID, in.Role)
	if err != nil {
		return handler.SendError(c, err)
	}

	updated, err := s.deps.Users.UpdateRole(c.UserContext(), targetID, role)
	if err != nil {
		return handler.SendError(c, err)
	}

	log.Info().Uint64("actor_id", actor.UserID).Uint64("user_id", targetID).Str("role", string(role)).
		Msg("role changed")

	return c.JSON(api.NewUser(updated))
}

// Delete removes another account together with its posts.
func (s *Service) Delete(c *fiber.Ctx) error {
	actor, _ := handler.Identity(c)

	targetID, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	if err = auth.AuthorizeUserDeletion(actor, targetID); err != nil {
		return handler.SendError(c, err)
	}

	var images []string

	err = s.deps.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		users := auth.NewLocalProvider(tx)

		if _, errGet := users.GetUserByID(c.UserContext(), targetID); errGet != nil {
			return errGet
		}

		var errBlogs error

		images, errBlogs = blogstore.New(tx).DeleteByAuthor(c.UserContext(), targetID)
		if errBlogs != nil {
			return errBlogs
		}

		return users.DeleteUser(c.UserContext(), targetID)
	})
	if err != nil {
		return handler.SendError(c, err)
	}

	for _, img := range images {
		if errRemove := s.deps.Uploads.Remove(img); errRemove != nil {
			log.Warn().Err(errRemove).Str("image", img).Msg("failed to remove image")
		}
	}

	log.Info().Uint64("actor_id", actor.UserID).Uint64("user_id", targetID).Int("posts", len(images)).
		Msg("user deleted")

	return c.JSON(api.Message{Message: fmt.Sprintf("User %d deleted successfully", targetID)})
}

// UpdateMe changes name, email or password of the caller. A role sent along is ignored.
func (s *Service) UpdateMe(c *fiber.Ctx) error {
	id, _ := handler.Identity(c)

	in := new(api.ProfileRequest)
	if err := handler.Bind(c, s.deps, in); err != nil {
		return handler.SendError(c, err)
	}

	updated, err := s.deps.Users.UpdateProfile(c.UserContext(), id.UserID, auth.ProfileChanges{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(api.NewUser(updated))
}
