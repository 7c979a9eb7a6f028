package frontend

import (
	"github.com/gofiber/fiber/v2"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/client"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/navigation"
)

// User management pages.
const (
	UsersPath      = "/users"
	UserRolePath   = "/users/:id/role"
	UserDeletePath = "/users/:id/delete"

	templateUsers = "user/list"
)

func (s *Service) usersPage(c *fiber.Ctx, errMsg string) error {
	users, err := s.deps.Client.Users(c.UserContext(), current(c).Token)
	if err != nil {
		return s.fail(c, err)
	}

	roles := make([]string, 0, len(rbac.Roles()))
	for _, r := range rbac.Roles() {
		roles = append(roles, string(r))
	}

	nav := navigation.NewContext("Users", navigation.SectionUsers, UsersPath).
		AddBreadcrumb("Users", UsersPath, true)

	return s.render(c, templateUsers, nav, fiber.Map{
		"Users": users,
		"Roles": roles,
		"Self":  current(c).User.ID,
		"Error": errMsg,
	})
}

// Users lists all accounts with role controls.
func (s *Service) Users(c *fiber.Ctx) error {
	return s.usersPage(c, "")
}

// SetRole changes the role of an account.
func (s *Service) SetRole(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return fiber.ErrNotFound
	}

	if _, err := s.deps.Client.SetRole(c.UserContext(), current(c).Token, id, c.FormValue("role")); err != nil {
		return s.userError(c, err)
	}

	return c.Redirect(UsersPath)
}

// DeleteUser removes an account.
func (s *Service) DeleteUser(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return fiber.ErrNotFound
	}

	if err := s.deps.Client.DeleteUser(c.UserContext(), current(c).Token, id); err != nil {
		return s.userError(c, err)
	}

	return c.Redirect(UsersPath)
}

// userError shows refusals of the backend above the user list.
func (s *Service) userError(c *fiber.Ctx, err error) error {
	switch status := client.StatusOf(err); status {
	case fiber.StatusBadRequest, fiber.StatusForbidden, fiber.StatusNotFound:
		c.Status(status)
		return s.usersPage(c, errorMessage(err))
	default:
		return s.fail(c, err)
	}
}
