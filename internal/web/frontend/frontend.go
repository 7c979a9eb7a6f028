// Package frontend serves the HTML pages of the browser client.
//
// Pages hold no data access of their own: every read and write goes through
// the REST client with the token kept in the visitor's session. Each page is
// behind a route guard mirroring the backend's permissions; the backend still
// decides, and a 401 from it ends the session.
package frontend

import (
	"errors"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/client"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/config"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/guard"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/navigation"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/session"
)

const (
	localsSession = "session"

	templateError = "error"
)

// Deps bundles what the pages need.
type Deps struct {
	Cfg      *config.Config
	Client   *client.Client
	Sessions *session.Store
}

// Service is the browser client page service.
type Service struct {
	deps *Deps
}

// TemplateFuncs returns the helpers the page templates use. With dev set, a
// template checking an unknown permission fails to render; otherwise the
// check is logged and denied.
func TemplateFuncs(dev bool) template.FuncMap {
	return template.FuncMap{
		"can": func(role string, permission string) bool {
			ok, err := guard.CanRender(rbac.Role(role), rbac.Permission(permission))
			if err != nil {
				if dev {
					panic(err)
				}

				log.Error().Err(err).Str("condition", "unknown_permission").Msg("template checked an unknown permission")

				return false
			}

			return ok
		},
	}
}

// Init registers the pages.
func (s *Service) Init(app fiber.Router, deps *Deps) error {
	if app == nil || deps == nil || deps.Client == nil || deps.Sessions == nil || deps.Cfg == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	app.Get(LoginPath, s.LoginForm)
	app.Post(LoginPath, s.Login)
	app.Get(SignupPath, s.SignupForm)
	app.Post(SignupPath, s.Signup)
	app.Get(LogoutPath, s.Logout)
	app.Post(LogoutPath, s.Logout)
	app.Get(OIDCPath, s.OIDCLogin)
	app.Get(OIDCCallbackPath, s.OIDCCallback)

	app.Get(BlogsPath, s.require(rbac.PermViewBlogs), s.Blogs)
	app.Get(NewBlogPath, s.require(rbac.PermEditBlogs), s.NewBlogForm)
	app.Post(NewBlogPath, s.require(rbac.PermEditBlogs), s.CreateBlog)
	app.Get(EditBlogPath, s.require(rbac.PermEditBlogs), s.EditBlogForm)
	app.Post(EditBlogPath, s.require(rbac.PermEditBlogs), s.UpdateBlog)
	app.Get(DeleteBlogPath, s.require(rbac.PermDeleteBlogs), s.DeleteBlogForm)
	app.Post(DeleteBlogPath, s.require(rbac.PermDeleteBlogs), s.DeleteBlog)

	app.Get(UsersPath, s.require(rbac.PermManageUsers), s.Users)
	app.Post(UserRolePath, s.require(rbac.PermManageUsers), s.SetRole)
	app.Post(UserDeletePath, s.require(rbac.PermManageUsers), s.DeleteUser)

	app.Get(ProfilePath, s.require(), s.ProfileForm)
	app.Post(ProfilePath, s.require(), s.UpdateProfile)

	return nil
}

// require guards a page. Visitors without a valid session or without the
// permissions are sent to the login page.
func (s *Service) require(permissions ...rbac.Permission) fiber.Handler {
	for _, p := range permissions {
		if !p.Known() {
			panic("page registered with unknown permission " + string(p))
		}
	}

	return func(c *fiber.Ctx) error {
		d, err := s.deps.Sessions.Load(c)
		if err != nil {
			log.Warn().Err(err).Msg("failed to load session")
		}

		g := guard.New(permissions...)
		state := g.Resolve(d)

		if to := g.Redirect(); to != "" {
			log.Debug().Str("path", c.Path()).Stringer("state", state).Msg("page guarded")
			return c.Redirect(to)
		}

		c.Locals(localsSession, d)

		return c.Next()
	}
}

func current(c *fiber.Ctx) *session.Data {
	d, _ := c.Locals(localsSession).(*session.Data)
	return d
}

func (s *Service) render(c *fiber.Ctx, name string, nav *navigation.Context, data fiber.Map) error {
	d := current(c)

	if data == nil {
		data = fiber.Map{}
	}

	data["Title"] = s.deps.Cfg.Title
	data["Navigation"] = nav.WithMenu(d.Role())
	data["Session"] = d

	if d != nil {
		data["Role"] = string(d.Role())
	}

	return c.Render(name, data, handler.BaseLayout)
}

// fail handles an error of the backend. A 401 ends the session, a 403 is
// shown inline; anything else is shown on the error page.
func (s *Service) fail(c *fiber.Ctx, err error) error {
	switch {
	case client.IsUnauthenticated(err):
		if errDestroy := s.deps.Sessions.Destroy(c); errDestroy != nil {
			log.Warn().Err(errDestroy).Msg("failed to destroy session")
		}

		return c.Redirect(LoginPath)
	case client.IsForbidden(err):
		c.Status(fiber.StatusForbidden)
	default:
		status := client.StatusOf(err)
		if status == 0 {
			log.Error().Err(err).Str("path", c.Path()).Msg("backend request failed")

			status = fiber.StatusBadGateway
		}

		c.Status(status)
	}

	return s.render(c, templateError, navigation.NewContext("Error", "", c.Path()), fiber.Map{
		"Error": errorMessage(err),
	})
}

func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	return "the server could not be reached"
}
