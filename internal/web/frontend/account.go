package frontend

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/api"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/client"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/guard"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/navigation"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/session"
)

// Account pages.
const (
	LoginPath        = guard.LoginPath
	SignupPath       = "/signup"
	LogoutPath       = "/logout"
	OIDCPath         = "/login/oidc"
	OIDCCallbackPath = "/login/oidc/callback"
	ProfilePath      = "/profile"

	templateLogin   = "auth/login"
	templateSignup  = "auth/signup"
	templateProfile = "user/profile"
)

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	OTP      string `form:"otp"`
	Source   string `form:"source"`
}

func (s *Service) authPage(c *fiber.Ctx, name, title string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}

	for _, k := range []string{"Email", "Name", "Source"} {
		if _, ok := data[k]; !ok {
			data[k] = ""
		}
	}

	a := s.deps.Cfg.Auth
	data["LocalEnabled"] = a.LocalDB.Enabled
	data["LDAPEnabled"] = a.LDAP.Enabled
	data["OIDCEnabled"] = a.OIDC.Enabled

	return s.render(c, name, navigation.NewContext(title, navigation.SectionAccount, c.Path()), data)
}

func (s *Service) start(c *fiber.Ctx, sess api.Session) error {
	err := s.deps.Sessions.Save(c, session.Data{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: sess.User})
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.Redirect(BlogsPath)
}

// LoginForm shows the login page, or the blog list when already logged in.
func (s *Service) LoginForm(c *fiber.Ctx) error {
	if d, _ := s.deps.Sessions.Load(c); d != nil {
		return c.Redirect(BlogsPath)
	}

	return s.authPage(c, templateLogin, "Login", nil)
}

// Login checks the credentials with the backend and starts a session.
func (s *Service) Login(c *fiber.Ctx) error {
	in := new(loginForm)
	if err := c.BodyParser(in); err != nil {
		return s.authPage(c.Status(fiber.StatusBadRequest), templateLogin, "Login", fiber.Map{"Error": "invalid form"})
	}

	sess, err := s.deps.Client.Login(c.UserContext(), api.LoginRequest{
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
		OTP:      strings.TrimSpace(in.OTP),
		Source:   in.Source,
	})
	if err != nil {
		var apiErr *client.APIError
		if !errors.As(err, &apiErr) {
			return s.fail(c, err)
		}

		return s.authPage(c.Status(apiErr.Status), templateLogin, "Login", fiber.Map{
			"Error":   apiErr.Message,
			"Email":   in.Email,
			"Source":  in.Source,
			"NeedOTP": apiErr.Category == handler.CategoryOTPRequired || in.OTP != "",
		})
	}

	return s.start(c, sess)
}

// SignupForm shows the registration page.
func (s *Service) SignupForm(c *fiber.Ctx) error {
	return s.authPage(c, templateSignup, "Sign up", nil)
}

// Signup registers an account and starts a session.
func (s *Service) Signup(c *fiber.Ctx) error {
	in := new(api.RegisterRequest)
	if err := c.BodyParser(in); err != nil {
		return s.authPage(c.Status(fiber.StatusBadRequest), templateSignup, "Sign up", fiber.Map{"Error": "invalid form"})
	}

	// the role is never picked in the browser
	in.Role = ""

	sess, err := s.deps.Client.Register(c.UserContext(), *in)
	if err != nil {
		var apiErr *client.APIError
		if !errors.As(err, &apiErr) {
			return s.fail(c, err)
		}

		return s.authPage(c.Status(apiErr.Status), templateSignup, "Sign up", fiber.Map{
			"Error": apiErr.Message,
			"Name":  in.Name,
			"Email": in.Email,
		})
	}

	return s.start(c, sess)
}

// Logout ends the session here and the token on the backend.
func (s *Service) Logout(c *fiber.Ctx) error {
	if d, _ := s.deps.Sessions.Load(c); d != nil {
		if err := s.deps.Client.Logout(c.UserContext(), d.Token); err != nil && !client.IsUnauthenticated(err) {
			log.Warn().Err(err).Msg("backend logout failed")
		}
	}

	if err := s.deps.Sessions.Destroy(c); err != nil {
		log.Warn().Err(err).Msg("failed to destroy session")
	}

	return c.Redirect(LoginPath)
}

// OIDCLogin hands the visitor to the backend, which redirects to the provider.
func (s *Service) OIDCLogin(c *fiber.Ctx) error {
	if !s.deps.Cfg.Auth.OIDC.Enabled {
		return c.Redirect(LoginPath)
	}

	return c.Redirect(s.deps.Client.OIDCLoginURL())
}

// OIDCCallback completes a provider login through the backend.
func (s *Service) OIDCCallback(c *fiber.Ctx) error {
	query := make(map[string][]string)

	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		query[string(k)] = append(query[string(k)], string(v))
	})

	sess, err := s.deps.Client.OIDCCallback(c.UserContext(), query)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Status < fiber.StatusInternalServerError {
			return s.authPage(c.Status(apiErr.Status), templateLogin, "Login", fiber.Map{"Error": apiErr.Message})
		}

		return s.fail(c, err)
	}

	return s.start(c, sess)
}

type profileForm struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (s *Service) profileNav(c *fiber.Ctx) *navigation.Context {
	return navigation.NewContext("Profile", navigation.SectionAccount, ProfilePath).
		AddBreadcrumb("Blogs", BlogsPath, false).
		AddBreadcrumb("Profile", c.Path(), true)
}

// ProfileForm shows the caller's account.
func (s *Service) ProfileForm(c *fiber.Ctx) error {
	return s.render(c, templateProfile, s.profileNav(c), fiber.Map{"Saved": c.Query("saved") != ""})
}

// UpdateProfile changes name, email or password. Empty fields stay unchanged.
func (s *Service) UpdateProfile(c *fiber.Ctx) error {
	d := current(c)

	in := new(profileForm)
	if err := c.BodyParser(in); err != nil {
		return s.render(c.Status(fiber.StatusBadRequest), templateProfile, s.profileNav(c), fiber.Map{"Error": "invalid form"})
	}

	var req api.ProfileRequest

	if v := strings.TrimSpace(in.Name); v != "" && v != d.User.Name {
		req.Name = &v
	}

	if v := strings.TrimSpace(in.Email); v != "" && v != d.User.Email {
		req.Email = &v
	}

	if in.Password != "" {
		req.Password = &in.Password
	}

	user, err := s.deps.Client.UpdateProfile(c.UserContext(), d.Token, req)
	if err != nil {
		if client.StatusOf(err) == fiber.StatusBadRequest {
			return s.render(c.Status(fiber.StatusBadRequest), templateProfile, s.profileNav(c),
				fiber.Map{"Error": errorMessage(err)})
		}

		return s.fail(c, err)
	}

	d.User = user
	if err = s.deps.Sessions.Save(c, *d); err != nil {
		return err //nolint:wrapcheck
	}

	return c.Redirect(ProfilePath + "?saved=1")
}
