package login

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/api"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/auth"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/models"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler"
)

const (
	// Path is the login endpoint, relative to the API prefix.
	Path = handler.RootPath + "login"

	// RegisterPath is the registration endpoint, relative to the API prefix.
	RegisterPath = handler.RootPath + "register"

	sourceLocal = "local"
	sourceLDAP  = "ldap"
)

// Service is the login handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Init registers the routes.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	router.Post(RegisterPath, s.Register)
	router.Post(Path, s.Login)

	return nil
}

// Register creates a local account and returns a token for it.
func (s *Service) Register(c *fiber.Ctx) error {
	if !s.deps.Cfg.Auth.LocalDB.Enabled {
		return handler.SendError(c, fmt.Errorf("%w: %w", auth.ErrForbidden, ErrLocalAuthDisabled))
	}

	in := new(api.RegisterRequest)
	if err := handler.Bind(c, s.deps, in); err != nil {
		return handler.SendError(c, err)
	}

	role := s.deps.Settings.DefaultRole(c.UserContext())

	if in.Role != "" && s.deps.Cfg.Auth.AllowRoleOnRegister {
		parsed, err := rbac.ParseRole(in.Role)
		if err != nil {
			return handler.SendError(c, err)
		}

		role = parsed
	}

	user, err := s.deps.Users.Register(c.UserContext(), in.Name, in.Email, in.Password, role)
	if err != nil {
		return handler.SendError(c, err)
	}

	log.Info().Uint64("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")

	return s.issue(c, fiber.StatusCreated, user)
}

// Login checks credentials, the optional second factor, and returns a token.
func (s *Service) Login(c *fiber.Ctx) error {
	in := new(api.LoginRequest)
	if err := handler.Bind(c, s.deps, in); err != nil {
		return handler.SendError(c, err)
	}

	user, err := s.authenticate(c, in)
	if err != nil {
		log.Info().Err(err).Str("source", in.Source).Msg("login failed")
		return handler.SendError(c, err)
	}

	if s.deps.Cfg.Auth.OTP.Enabled && user.OTPEnabled() {
		if err = s.deps.OTP.Validate(user.OTPSecret, in.OTP); err != nil {
			return handler.SendError(c, err)
		}
	}

	return s.issue(c, fiber.StatusOK, user)
}

func (s *Service) authenticate(c *fiber.Ctx, in *api.LoginRequest) (*models.User, error) {
	switch in.Source {
	case "", sourceLocal:
		if !s.deps.Cfg.Auth.LocalDB.Enabled {
			return nil, handler.Validationf("%v", ErrLocalAuthDisabled)
		}

		return s.deps.Users.Authenticate(c.UserContext(), in.Email, in.Password) //nolint:wrapcheck
	case sourceLDAP:
		if s.deps.LDAP == nil {
			return nil, handler.Validationf("%v", ErrLDAPAuthDisabled)
		}

		return s.deps.LDAP.Authenticate(c.UserContext(), in.Email, in.Password) //nolint:wrapcheck
	default:
		return nil, handler.Validationf("unknown login source %q", in.Source)
	}
}

func (s *Service) issue(c *fiber.Ctx, status int, user *models.User) error {
	tok, err := s.deps.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.Status(status).JSON(api.Session{
		Token:     tok.Raw,
		ExpiresAt: tok.ExpiresAt,
		User:      api.NewUser(user),
	})
}
