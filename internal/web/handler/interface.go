package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/auth"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/config"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/controller/blog"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/controller/setting"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/upload"
)

// Deps bundles what the REST handlers need. LDAP and OIDC are nil when disabled.
type Deps struct {
	Cfg      *config.Config
	DB       *gorm.DB
	Tokens   *auth.TokenService
	Denylist *auth.Denylist
	Users    *auth.LocalProvider
	LDAP     *auth.LDAPProvider
	OIDC     *auth.OIDCProvider
	OTP      *auth.OTPVerifier
	Settings *setting.Store
	Blogs    *blog.Store
	Uploads  *upload.Store
	Validate *validator.Validate
}

// Service is the interface for a REST handler service.
type Service interface {
	Init(router fiber.Router, deps *Deps) error
}
