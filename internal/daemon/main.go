// Package daemon assembles the services from configuration and runs them.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/auth"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/config"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/controller/blog"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/controller/setting"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/upload"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/session"
)

const oidcDiscoveryTimeout = 15 * time.Second

// ErrNilConfig is returned when New is called without configuration.
var ErrNilConfig = errors.New("config is nil")

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
	storage    fiber.Storage
}

// Start runs the web service until a termination signal arrives.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	err := d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))

	if errClose := d.storage.Close(); errClose != nil {
		log.Warn().Err(errClose).Msg("failed to close storage")
	}

	return err
}

// App returns the fiber application, mainly for tests.
func (d *Daemon) App() *fiber.App { return d.webService.App }

// Deps opens the database and builds the REST dependencies.
// Pending OIDC logins share the key value storage with sessions and revocation.
func Deps(ctx context.Context, cfg *config.Config, storage fiber.Storage) (*handler.Deps, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}

	return newDeps(ctx, cfg, gdb, storage)
}

func newDeps(ctx context.Context, cfg *config.Config, gdb *gorm.DB, storage fiber.Storage) (*handler.Deps, error) {
	opts := []auth.Option{}
	if cfg.Token.Issuer != "" {
		opts = append(opts, auth.WithIssuer(cfg.Token.Issuer))
	}

	tokens, err := auth.NewTokenService([]byte(cfg.Token.Secret), cfg.Token.TTL, opts...)
	if err != nil {
		return nil, err
	}

	uploads, err := upload.New(cfg.Upload.Dir, cfg.Upload.MaxSize)
	if err != nil {
		return nil, err
	}

	deps := &handler.Deps{
		Cfg:      cfg,
		DB:       gdb,
		Tokens:   tokens,
		Users:    auth.NewLocalProvider(gdb),
		OTP:      auth.NewOTPVerifier(cfg.Auth.OTP.Issuer),
		Settings: setting.New(gdb),
		Blogs:    blog.New(gdb),
		Uploads:  uploads,
		Validate: validator.New(),
	}

	if cfg.Token.Revocation {
		deps.Denylist = auth.NewDenylist(storage)
	}

	if cfg.Auth.LDAP.Enabled {
		if deps.LDAP, err = auth.NewLDAPProvider(cfg.Auth.LDAP, deps.Users); err != nil {
			return nil, err
		}
	}

	if cfg.Auth.OIDC.Enabled {
		dctx, cancel := context.WithTimeout(ctx, oidcDiscoveryTimeout)
		defer cancel()

		deps.OIDC, err = auth.NewOIDCProvider(dctx, cfg.Auth.OIDC, storage, deps.Users, deps.Settings)
		if err != nil {
			return nil, err
		}
	}

	return deps, nil
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	storage, err := NewStorage(cfg)
	if err != nil {
		return nil, err
	}

	deps, err := Deps(context.Background(), cfg, storage)
	if err != nil {
		return nil, err
	}

	if err = seed(context.Background(), cfg, deps.Users); err != nil {
		return nil, err
	}

	sessions, err := session.New(session.Config{
		Storage:    storage,
		Expiration: cfg.Webserver.Session.ExpiryTime,
		Secure:     strings.HasPrefix(cfg.Webserver.URL, "https://"),
	})
	if err != nil {
		return nil, err
	}

	svc, err := web.New(deps, sessions)
	if err != nil {
		return nil, err
	}

	return &Daemon{cfg: cfg, webService: svc, storage: storage}, nil
}
