// Package web assembles the fiber application: the REST backend under /api,
// the browser client pages, static assets, uploaded images and operational
// endpoints.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/client"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/config"
	accesslog "github.com/GoBlogAdmin/GoBlogAdmin/internal/logger/adapter/fiber"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/frontend"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler"
	oidchandler "github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler/auth/oidc"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler/blog"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler/login"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler/logout"
	rbachandler "github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler/rbac"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler/settings"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler/user"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/navigation"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/session"
)

const (
	// CheckAlivePath answers 200 while the service takes traffic.
	CheckAlivePath = "/checkalive"

	// MetricsPath exposes prometheus metrics.
	MetricsPath = "/metrics"

	// UploadsPath serves stored images.
	UploadsPath = "/uploads"

	uploadBodySlack = 1 << 20
)

var (
	// ErrNilConfig is returned when the handler deps carry no configuration.
	ErrNilConfig = errors.New("config cannot be nil")
	// ErrNilSessions is returned without a session store.
	ErrNilSessions = errors.New("session store cannot be nil")
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for a termination signal and stops the server gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

func newTemplateEngine(cfg *config.Config) *html.Engine {
	engine := html.NewFileSystem(embeddedDir(embeddedTemplates, "templates"), ".gohtml")

	// in debug mode, use local filesystem for templates
	if cfg.DevMode {
		engine = html.New("./internal/web/templates", ".gohtml")
		engine.ShouldReload = true

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	for name, fn := range frontend.TemplateFuncs(cfg.DevMode) {
		engine.AddFunc(name, fn)
	}

	return engine
}

func bodyLimit(cfg *config.Config) int {
	if cfg.Webserver.BodyLimit > 0 {
		return cfg.Webserver.BodyLimit
	}

	// fiber's default is below the accepted image size
	return int(cfg.Upload.MaxSize) + uploadBodySlack
}

func isAPI(c *fiber.Ctx) bool {
	p := c.Path()
	return p == handler.APIPrefix || strings.HasPrefix(p, handler.APIPrefix+"/")
}

func (s *Service) errorHandler(c *fiber.Ctx, err error) error {
	if isAPI(c) {
		return handler.ErrorHandler(c, err)
	}

	status, _ := handler.Classify(err)

	msg := http.StatusText(status)
	if status < fiber.StatusInternalServerError {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			msg = fiberErr.Message
		}
	} else {
		log.Error().Err(err).Str("path", c.Path()).Msg("page failed")
	}

	return c.Status(status).Render("error", fiber.Map{
		"Title":      s.cfg.Title,
		"Navigation": navigation.NewContext(http.StatusText(status), "", c.Path()),
		"Error":      msg,
	}, handler.BaseLayout)
}

// New creates the web service. The browser client pages reach the REST
// backend at cfg.Webserver.URL unless opts replace the HTTP client.
func New(deps *handler.Deps, sessions *session.Store, opts ...client.Option) (*Service, error) {
	if deps == nil || deps.Cfg == nil {
		return nil, ErrNilConfig
	}

	if sessions == nil {
		return nil, ErrNilSessions
	}

	cfg := deps.Cfg
	service := &Service{cfg: cfg}
	service.alive.Store(true)

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			BodyLimit:      bodyLimit(cfg),
			Views:          newTemplateEngine(cfg),
			ErrorHandler:   service.errorHandler,
		},
	)
	service.App = app

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	app.Use(accesslog.New(accesslog.Config{
		Config:            cfg.Log,
		CacheControlError: "max-age=0",
		CheckAliveURI:     CheckAlivePath,
		Enrich: func(c *fiber.Ctx, e *zerolog.Event) {
			if id, ok := handler.Identity(c); ok {
				e.Uint64("user_id", id.UserID).Str("role", string(id.Role))
			}
		},
	}))

	app.Get(CheckAlivePath, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       embeddedDir(embeddedStaticFiles, "static"),
				Browse:     cfg.Webserver.BrowseStatic,
			},
		),
	)

	app.Static(UploadsPath, deps.Uploads.Dir(), fiber.Static{MaxAge: 3600})

	api := app.Group(handler.APIPrefix, cors.New(cors.Config{
		AllowOrigins: cfg.Webserver.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	services := []handler.Service{
		&login.Service{},
		&logout.Service{},
		&rbachandler.Service{},
		&blog.Service{},
		&user.Service{},
		&settings.Service{},
		&oidchandler.Service{},
	}

	for _, svc := range services {
		if err := svc.Init(api, deps); err != nil {
			return nil, err
		}
	}

	api.Use(func(c *fiber.Ctx) error {
		return handler.SendError(c, handler.ErrNotFound)
	})

	pages := &frontend.Service{}

	err := pages.Init(app, &frontend.Deps{
		Cfg:      cfg,
		Client:   client.New(cfg.Webserver.URL, opts...),
		Sessions: sessions,
	})
	if err != nil {
		return nil, err
	}

	return service, nil
}
