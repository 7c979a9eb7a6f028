// Package handlertest wires the REST handlers onto an in-memory backend for tests.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	"github.com/stretchr/testify/require"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/auth"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/config"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/controller/blog"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/controller/setting"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/dbtest"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/models"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/upload"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler"
)

// Secret is the signing key of test tokens.
const Secret = "handlertest-signing-key-0123456789abcdef"

// Password is the password of every seeded account.
const Password = "secret123"

// Config returns a configuration with local login and revocation enabled.
func Config() *config.Config {
	return &config.Config{
		Title:     "GoBlogAdmin",
		Webserver: config.Webserver{Port: 8080, URL: "http://localhost:8080"},
		Token:     config.Token{Secret: Secret, TTL: time.Hour, Revocation: true},
		Upload:    config.Upload{MaxSize: upload.DefaultMaxSize},
		Auth:      config.Auth{LocalDB: config.LocalDBAuth{Enabled: true}},
		Storage:   config.Storage{Engine: config.StorageMemory},
	}
}

// NewDeps builds handler dependencies on a fresh database and upload directory.
func NewDeps(t *testing.T, cfg *config.Config) *handler.Deps {
	t.Helper()

	if cfg == nil {
		cfg = Config()
	}

	gdb := dbtest.New(t)

	tokens, err := auth.NewTokenService([]byte(cfg.Token.Secret), cfg.Token.TTL)
	require.NoError(t, err)

	var denylist *auth.Denylist
	if cfg.Token.Revocation {
		denylist = auth.NewDenylist(memory.New())
	}

	uploads, err := upload.New(t.TempDir(), cfg.Upload.MaxSize)
	require.NoError(t, err)

	return &handler.Deps{
		Cfg:      cfg,
		DB:       gdb,
		Tokens:   tokens,
		Denylist: denylist,
		Users:    auth.NewLocalProvider(gdb),
		OTP:      auth.NewOTPVerifier(cfg.Auth.OTP.Issuer),
		Settings: setting.New(gdb),
		Blogs:    blog.New(gdb),
		Uploads:  uploads,
		Validate: validator.New(),
	}
}

// NewApp returns a fiber app with services mounted under the API prefix.
func NewApp(t *testing.T, deps *handler.Deps, services ...handler.Service) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	api := app.Group(handler.APIPrefix)

	for _, s := range services {
		require.NoError(t, s.Init(api, deps))
	}

	return app
}

// SeedUser creates an account with role and returns it.
func SeedUser(t *testing.T, deps *handler.Deps, name string, role rbac.Role) *models.User {
	t.Helper()

	u, err := deps.Users.Register(context.Background(), name, name+"@example.com", Password, role)
	require.NoError(t, err)

	return u
}

// Token issues a bearer token for u.
func Token(t *testing.T, deps *handler.Deps, u *models.User) string {
	t.Helper()

	tok, err := deps.Tokens.Issue(u.ID, u.Role)
	require.NoError(t, err)

	return tok.Raw
}

// Request builds a request with an optional JSON body and bearer token.
func Request(method, target, token string, body any) *http.Request {
	var r io.Reader

	if body != nil {
		raw, _ := json.Marshal(body)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	return req
}

// File is a file part of a multipart request.
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// Multipart builds a multipart request with text fields and files.
func Multipart(t *testing.T, method, target, token string, fields map[string]string, files ...File) *http.Request {
	t.Helper()

	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.Field+`"; filename="`+f.Name+`"`)
		h.Set("Content-Type", f.ContentType)

		part, err := w.CreatePart(h)
		require.NoError(t, err)

		_, err = part.Write(f.Data)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())

	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	return req
}

// Do runs req against app and decodes a JSON response into out when out is not nil.
func Do(t *testing.T, app *fiber.App, req *http.Request, out any) *http.Response {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	t.Cleanup(func() { _ = resp.Body.Close() })

	if out != nil {
		raw, errRead := io.ReadAll(resp.Body)
		require.NoError(t, errRead)
		require.NoError(t, json.Unmarshal(raw, out), "body: %s", strings.TrimSpace(string(raw)))
	}

	return resp
}

// PNG is the smallest valid PNG file.
//
//nolint:gochecknoglobals
var PNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

// Transport serves outgoing requests of an http.Client from an in-process app.
type Transport struct {
	App *fiber.App
}

// RoundTrip implements http.RoundTripper.
func (tr Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	return tr.App.Test(req, -1) //nolint:wrapcheck
}
