package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authn "github.com/GoBlogAdmin/GoBlogAdmin/internal/auth"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler"
)

const secret = "middleware-test-signing-key-0123456789"

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func setup(t *testing.T) (*fiber.App, *authn.TokenService, *authn.Denylist, *clock) {
	t.Helper()

	c := &clock{t: time.Now()}

	tokens, err := authn.NewTokenService([]byte(secret), time.Hour, authn.WithClock(c.now))
	require.NoError(t, err)

	denylist := authn.NewDenylist(memory.New())

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	app.Get("/edit", RequireToken(tokens, denylist), RequirePermission(rbac.PermEditBlogs), func(c *fiber.Ctx) error {
		id, ok := handler.Identity(c)
		require.True(t, ok)

		return c.SendString(string(id.Role))
	})
	app.Get("/bare", RequirePermission(rbac.PermViewBlogs), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	return app, tokens, denylist, c
}

func get(t *testing.T, app *fiber.App, target, authorization string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func TestRequireToken(t *testing.T) {
	app, tokens, denylist, c := setup(t)

	admin, err := tokens.Issue(1, rbac.RoleAdmin)
	require.NoError(t, err)

	lead, err := tokens.Issue(2, rbac.RoleLead)
	require.NoError(t, err)

	revoked, err := tokens.Issue(3, rbac.RoleSuperAdmin)
	require.NoError(t, err)

	id, err := tokens.Verify(revoked.Raw)
	require.NoError(t, err)
	require.NoError(t, denylist.Revoke(id))

	tests := []struct {
		name          string
		authorization string
		status        int
	}{
		{name: "allowed", authorization: "Bearer " + admin.Raw, status: fiber.StatusOK},
		{name: "lowercase scheme", authorization: "bearer " + admin.Raw, status: fiber.StatusOK},
		{name: "missing", status: fiber.StatusUnauthorized},
		{name: "basic scheme", authorization: "Basic Zm9vOmJhcg==", status: fiber.StatusUnauthorized},
		{name: "garbage", authorization: "Bearer abc.def", status: fiber.StatusUnauthorized},
		{name: "tampered", authorization: "Bearer " + admin.Raw + "x", status: fiber.StatusUnauthorized},
		{name: "revoked", authorization: "Bearer " + revoked.Raw, status: fiber.StatusUnauthorized},
		{name: "denied", authorization: "Bearer " + lead.Raw, status: fiber.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := get(t, app, "/edit", tc.authorization)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}

	c.t = c.t.Add(2 * time.Hour)

	resp := get(t, app, "/edit", "Bearer "+admin.Raw)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequirePermissionWithoutIdentity(t *testing.T) {
	app, _, _, _ := setup(t)

	resp := get(t, app, "/bare", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequirePermissionUnknown(t *testing.T) {
	assert.Panics(t, func() { RequirePermission(rbac.Permission("PUBLISH_BLOGS")) })
}
