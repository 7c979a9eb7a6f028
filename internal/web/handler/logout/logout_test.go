package logout

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/api"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/auth"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler/handlertest"
)

func TestLogoutRevokesToken(t *testing.T) {
	deps := handlertest.NewDeps(t, nil)
	app := handlertest.NewApp(t, deps, &Service{})
	u := handlertest.SeedUser(t, deps, "hal", rbac.RoleLead)
	token := handlertest.Token(t, deps, u)
	other := handlertest.Token(t, deps, u)

	var msg api.Message

	resp := handlertest.Do(t, app, handlertest.Request(http.MethodPost, "/api/logout", token, nil), &msg)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "logged out", msg.Message)

	resp = handlertest.Do(t, app, handlertest.Request(http.MethodPost, "/api/logout", token, nil), nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	id, err := deps.Tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, auth.ReasonRevoked, auth.ReasonOf(deps.Denylist.Check(id)))

	// other sessions of the same user stay valid
	resp = handlertest.Do(t, app, handlertest.Request(http.MethodPost, "/api/logout", other, nil), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLogoutWithoutRevocation(t *testing.T) {
	cfg := handlertest.Config()
	cfg.Token.Revocation = false

	deps := handlertest.NewDeps(t, cfg)
	app := handlertest.NewApp(t, deps, &Service{})
	token := handlertest.Token(t, deps, handlertest.SeedUser(t, deps, "ida", rbac.RoleLead))

	for range 2 {
		resp := handlertest.Do(t, app, handlertest.Request(http.MethodPost, "/api/logout", token, nil), nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp := handlertest.Do(t, app, handlertest.Request(http.MethodPost, "/api/logout", "", nil), nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
