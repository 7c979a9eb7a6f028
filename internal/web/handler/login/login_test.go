package login

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/api"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler/handlertest"
)

func register(name, role string) api.RegisterRequest {
	return api.RegisterRequest{Name: name, Email: name + "@example.com", Password: "secret123", Role: role}
}

func TestRegister(t *testing.T) {
	deps := handlertest.NewDeps(t, nil)
	app := handlertest.NewApp(t, deps, &Service{})

	var session api.Session

	resp := handlertest.Do(t, app, handlertest.Request(http.MethodPost, "/api/register", "", register("ann", "super_admin")), &session)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "ann", session.User.Name)
	// the requested role is ignored unless registration may pick one
	assert.Equal(t, string(rbac.RoleLead), session.User.Role)

	id, err := deps.Tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, id.UserID)
	assert.Equal(t, rbac.RoleLead, id.Role)

	var body api.ErrorBody

	resp = handlertest.Do(t, app, handlertest.Request(http.MethodPost, "/api/register", "", register("ann", "")), &body)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, handler.CategoryValidation, body.Error)
}

func TestRegisterWithRole(t *testing.T) {
	cfg := handlertest.Config()
	cfg.Auth.AllowRoleOnRegister = true

	deps := handlertest.NewDeps(t, cfg)
	app := handlertest.NewApp(t, deps, &Service{})

	var session api.Session

	resp := handlertest.Do(t, app, handlertest.Request(http.MethodPost, "/api/register", "", register("bo", "admin")), &session)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, string(rbac.RoleAdmin), session.User.Role)

	var body api.ErrorBody

	resp = handlertest.Do(t, app, handlertest.Request(http.MethodPost, "/api/register", "", register("cy", "owner")), &body)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, handler.CategoryInvalidRole, body.Error)
}

func TestRegisterDefaultRoleSetting(t *testing.T) {
	deps := handlertest.NewDeps(t, nil)
	app := handlertest.NewApp(t, deps, &Service{})

	require.NoError(t, deps.Settings.SetDefaultRole(context.Background(), "admin"))

	var session api.Session

	resp := handlertest.Do(t, app, handlertest.Request(http.MethodPost, "/api/register", "", register("di", "")), &session)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, string(rbac.RoleAdmin), session.User.Role)
}

func TestRegisterValidation(t *testing.T) {
	deps := handlertest.NewDeps(t, nil)
	app := handlertest.NewApp(t, deps, &Service{})

	tests := []struct {
		name string
		body api.RegisterRequest
	}{
		{name: "short password", body: api.RegisterRequest{Name: "x", Email: "x@example.com", Password: "12345"}},
		{name: "bad email", body: api.RegisterRequest{Name: "x", Email: "not-an-email", Password: "123456"}},
		{name: "missing name", body: api.RegisterRequest{Email: "x@example.com", Password: "123456"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var body api.ErrorBody

			resp := handlertest.Do(t, app, handlertest.Request(http.MethodPost, "/api/register", "", tc.body), &body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, handler.CategoryValidation, body.Error)
		})
	}
}

func TestRegisterDisabled(t *testing.T) {
	cfg := handlertest.Config()
	cfg.Auth.LocalDB.Enabled = false

	deps := handlertest.NewDeps(t, cfg)
	app := handlertest.NewApp(t, deps, &Service{})

	resp := handlertest.Do(t, app, handlertest.Request(http.MethodPost, "/api/register", "", register("ed", "")), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	deps := handlertest.NewDeps(t, nil)
	app := handlertest.NewApp(t, deps, &Service{})
	u := handlertest.SeedUser(t, deps, "fay", rbac.RoleAdmin)

	var session api.Session

	resp := handlertest.Do(t, app, handlertest.Request(http.MethodPost, "/api/login", "",
		api.LoginRequest{Email: "FAY@example.com ", Password: handlertest.Password}), &session)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, u.ID, session.User.ID)
	assert.Equal(t, string(rbac.RoleAdmin), session.User.Role)

	tests := []struct {
		name string
		body api.LoginRequest
	}{
		{name: "wrong password", body: api.LoginRequest{Email: u.Email, Password: "nope"}},
		{name: "unknown email", body: api.LoginRequest{Email: "ghost@example.com", Password: handlertest.Password}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var body api.ErrorBody

			resp := handlertest.Do(t, app, handlertest.Request(http.MethodPost, "/api/login", "", tc.body), &body)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, handler.CategoryUnauthenticated, body.Error)
			assert.Equal(t, "invalid credentials", body.Message)
		})
	}

	resp = handlertest.Do(t, app, handlertest.Request(http.MethodPost, "/api/login", "",
		api.LoginRequest{Email: u.Email, Password: handlertest.Password, Source: "ldap"}), nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLoginWithOTP(t *testing.T) {
	cfg := handlertest.Config()
	cfg.Auth.OTP.Enabled = true

	deps := handlertest.NewDeps(t, cfg)
	app := handlertest.NewApp(t, deps, &Service{})
	u := handlertest.SeedUser(t, deps, "gil", rbac.RoleLead)

	enrollment, err := deps.OTP.Generate(u.Email)
	require.NoError(t, err)
	require.NoError(t, deps.Users.SetOTPSecret(context.Background(), u.ID, enrollment.Secret))

	var body api.ErrorBody

	resp := handlertest.Do(t, app, handlertest.Request(http.MethodPost, "/api/login", "",
		api.LoginRequest{Email: u.Email, Password: handlertest.Password}), &body)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, handler.CategoryOTPRequired, body.Error)

	resp = handlertest.Do(t, app, handlertest.Request(http.MethodPost, "/api/login", "",
		api.LoginRequest{Email: u.Email, Password: handlertest.Password, OTP: "000000"}), &body)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	code, err := deps.OTP.Code(enrollment.Secret)
	require.NoError(t, err)

	var session api.Session

	resp = handlertest.Do(t, app, handlertest.Request(http.MethodPost, "/api/login", "",
		api.LoginRequest{Email: u.Email, Password: handlertest.Password, OTP: code}), &session)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, session.User.OTPEnabled)
}
