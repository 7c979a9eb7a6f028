package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/dbtest"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/models"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
)

func strPtr(s string) *string { return &s }

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(dbtest.New(t))

	u, err := p.Register(ctx, " Alice ", "Alice@Example.com", "s3cret", rbac.RoleLead)
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "s3cret", u.Password)
	assert.Equal(t, models.AuthSourceLocal, u.AuthSource)

	_, err = p.Register(ctx, "Other", "ALICE@example.com", "x", rbac.RoleLead)
	require.ErrorIs(t, err, ErrEmailExists)

	_, err = p.Register(ctx, "Bad", "bad@example.com", "x", rbac.Role("owner"))
	require.ErrorIs(t, err, rbac.ErrInvalidRole)

	got, err := p.Authenticate(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = p.Authenticate(ctx, "alice@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.Authenticate(ctx, "nobody@example.com", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetAndListUsers(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(dbtest.New(t))

	a, err := p.Register(ctx, "A", "a@example.com", "pw", rbac.RoleLead)
	require.NoError(t, err)

	_, err = p.Register(ctx, "B", "b@example.com", "pw", rbac.RoleAdmin)
	require.NoError(t, err)

	got, err := p.GetUserByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)

	got, err = p.GetUserByEmail(ctx, "B@example.com")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, got.Role)

	_, err = p.GetUserByID(ctx, 999)
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = p.GetUserByEmail(ctx, "none@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)

	users, err := p.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, a.ID, users[0].ID)

	count, err := p.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestUpdateRole(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(dbtest.New(t))

	u, err := p.Register(ctx, "A", "a@example.com", "pw", rbac.RoleLead)
	require.NoError(t, err)

	updated, err := p.UpdateRole(ctx, u.ID, rbac.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, updated.Role)

	_, err = p.UpdateRole(ctx, u.ID, rbac.Role("owner"))
	require.ErrorIs(t, err, rbac.ErrInvalidRole)

	_, err = p.UpdateRole(ctx, 999, rbac.RoleAdmin)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(dbtest.New(t))

	u, err := p.Register(ctx, "A", "a@example.com", "pw", rbac.RoleLead)
	require.NoError(t, err)

	_, err = p.Register(ctx, "B", "b@example.com", "pw", rbac.RoleLead)
	require.NoError(t, err)

	updated, err := p.UpdateProfile(ctx, u.ID, ProfileChanges{Name: strPtr("Anna"), Password: strPtr("new-pw")})
	require.NoError(t, err)
	assert.Equal(t, "Anna", updated.Name)
	assert.Equal(t, rbac.RoleLead, updated.Role)

	_, err = p.Authenticate(ctx, "a@example.com", "new-pw")
	require.NoError(t, err)

	_, err = p.UpdateProfile(ctx, u.ID, ProfileChanges{Email: strPtr("B@example.com")})
	require.ErrorIs(t, err, ErrEmailExists)

	updated, err = p.UpdateProfile(ctx, u.ID, ProfileChanges{Email: strPtr("anna@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", updated.Email)

	_, err = p.UpdateProfile(ctx, 999, ProfileChanges{Name: strPtr("x")})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUserAndOTPSecret(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(dbtest.New(t))

	u, err := p.Register(ctx, "A", "a@example.com", "pw", rbac.RoleLead)
	require.NoError(t, err)

	require.NoError(t, p.SetOTPSecret(ctx, u.ID, "JBSWY3DPEHPK3PXP"))

	got, err := p.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.OTPEnabled())

	require.NoError(t, p.DeleteUser(ctx, u.ID))
	require.ErrorIs(t, p.DeleteUser(ctx, u.ID), ErrUserNotFound)
	require.ErrorIs(t, p.SetOTPSecret(ctx, u.ID, ""), ErrUserNotFound)
}

func TestUpsertExternal(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(dbtest.New(t))

	_, err := p.FindExternal(ctx, models.AuthSourceLDAP, "uid=ann,dc=example")
	require.ErrorIs(t, err, ErrUserNotFound)

	u, err := p.UpsertExternal(ctx, models.AuthSourceLDAP, "uid=ann,dc=example", "Ann@example.com", "Ann", rbac.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, u.Role)
	assert.Equal(t, "ann@example.com", u.Email)

	_, err = p.UpdateRole(ctx, u.ID, rbac.RoleLead)
	require.NoError(t, err)

	again, err := p.UpsertExternal(ctx, models.AuthSourceLDAP, "uid=ann,dc=example", "ann@example.com", "Ann B", rbac.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, "Ann B", again.Name)
	assert.Equal(t, rbac.RoleLead, again.Role)

	found, err := p.FindExternal(ctx, models.AuthSourceLDAP, "uid=ann,dc=example")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	// external accounts have no local password
	_, err = p.Authenticate(ctx, "ann@example.com", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	invalid, err := p.UpsertExternal(ctx, models.AuthSourceOIDC, "sub-1", "o@example.com", "O", rbac.Role("root"))
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleLead, invalid.Role)
}

// A token keeps the role it was issued with until it expires, even after the
// stored role changed. A fresh login picks up the new role.
func TestIssuedRoleOutlivesRoleChange(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(dbtest.New(t))
	s, _ := newTestService(t)

	u, err := p.Register(ctx, "Ed", "ed@example.com", "pw", rbac.RoleAdmin)
	require.NoError(t, err)

	old, err := s.Issue(u.ID, u.Role)
	require.NoError(t, err)

	_, err = p.UpdateRole(ctx, u.ID, rbac.RoleLead)
	require.NoError(t, err)

	id, err := s.Verify(old.Raw)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, id.Role)
	require.NoError(t, Authorize(id, rbac.PermEditBlogs))

	relogged, err := p.Authenticate(ctx, "ed@example.com", "pw")
	require.NoError(t, err)

	fresh, err := s.Issue(relogged.ID, relogged.Role)
	require.NoError(t, err)

	id, err = s.Verify(fresh.Raw)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleLead, id.Role)
	require.ErrorIs(t, Authorize(id, rbac.PermEditBlogs), ErrForbidden)
}
