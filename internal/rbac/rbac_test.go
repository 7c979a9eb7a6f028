package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_Matrix(t *testing.T) {
	testCases := []struct {
		role Role
		perm Permission
		want bool
	}{
		{RoleLead, PermViewBlogs, true},
		{RoleLead, PermEditBlogs, false},
		{RoleLead, PermDeleteBlogs, false},
		{RoleLead, PermManageUsers, false},
		{RoleAdmin, PermViewBlogs, true},
		{RoleAdmin, PermEditBlogs, true},
		{RoleAdmin, PermDeleteBlogs, false},
		{RoleAdmin, PermManageUsers, false},
		{RoleSuperAdmin, PermViewBlogs, true},
		{RoleSuperAdmin, PermEditBlogs, true},
		{RoleSuperAdmin, PermDeleteBlogs, true},
		{RoleSuperAdmin, PermManageUsers, true},
	}

	for _, tc := range testCases {
		t.Run(string(tc.role)+"/"+string(tc.perm), func(t *testing.T) {
			got, err := Evaluate(tc.role, tc.perm)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluate_AbsentRole(t *testing.T) {
	for _, p := range Permissions() {
		got, err := Evaluate("", p)
		require.NoError(t, err)
		assert.False(t, got, "absent role must never hold %s", p)
	}
}

func TestEvaluate_UnknownPermission(t *testing.T) {
	got, err := Evaluate(RoleSuperAdmin, "PUBLISH_BLOGS")
	require.ErrorIs(t, err, ErrUnknownPermission)
	assert.False(t, got)

	var upe *UnknownPermissionError
	require.ErrorAs(t, err, &upe)
	assert.Equal(t, "PUBLISH_BLOGS", upe.Permission)

	// unknown permission wins over absent role
	_, err = Evaluate("", "view_blogs")
	require.ErrorIs(t, err, ErrUnknownPermission)
}

func TestEvaluate_UnknownRoleIsDenied(t *testing.T) {
	got, err := Evaluate("owner", PermViewBlogs)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestEvaluate_Monotonic(t *testing.T) {
	// every permission held by a tier is held by all tiers above it
	ordered := Roles()
	for _, p := range Permissions() {
		for i := range ordered {
			if !MustEvaluate(ordered[i], p) {
				continue
			}

			for _, higher := range ordered[i:] {
				assert.True(t, MustEvaluate(higher, p), "%s holds %s but %s does not", ordered[i], p, higher)
			}
		}
	}
}

func TestEvaluate_NestedPermissions(t *testing.T) {
	// deleting posts or managing users implies editing and reading posts
	implied := map[Permission][]Permission{
		PermDeleteBlogs: {PermEditBlogs, PermViewBlogs},
		PermManageUsers: {PermEditBlogs, PermViewBlogs},
		PermEditBlogs:   {PermViewBlogs},
	}

	holds := func(r Role, p Permission) bool {
		for _, allowed := range table[p] {
			if allowed == r {
				return true
			}
		}

		return false
	}

	for _, r := range Roles() {
		for p, needs := range implied {
			if !holds(r, p) {
				assert.False(t, MustEvaluate(r, p), "%s: evaluator grants %s missing from table", r, p)

				continue
			}

			assert.True(t, MustEvaluate(r, p), "%s: evaluator denies %s granted by table", r, p)

			for _, n := range needs {
				assert.True(t, holds(r, n), "%s holds %s in table but not %s", r, p, n)
				assert.True(t, MustEvaluate(r, n), "%s holds %s but not %s", r, p, n)
			}
		}
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	for range 100 {
		got, err := Evaluate(RoleAdmin, PermEditBlogs)
		require.NoError(t, err)
		require.True(t, got)
	}
}

func TestMustEvaluate_Panics(t *testing.T) {
	assert.Panics(t, func() { MustEvaluate(RoleLead, "NOPE") })
	assert.NotPanics(t, func() { MustEvaluate(RoleLead, PermViewBlogs) })
}

func TestParseRole(t *testing.T) {
	for _, r := range []string{"lead", "admin", "super_admin"} {
		got, err := ParseRole(r)
		require.NoError(t, err)
		assert.Equal(t, Role(r), got)
	}

	for _, r := range []string{"", "owner", "Admin", "superadmin", " lead"} {
		_, err := ParseRole(r)
		require.ErrorIs(t, err, ErrInvalidRole, "input %q", r)
	}
}

func TestParsePermission(t *testing.T) {
	p, err := ParsePermission("DELETE_BLOGS")
	require.NoError(t, err)
	assert.Equal(t, PermDeleteBlogs, p)

	_, err = ParsePermission("delete_blogs")
	require.ErrorIs(t, err, ErrUnknownPermission)
}

func TestPermissionsOf(t *testing.T) {
	assert.Equal(t, []Permission{PermViewBlogs}, PermissionsOf(RoleLead))
	assert.Equal(t, []Permission{PermViewBlogs, PermEditBlogs}, PermissionsOf(RoleAdmin))
	assert.Equal(t, Permissions(), PermissionsOf(RoleSuperAdmin))
	assert.Empty(t, PermissionsOf(""))
}

func TestTable_IsACopy(t *testing.T) {
	first := Table()
	require.Len(t, first, len(Permissions()))
	assert.Equal(t, []string{"super_admin"}, first["MANAGE_USERS"])
	assert.Equal(t, []string{"admin", "lead", "super_admin"}, first["VIEW_BLOGS"])

	first["MANAGE_USERS"] = append(first["MANAGE_USERS"], "lead")
	first["NEW"] = []string{"lead"}

	ok, err := Evaluate(RoleLead, PermManageUsers)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotContains(t, Table(), "NEW")
}

func TestRolesAndPermissions_AreCopies(t *testing.T) {
	rs := Roles()
	rs[0] = "owner"
	assert.Equal(t, RoleLead, Roles()[0])

	ps := Permissions()
	ps[0] = "X"
	assert.Equal(t, PermViewBlogs, Permissions()[0])
}
