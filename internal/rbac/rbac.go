// Package rbac holds the closed role and permission taxonomy and the
// permission evaluator shared by the REST backend and the browser client.
//
// The table mapping permissions to roles is fixed at build time. It is never
// persisted and never exposed mutably: callers read it through Evaluate or
// through the copy returned by Table.
package rbac

import (
	"sort"
)

// Role is a named privilege tier assigned to a user.
type Role string

const (
	// RoleLead may only read blog posts.
	RoleLead Role = "lead"
	// RoleAdmin may read and edit blog posts.
	RoleAdmin Role = "admin"
	// RoleSuperAdmin may do everything, including managing users.
	RoleSuperAdmin Role = "super_admin"
)

// Permission is a named capability checked before an action.
type Permission string

const (
	// PermViewBlogs allows listing and reading blog posts.
	PermViewBlogs Permission = "VIEW_BLOGS"
	// PermEditBlogs allows creating and updating blog posts.
	PermEditBlogs Permission = "EDIT_BLOGS"
	// PermDeleteBlogs allows deleting blog posts.
	PermDeleteBlogs Permission = "DELETE_BLOGS"
	// PermManageUsers allows listing users, changing roles and deleting users.
	PermManageUsers Permission = "MANAGE_USERS"
)

// table is the single source of truth. It must be total over the permission set.
var table = map[Permission][]Role{ //nolint:gochecknoglobals
	PermViewBlogs:   {RoleLead, RoleAdmin, RoleSuperAdmin},
	PermEditBlogs:   {RoleAdmin, RoleSuperAdmin},
	PermDeleteBlogs: {RoleSuperAdmin},
	PermManageUsers: {RoleSuperAdmin},
}

var (
	roles = []Role{RoleLead, RoleAdmin, RoleSuperAdmin} //nolint:gochecknoglobals

	permissions = []Permission{ //nolint:gochecknoglobals
		PermViewBlogs,
		PermEditBlogs,
		PermDeleteBlogs,
		PermManageUsers,
	}
)

// Evaluate reports whether role holds permission.
//
// An unknown permission yields ErrUnknownPermission, even for an absent role,
// so a misspelt permission fails loudly instead of silently denying. An absent
// role (the empty string) is never authorized.
func Evaluate(role Role, permission Permission) (bool, error) {
	allowed, ok := table[permission]
	if !ok {
		return false, &UnknownPermissionError{Permission: string(permission)}
	}

	if role == "" {
		return false, nil
	}

	for _, r := range allowed {
		if r == role {
			return true, nil
		}
	}

	return false, nil
}

// MustEvaluate is like Evaluate but panics on an unknown permission.
// Use it only with the permission constants of this package.
func MustEvaluate(role Role, permission Permission) bool {
	ok, err := Evaluate(role, permission)
	if err != nil {
		panic(err)
	}

	return ok
}

// ParseRole converts external input into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", &InvalidRoleError{Role: s}
	}

	return r, nil
}

// ParsePermission converts external input into a Permission.
func ParsePermission(s string) (Permission, error) {
	p := Permission(s)
	if !p.Known() {
		return "", &UnknownPermissionError{Permission: s}
	}

	return p, nil
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	for _, known := range roles {
		if r == known {
			return true
		}
	}

	return false
}

// Known reports whether p is one of the enumerated permissions.
func (p Permission) Known() bool {
	_, ok := table[p]
	return ok
}

func (r Role) String() string { return string(r) }

func (p Permission) String() string { return string(p) }

// Roles returns all roles ordered from least to most privileged.
func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)

	return out
}

// Permissions returns all permissions in declaration order.
func Permissions() []Permission {
	out := make([]Permission, len(permissions))
	copy(out, permissions)

	return out
}

// PermissionsOf returns the permissions held by role, in declaration order.
func PermissionsOf(role Role) []Permission {
	out := make([]Permission, 0, len(permissions))

	for _, p := range permissions {
		if MustEvaluate(role, p) {
			out = append(out, p)
		}
	}

	return out
}

// Table returns a copy of the permission table keyed by permission name.
// Role lists are sorted so the result is stable across calls.
func Table() map[string][]string {
	out := make(map[string][]string, len(table))

	for p, rs := range table {
		names := make([]string, 0, len(rs))
		for _, r := range rs {
			names = append(names, string(r))
		}

		sort.Strings(names)
		out[string(p)] = names
	}

	return out
}
