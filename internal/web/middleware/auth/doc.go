// Package auth provides the fiber middleware guarding the REST backend.
//
// RequireToken verifies the bearer token, consults the revocation denylist
// and stores the resulting identity in fiber.Locals. RequirePermission then
// evaluates the permission a route needs against that identity.
//
// Usage:
//
//	api.Get("/blogs", authmw.RequireToken(tokens, denylist),
//	    authmw.RequirePermission(rbac.PermViewBlogs), list)
//
// Rejected requests get a JSON error body: 401 for authentication failures,
// 403 for denials and 500 when a route was checked against an unknown
// permission.
package auth
