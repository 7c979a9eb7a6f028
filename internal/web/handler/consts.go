package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path the route group.
	RootPath = "/"

	// APIPrefix is the mount point of the REST backend.
	APIPrefix = "/api"

	// LocalsIdentity is the fiber.Locals key holding the verified auth.Identity.
	LocalsIdentity = "identity"

	// ErrNilDepsFatalLogMsg is used if app or deps pointer is nil.
	ErrNilDepsFatalLogMsg = "app or deps is nil"
)
