// Package guard decides what the browser client shows. It mirrors the
// backend's authorization for a better experience only; the backend still
// checks every request.
package guard

import (
	"sync"
	"time"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/session"
)

// LoginPath is where unauthenticated and forbidden visitors are sent.
const LoginPath = "/login"

// CanRender reports whether an element guarded by permission is shown to role.
// It uses the same evaluator as the backend, so an unknown permission is an error.
func CanRender(role rbac.Role, permission rbac.Permission) (bool, error) {
	return rbac.Evaluate(role, permission) //nolint:wrapcheck
}

// State is the state of a route guard.
type State int

const (
	// Loading is the initial state, before the session is known.
	Loading State = iota
	// Unauthenticated means there is no valid session.
	Unauthenticated
	// Forbidden means the session's role lacks the route's permissions.
	Forbidden
	// Authorized means the route may be shown.
	Authorized
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case Authorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// RouteGuard protects one page view. It starts in Loading and resolves exactly once.
type RouteGuard struct {
	required []rbac.Permission
	now      func() time.Time

	once  sync.Once
	mu    sync.RWMutex
	state State
	err   error
}

// New returns a guard requiring all of required. No permission means any
// authenticated session is enough.
func New(required ...rbac.Permission) *RouteGuard {
	return &RouteGuard{required: required, now: time.Now}
}

// Resolve decides the state from d. Later calls return the first decision.
func (g *RouteGuard) Resolve(d *session.Data) State {
	g.once.Do(func() {
		state, err := g.decide(d)

		g.mu.Lock()
		g.state, g.err = state, err
		g.mu.Unlock()
	})

	return g.State()
}

func (g *RouteGuard) decide(d *session.Data) (State, error) {
	if !d.Valid(g.now()) {
		return Unauthenticated, nil
	}

	for _, p := range g.required {
		ok, err := CanRender(d.Role(), p)
		if err != nil {
			return Forbidden, err
		}

		if !ok {
			return Forbidden, nil
		}
	}

	return Authorized, nil
}

// State returns the current state.
func (g *RouteGuard) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.state
}

// Err returns the evaluator error of an unknown required permission.
func (g *RouteGuard) Err() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.err
}

// Redirect returns where to send the visitor, or "" when the page is shown.
func (g *RouteGuard) Redirect() string {
	switch g.State() {
	case Unauthenticated, Forbidden:
		return LoginPath
	default:
		return ""
	}
}
