// ABOUTME: Routing context shared by every rendered page: the current path plus a navigate operation.
// ABOUTME: Routers are injected into a context.Context at the shell and read back by links and pages.
package ui

import (
	"context"
	"errors"
)

// ErrNoRouter is returned when a navigation is requested from a context that
// carries no router.
var ErrNoRouter = errors.New("no router in context")

// ErrUnknownRoute is returned by routers that refuse to navigate to a path
// they cannot resolve.
var ErrUnknownRoute = errors.New("unknown route")

// Router is the ambient routing collaborator. Path reports the currently
// displayed path; Navigate requests a transition to another path.
type Router interface {
	Path() string
	Navigate(ctx context.Context, path string) error
}

type routerKey struct{}

// WithRouter returns a copy of ctx carrying r.
func WithRouter(ctx context.Context, r Router) context.Context {
	return context.WithValue(ctx, routerKey{}, r)
}

// RouterFrom returns the router carried by ctx, if any.
func RouterFrom(ctx context.Context) (Router, bool) {
	r, ok := ctx.Value(routerKey{}).(Router)
	return r, ok && r != nil
}

// CurrentPath returns the path reported by the router in ctx. ok is false
// when ctx carries no router.
func CurrentPath(ctx context.Context) (path string, ok bool) {
	r, ok := RouterFrom(ctx)
	if !ok {
		return "", false
	}
	return r.Path(), true
}
