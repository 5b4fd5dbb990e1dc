// ABOUTME: Application shell middleware: puts the single fetch cache and a per-request router into the context.
// ABOUTME: RequestRouter reports the request URI as the current path and navigates via redirects.
package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/2389-research/nutria/query"
	"github.com/2389-research/nutria/ui"
)

const (
	// PartialHeader marks requests issued by the client-side navigation
	// script; they receive the page body only.
	PartialHeader = "X-Nutria-Partial"
	// LocationHeader tells the navigation script where to go next.
	LocationHeader = "X-Nutria-Location"
)

// ErrAlreadyNavigated is returned when a request router is asked to navigate
// twice within one request.
var ErrAlreadyNavigated = errors.New("response already redirected")

// Shell owns the fetch cache shared by every page for the lifetime of the
// server and exposes it, with a routing context, to page handlers.
type Shell struct {
	queries *query.Client
}

// NewShell creates a Shell around queries. A nil client gets a default one.
func NewShell(queries *query.Client) *Shell {
	if queries == nil {
		queries = query.NewClient()
	}
	return &Shell{queries: queries}
}

// Queries returns the shell's fetch cache.
func (s *Shell) Queries() *query.Client {
	return s.queries
}

// Middleware injects the fetch cache and a RequestRouter into the request
// context and delegates rendering to next.
func (s *Shell) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := query.WithClient(r.Context(), s.queries)
		ctx = ui.WithRouter(ctx, NewRequestRouter(w, r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestRouter is the ui.Router for one HTTP request.
type RequestRouter struct {
	w         http.ResponseWriter
	r         *http.Request
	navigated bool
}

// NewRequestRouter creates a router bound to a single request/response pair.
func NewRequestRouter(w http.ResponseWriter, r *http.Request) *RequestRouter {
	return &RequestRouter{w: w, r: r}
}

// Path returns the request path including its query string.
func (rr *RequestRouter) Path() string {
	return rr.r.URL.RequestURI()
}

// Navigate answers the request with a transition to path: a LocationHeader
// and 204 for partial requests, a 303 redirect otherwise.
func (rr *RequestRouter) Navigate(ctx context.Context, path string) error {
	if rr.navigated {
		return ErrAlreadyNavigated
	}
	rr.navigated = true
	rr.w.Header().Add("Vary", PartialHeader)

	if isPartial(rr.r) {
		rr.w.Header().Set(LocationHeader, path)
		rr.w.WriteHeader(http.StatusNoContent)
		return nil
	}
	http.Redirect(rr.w, rr.r, path, http.StatusSeeOther)
	return nil
}

func isPartial(r *http.Request) bool {
	return r.Header.Get(PartialHeader) == "1"
}
