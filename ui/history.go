// ABOUTME: In-memory Router with a back stack, an optional route resolver, and change listeners.
// ABOUTME: Drives navigation for hosts without a browser history, such as the terminal browser.
package ui

import (
	"context"
	"fmt"
	"sync"
)

// HistoryRouter keeps the current path and a back stack in memory.
type HistoryRouter struct {
	mu        sync.Mutex
	current   string
	back      []string
	resolve   func(path string) bool
	listeners []func(from, to string)
}

// HistoryOption configures a HistoryRouter.
type HistoryOption func(*HistoryRouter)

// WithResolver restricts navigation to paths for which known returns true.
// Other paths fail with ErrUnknownRoute and leave the router unchanged.
func WithResolver(known func(path string) bool) HistoryOption {
	return func(h *HistoryRouter) { h.resolve = known }
}

// NewHistoryRouter creates a router positioned at start.
func NewHistoryRouter(start string, opts ...HistoryOption) *HistoryRouter {
	h := &HistoryRouter{current: start}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Path implements Router.
func (h *HistoryRouter) Path() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Navigate implements Router. Navigating to the current path is a no-op that
// still succeeds.
func (h *HistoryRouter) Navigate(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.resolve != nil && !h.resolve(path) {
		return fmt.Errorf("navigate to %q: %w", path, ErrUnknownRoute)
	}

	h.mu.Lock()
	from := h.current
	if from == path {
		h.mu.Unlock()
		return nil
	}
	h.back = append(h.back, from)
	h.current = path
	listeners := append([]func(from, to string){}, h.listeners...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(from, path)
	}
	return nil
}

// Back pops the back stack. It returns false when there is nothing to go back to.
func (h *HistoryRouter) Back() bool {
	h.mu.Lock()
	if len(h.back) == 0 {
		h.mu.Unlock()
		return false
	}
	from := h.current
	h.current = h.back[len(h.back)-1]
	h.back = h.back[:len(h.back)-1]
	to := h.current
	listeners := append([]func(from, to string){}, h.listeners...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(from, to)
	}
	return true
}

// Depth returns the number of entries on the back stack.
func (h *HistoryRouter) Depth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.back)
}

// OnChange registers fn to be called after every successful path change.
func (h *HistoryRouter) OnChange(fn func(from, to string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}
