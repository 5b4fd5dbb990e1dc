// ABOUTME: Carries the shared fetch cache on a context so request handlers and TUI commands reach the same client.
// ABOUTME: A context without a client yields nil, which query.Get treats as pass-through.
package query

import "context"

type clientKey struct{}

// WithClient returns a copy of ctx carrying c.
func WithClient(ctx context.Context, c *Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

// FromContext returns the Client carried by ctx, or nil.
func FromContext(ctx context.Context) *Client {
	c, _ := ctx.Value(clientKey{}).(*Client)
	return c
}
