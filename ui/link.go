// ABOUTME: Navigation link component that highlights itself when its target is the current path.
// ABOUTME: Renders via gomponents and routes activations through the router carried in the context.
package ui

import (
	"context"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// Class sets applied to a Link. Exactly one of ActiveClass and InactiveClass
// is used, always followed by BaseClass.
const (
	ActiveClass   = "border-indigo-500 text-gray-900"
	InactiveClass = "border-transparent text-gray-500 hover:border-gray-300 hover:text-gray-700"
	BaseClass     = "inline-flex items-center px-1 pt-1 border-b-2 text-sm font-medium"
)

// NavLinkAttr marks anchors whose clicks are intercepted by the client-side
// navigation script.
const NavLinkAttr = "data-nav-link"

// Event is an activation event whose default platform behavior can be
// suppressed.
type Event interface {
	PreventDefault()
}

// ClickEvent is a plain Event that records whether its default was prevented.
type ClickEvent struct {
	prevented bool
}

// PreventDefault implements Event.
func (e *ClickEvent) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *ClickEvent) DefaultPrevented() bool { return e.prevented }

// Link is a navigation link. Href is used verbatim: it is neither validated
// nor normalized, so an empty or malformed target simply never matches a
// real path.
type Link struct {
	Href     string
	Children []g.Node
}

// NewLink returns a Link to href with a text label.
func NewLink(href, label string) Link {
	return Link{Href: href, Children: []g.Node{g.Text(label)}}
}

// Active reports whether the router in ctx currently displays exactly Href.
// Without a router the link is never active.
func (l Link) Active(ctx context.Context) bool {
	current, ok := CurrentPath(ctx)
	return ok && current == l.Href
}

// ClassName returns the class attribute for the given activation state.
func (l Link) ClassName(active bool) string {
	if active {
		return ClassNames(ActiveClass, BaseClass)
	}
	return ClassNames(InactiveClass, BaseClass)
}

// Render builds the anchor element. aria-current="page" is emitted only when
// the link is active.
func (l Link) Render(ctx context.Context) g.Node {
	active := l.Active(ctx)
	return html.A(
		html.Href(l.Href),
		html.Class(l.ClassName(active)),
		g.Attr(NavLinkAttr),
		g.If(active, html.Aria("current", "page")),
		g.Group(l.Children),
	)
}

// Click handles an activation: it suppresses the default navigation and asks
// the router in ctx to navigate to Href, exactly once.
func (l Link) Click(ctx context.Context, ev Event) error {
	if ev != nil {
		ev.PreventDefault()
	}
	r, ok := RouterFrom(ctx)
	if !ok {
		return ErrNoRouter
	}
	return r.Navigate(ctx, l.Href)
}

// NavBar renders links inside a nav element.
func NavBar(ctx context.Context, links ...Link) g.Node {
	items := make([]g.Node, 0, len(links))
	for _, l := range links {
		items = append(items, l.Render(ctx))
	}
	return html.Nav(
		html.Class("flex space-x-8"),
		g.Group(items),
	)
}
