// ABOUTME: Bubble Tea message types used in the browser's message loop.
// ABOUTME: Page loads report back through PageLoadedMsg or PageErrMsg, tagged with the path they were for.
package tui

// PageLoadedMsg carries the rendered text of a page.
type PageLoadedMsg struct {
	Path  string
	Title string
	Body  string
	// Links lists the paths reachable from the page by number, in display order.
	Links []string
}

// PageErrMsg reports a failed page load.
type PageErrMsg struct {
	Path string
	Err  error
}

// NavigatedMsg signals that the router moved to a new path and the page for it
// should be loaded.
type NavigatedMsg struct {
	From string
	To   string
}
