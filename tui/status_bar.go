// ABOUTME: Implements a single-line status bar for the bottom of the browser.
// ABOUTME: Shows the current path, back stack depth, cached entry count, and the key help.
package tui

import "fmt"

const keyHelp = "←/→ move · enter open · 1-9 recipe · b back · r reload · q quit"

// StatusBarModel displays navigation state in a single line.
type StatusBarModel struct {
	path    string
	depth   int
	cached  int
	loading bool
	width   int
}

// NewStatusBarModel creates a StatusBarModel positioned at path.
func NewStatusBarModel(path string) StatusBarModel {
	return StatusBarModel{path: path}
}

// SetState updates the displayed navigation state.
func (m *StatusBarModel) SetState(path string, depth, cached int, loading bool) {
	m.path = path
	m.depth = depth
	m.cached = cached
	m.loading = loading
}

// SetWidth sets the bar width for rendering.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// View renders the status bar.
func (m StatusBarModel) View() string {
	state := ""
	if m.loading {
		state = " · loading"
	}
	text := fmt.Sprintf("%s · back %d · cached %d%s · %s", m.path, m.depth, m.cached, state, keyHelp)
	style := StatusBarStyle
	if m.width > 0 {
		style = style.Width(m.width)
	}
	return style.Render(text)
}
