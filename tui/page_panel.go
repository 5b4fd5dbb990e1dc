// ABOUTME: Implements the scrollable page body using the bubbles viewport component.
// ABOUTME: Holds the last loaded page, or the error that replaced it.
package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// PagePanelModel shows the current page's text in a scrollable viewport.
type PagePanelModel struct {
	page     PageLoadedMsg
	err      error
	loading  bool
	viewport viewport.Model
	width    int
	height   int
}

// NewPagePanelModel creates an empty page panel.
func NewPagePanelModel() PagePanelModel {
	return PagePanelModel{viewport: viewport.New(80, 10)}
}

// SetLoading marks the panel as waiting for a page. The previous page's
// links no longer apply and are dropped.
func (m *PagePanelModel) SetLoading() {
	m.loading = true
	m.page.Links = nil
}

// SetPage replaces the panel's content with a loaded page.
func (m *PagePanelModel) SetPage(page PageLoadedMsg) {
	m.page = page
	m.err = nil
	m.loading = false
	m.viewport.SetContent(page.Body)
	m.viewport.GotoTop()
}

// SetError replaces the panel's content with a load error.
func (m *PagePanelModel) SetError(err error) {
	m.page = PageLoadedMsg{}
	m.err = err
	m.loading = false
	m.viewport.SetContent("")
}

// Page returns the page currently shown.
func (m PagePanelModel) Page() PageLoadedMsg {
	return m.page
}

// Err returns the load error currently shown, if any.
func (m PagePanelModel) Err() error {
	return m.err
}

// SetSize sets the panel dimensions including its border.
func (m *PagePanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = max(w-4, 1)
	m.viewport.Height = max(h-3, 1)
}

// Update forwards scroll keys to the viewport.
func (m PagePanelModel) Update(msg tea.Msg) (PagePanelModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the page title and body inside a border.
func (m PagePanelModel) View() string {
	var content string
	switch {
	case m.err != nil:
		content = ErrorStyle.Render("Error: " + m.err.Error())
	case m.loading && m.page.Path == "":
		content = MutedStyle.Render("Loading...")
	default:
		content = TitleStyle.Render(m.page.Title) + "\n" + m.viewport.View()
	}
	style := BodyStyle
	if m.width > 0 {
		style = style.Width(m.width - 2)
	}
	return style.Render(content)
}
