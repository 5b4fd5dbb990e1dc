// ABOUTME: Top-level Bubble Tea Model for the terminal catalog browser.
// ABOUTME: Owns one fetch cache and a history router, and drives the shared nav links through them.
package tui

import (
	"context"
	"strings"

	"github.com/2389-research/nutria/query"
	"github.com/2389-research/nutria/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Tab is a nav bar entry: a link and the label shown for it.
type Tab struct {
	Label string
	Link  ui.Link
}

// DefaultTabs are the browser's top-level nav entries, matching the web nav bar.
var DefaultTabs = []Tab{
	{Label: "Home", Link: ui.NewLink("/", "Home")},
	{Label: "Recipes", Link: ui.NewLink("/recipes", "Recipes")},
	{Label: "Ingredients", Link: ui.NewLink("/ingredients", "Ingredients")},
	{Label: "Tags", Link: ui.NewLink("/tags", "Tags")},
}

// Model is the browser's Bubble Tea model. Every page it loads shares the
// single query client carried by its context.
type Model struct {
	ctx     context.Context
	router  *ui.HistoryRouter
	queries *query.Client
	catalog Catalog

	tabs      []Tab
	focus     int
	page      PagePanelModel
	statusBar StatusBarModel

	err    error // last navigation error
	width  int
	height int
}

// NewModel creates a browser positioned at "/". A nil queries gets a fresh
// client.
func NewModel(ctx context.Context, c Catalog, queries *query.Client) Model {
	if queries == nil {
		queries = query.NewClient()
	}
	router := ui.NewHistoryRouter("/", ui.WithResolver(KnownPath))
	ctx = query.WithClient(ui.WithRouter(ctx, router), queries)

	return Model{
		ctx:       ctx,
		router:    router,
		queries:   queries,
		catalog:   c,
		tabs:      DefaultTabs,
		page:      NewPagePanelModel(),
		statusBar: NewStatusBarModel(router.Path()),
	}
}

// Path returns the browser's current path.
func (m Model) Path() string {
	return m.router.Path()
}

// Queries returns the browser's fetch cache.
func (m Model) Queries() *query.Client {
	return m.queries
}

// ActiveTab returns the index of the tab whose link matches the current path,
// or -1 when none does.
func (m Model) ActiveTab() int {
	for i, tab := range m.tabs {
		if tab.Link.Active(m.ctx) {
			return i
		}
	}
	return -1
}

// Init implements tea.Model. Loads the starting page.
func (m Model) Init() tea.Cmd {
	return LoadPageCmd(m.ctx, m.catalog, m.router.Path())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case NavigatedMsg:
		m.page.SetLoading()
		return m, LoadPageCmd(m.ctx, m.catalog, msg.To)

	case PageLoadedMsg:
		// Drop results for pages the user already left.
		if msg.Path == m.router.Path() {
			m.page.SetPage(msg)
		}
		return m, nil

	case PageErrMsg:
		if msg.Path == m.router.Path() {
			m.page.SetError(msg.Err)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "left", "h", "shift+tab":
		m.focus = (m.focus - 1 + len(m.tabs)) % len(m.tabs)
		return m, nil

	case "right", "l", "tab":
		m.focus = (m.focus + 1) % len(m.tabs)
		return m, nil

	case "enter":
		return m.follow(m.tabs[m.focus].Link)

	case "b", "backspace":
		from := m.router.Path()
		if !m.router.Back() {
			return m, nil
		}
		m.err = nil
		return m, navigated(from, m.router.Path())

	case "r":
		m.queries.Invalidate("")
		m.page.SetLoading()
		return m, LoadPageCmd(m.ctx, m.catalog, m.router.Path())

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		links := m.page.Page().Links
		n := int(msg.String()[0] - '1')
		if n >= len(links) {
			return m, nil
		}
		return m.follow(ui.NewLink(links[n], ""))
	}

	var cmd tea.Cmd
	m.page, cmd = m.page.Update(msg)
	return m, cmd
}

// follow clicks link the way a pointer would, then loads the page if the
// router moved.
func (m Model) follow(link ui.Link) (tea.Model, tea.Cmd) {
	from := m.router.Path()
	if err := link.Click(m.ctx, &ui.ClickEvent{}); err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	to := m.router.Path()
	if to == from {
		return m, nil
	}
	return m, navigated(from, to)
}

func navigated(from, to string) tea.Cmd {
	return func() tea.Msg { return NavigatedMsg{From: from, To: to} }
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.navView())
	b.WriteString("\n")

	bodyHeight := m.height - 4
	if m.err != nil {
		bodyHeight--
	}
	if m.width > 0 && bodyHeight > 0 {
		m.page.SetSize(m.width, bodyHeight)
	}
	b.WriteString(m.page.View())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(ErrorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	m.statusBar.SetWidth(m.width)
	m.statusBar.SetState(m.router.Path(), m.router.Depth(), m.queries.Len(), m.page.loading)
	b.WriteString(m.statusBar.View())
	return b.String()
}

// navView renders the tab row, highlighting the link whose href is the
// current path.
func (m Model) navView() string {
	tabs := make([]string, len(m.tabs))
	for i, tab := range m.tabs {
		tabs[i] = NavStyle(tab.Link.Active(m.ctx), i == m.focus).Render(tab.Label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
}
