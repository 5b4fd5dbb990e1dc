// ABOUTME: Tests for the browser Model: tab focus, link clicks through the history router, back, and page loads.
// ABOUTME: Commands are run synchronously and their messages fed back into Update.
package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/2389-research/nutria/catalog"
	"github.com/2389-research/nutria/query"
	tea "github.com/charmbracelet/bubbletea"
)

func newTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	ctx := context.Background()
	store, err := catalog.Open(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	seed, err := catalog.DefaultSeed()
	if err != nil {
		t.Fatalf("default seed: %v", err)
	}
	if _, err := store.Import(ctx, seed); err != nil {
		t.Fatalf("import seed: %v", err)
	}
	return store
}

// countingCatalog counts recipe list reads.
type countingCatalog struct {
	Catalog
	recipeLists atomic.Int64
}

func (c *countingCatalog) ListRecipes(ctx context.Context) ([]catalog.Recipe, error) {
	c.recipeLists.Add(1)
	return c.Catalog.ListRecipes(ctx)
}

// failingCatalog fails every tag read.
type failingCatalog struct{ Catalog }

func (failingCatalog) ListTags(ctx context.Context) ([]catalog.Tag, error) {
	return nil, errors.New("db down")
}

// drain runs cmd and feeds the resulting messages back into m until no
// further command is returned.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 10 {
			t.Fatal("command chain did not settle")
		}
		msg := cmd()
		if _, ok := msg.(tea.QuitMsg); ok {
			return m
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m
}

func press(t *testing.T, m Model, key tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(key)
	return drain(t, next.(Model), cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func started(t *testing.T, c Catalog) Model {
	t.Helper()
	m := NewModel(context.Background(), c, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)
	return drain(t, m, m.Init())
}

func TestNewModelStartsAtHome(t *testing.T) {
	m := started(t, newTestStore(t))

	if m.Path() != "/" {
		t.Errorf("path = %q, want /", m.Path())
	}
	if m.ActiveTab() != 0 {
		t.Errorf("active tab = %d, want 0", m.ActiveTab())
	}
	if m.Queries() == nil {
		t.Fatal("expected a query client")
	}
	if !strings.Contains(m.View(), "Hello user!") {
		t.Error("expected landing page in view")
	}
}

func TestTabFocusWraps(t *testing.T) {
	m := started(t, newTestStore(t))

	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.focus != len(DefaultTabs)-1 {
		t.Errorf("focus = %d, want last tab", m.focus)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != 0 {
		t.Errorf("focus = %d, want 0", m.focus)
	}
}

func TestEnterFollowsFocusedLink(t *testing.T) {
	m := started(t, newTestStore(t))

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.Path() != "/recipes" {
		t.Fatalf("path = %q, want /recipes", m.Path())
	}
	if m.ActiveTab() != 1 {
		t.Errorf("active tab = %d, want 1", m.ActiveTab())
	}
	view := m.View()
	if !strings.Contains(view, "Shakshuka") || !strings.Contains(view, "Chickpea stew") {
		t.Errorf("expected recipe list in view, got:\n%s", view)
	}
}

func TestEnterOnActiveLinkDoesNotReload(t *testing.T) {
	m := started(t, newTestStore(t))

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected no load when clicking the current page's link")
	}
	if next.(Model).router.Depth() != 0 {
		t.Error("expected no history entry for a same-path click")
	}
}

func TestNumberOpensRecipeAndBackReturns(t *testing.T) {
	m := started(t, newTestStore(t))
	m.focus = 1
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	// Recipes are listed by name: Chickpea stew, then Shakshuka.
	m = press(t, m, runes("2"))
	if !strings.HasPrefix(m.Path(), "/recipes/") {
		t.Fatalf("path = %q, want a recipe detail", m.Path())
	}
	if m.ActiveTab() != -1 {
		t.Errorf("no tab should be active on a detail page, got %d", m.ActiveTab())
	}
	view := m.View()
	for _, want := range []string{"Shakshuka", "4 piece Egg", "50 gram Feta"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}

	m = press(t, m, runes("b"))
	if m.Path() != "/recipes" {
		t.Errorf("path after back = %q, want /recipes", m.Path())
	}
	m = press(t, m, runes("b"))
	m = press(t, m, runes("b"))
	if m.Path() != "/" {
		t.Errorf("path after backing out = %q, want /", m.Path())
	}
}

func TestNumberOutOfRangeIgnored(t *testing.T) {
	m := started(t, newTestStore(t))
	m = press(t, m, runes("9"))
	if m.Path() != "/" {
		t.Errorf("path = %q, want /", m.Path())
	}
}

func TestPagesShareOneCache(t *testing.T) {
	counting := &countingCatalog{Catalog: newTestStore(t)}
	m := started(t, counting)

	m.focus = 1
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = press(t, m, runes("b"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if got := counting.recipeLists.Load(); got != 1 {
		t.Errorf("expected one catalog read, got %d", got)
	}
	if m.Queries().Len() != 1 {
		t.Errorf("expected one cache entry, got %d", m.Queries().Len())
	}

	m = press(t, m, runes("r"))
	if got := counting.recipeLists.Load(); got != 2 {
		t.Errorf("expected reload to refetch, got %d reads", got)
	}
}

func TestGivenClientIsUsed(t *testing.T) {
	client := query.NewClient()
	m := NewModel(context.Background(), newTestStore(t), client)
	if m.Queries() != client {
		t.Error("expected the given client to be kept")
	}
	if got := query.FromContext(m.ctx); got != client {
		t.Error("expected the client in the model's context")
	}
}

func TestLoadErrorShownInPanel(t *testing.T) {
	m := started(t, failingCatalog{Catalog: newTestStore(t)})
	m.focus = 3
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.page.Err() == nil {
		t.Fatal("expected a page error")
	}
	if !strings.Contains(m.View(), "db down") {
		t.Error("expected error text in view")
	}
}

func TestStaleLoadIgnored(t *testing.T) {
	m := started(t, newTestStore(t))
	next, _ := m.Update(PageLoadedMsg{Path: "/tags", Title: "Tags", Body: "late"})
	if strings.Contains(next.(Model).View(), "late") {
		t.Error("result for another path must not replace the current page")
	}
}

func TestNumberIgnoredWhileNextPageLoads(t *testing.T) {
	m := started(t, newTestStore(t))
	m.focus = 1
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.page.Page().Links) == 0 {
		t.Fatal("expected recipe links on the recipes page")
	}

	// Follow the Ingredients tab but hold back its page load.
	m.focus = 2
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a navigation command")
	}
	next, load := next.(Model).Update(cmd())
	m = next.(Model)
	if load == nil {
		t.Fatal("expected a page load command")
	}
	if m.Path() != "/ingredients" {
		t.Fatalf("path = %q, want /ingredients", m.Path())
	}

	next, _ = m.Update(runes("1"))
	if got := next.(Model).Path(); got != "/ingredients" {
		t.Errorf("number key followed a link from the previous page: path = %q", got)
	}
}

func TestQuit(t *testing.T) {
	m := started(t, newTestStore(t))
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestKnownPath(t *testing.T) {
	cases := map[string]bool{
		"/":        true,
		"/recipes": true,
		"/tags":    true,
		"/recipes/7b0a2a2e-8c36-4b43-9d0e-2b7d4f1c9a11": true,
		"/recipes/nope": false,
		"/recipes/":     false,
		"/about":        false,
		"":              false,
	}
	for path, want := range cases {
		if got := KnownPath(path); got != want {
			t.Errorf("KnownPath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestFollowUnknownRouteSetsError(t *testing.T) {
	m := started(t, newTestStore(t))
	m.tabs = append(m.tabs, Tab{Label: "About", Link: DefaultTabs[0].Link})
	m.tabs[len(m.tabs)-1].Link.Href = "/about"
	m.focus = len(m.tabs) - 1

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.err == nil || m.Path() != "/" {
		t.Errorf("expected an error and no move, got err=%v path=%q", m.err, m.Path())
	}
}
