// ABOUTME: Tests for the Nutria HTTP server and chi router.
// ABOUTME: Covers health, metrics, pages inside the shell, nav highlighting, partial navigation, and error pages.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/2389-research/nutria/catalog"
	"github.com/2389-research/nutria/query"
	"github.com/google/uuid"
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

func newTestServerWith(t *testing.T, c Catalog) *Server {
	t.Helper()
	return newTestServerConfig(t, ServerConfig{Addr: "127.0.0.1:0", Catalog: c, StaleTime: query.DefaultStaleTime})
}

func newTestServerConfig(t *testing.T, cfg ServerConfig) *Server {
	t.Helper()
	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("unexpected error creating server: %v", err)
	}
	return srv
}

func newTestServer(t *testing.T) (*Server, *catalog.Store) {
	t.Helper()
	store := newTestStore(t)
	return newTestServerWith(t, store), store
}

func get(t *testing.T, h http.Handler, path string, partial bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if partial {
		req.Header.Set(PartialHeader, "1")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// countingCatalog wraps a Catalog and counts list calls.
type countingCatalog struct {
	Catalog
	recipeLists atomic.Int64
}

func (c *countingCatalog) ListRecipes(ctx context.Context) ([]catalog.Recipe, error) {
	c.recipeLists.Add(1)
	return c.Catalog.ListRecipes(ctx)
}

// failingCatalog fails every read.
type failingCatalog struct{ Catalog }

var errDBDown = errors.New("db down")

func (failingCatalog) ListTags(ctx context.Context) ([]catalog.Tag, error) { return nil, errDBDown }
func (failingCatalog) Ping(ctx context.Context) error                      { return errDBDown }

func TestNewServerRequiresCatalog(t *testing.T) {
	if _, err := NewServer(ServerConfig{}); err == nil {
		t.Fatal("expected error without a catalog")
	}
}

func TestServerHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv, "/health", false)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status %q, got %q", "ok", body["status"])
	}
}

func TestServerHealthUnavailable(t *testing.T) {
	srv := newTestServerWith(t, failingCatalog{})
	rec := get(t, srv, "/health", false)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestServerHomeIsLandingPage(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv, "/", false)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"<!DOCTYPE html>", "Hello user!", "/static/js/nav.js"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a request id header")
	}
}

func TestServerNavHighlightsCurrentPage(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/", "/recipes", "/ingredients", "/tags"} {
		body := get(t, srv, path, false).Body.String()
		if n := strings.Count(body, `aria-current="page"`); n != 1 {
			t.Errorf("%s: expected exactly one active nav link, got %d", path, n)
			continue
		}
		active := `<a href="` + path + `" class="border-indigo-500`
		if !strings.Contains(body, active) {
			t.Errorf("%s: expected the %s link to be active", path, path)
		}
	}
}

func TestServerNavExactMatchOnly(t *testing.T) {
	srv, store := newTestServer(t)
	recipes, err := store.ListRecipes(context.Background())
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}

	// Nested routes and query strings do not activate the parent link.
	for _, path := range []string{"/recipes/" + recipes[0].ID.String(), "/recipes?sort=name"} {
		body := get(t, srv, path, false).Body.String()
		if strings.Contains(body, `aria-current="page"`) {
			t.Errorf("%s: expected no active nav link", path)
		}
	}
}

func TestServerPartialNavigation(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv, "/tags", true)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("partial response must not include the document shell")
	}
	if !strings.Contains(body, `id="app"`) || !strings.Contains(body, "vegetarian") {
		t.Errorf("expected app fragment with tags, got %s", body)
	}
}

func TestServerPagesListCatalog(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := map[string][]string{
		"/recipes":     {"Shakshuka", "Chickpea stew", "chef@nutria.local"},
		"/tags":        {"dairy", "vegan", "vegetarian"},
		"/ingredients": {"Feta", "dairy, vegetarian"},
	}
	for path, wants := range cases {
		rec := get(t, srv, path, false)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
			continue
		}
		for _, want := range wants {
			if !strings.Contains(rec.Body.String(), want) {
				t.Errorf("%s: expected body to contain %q", path, want)
			}
		}
	}
}

func TestServerRecipeDetail(t *testing.T) {
	srv, store := newTestServer(t)
	recipes, _ := store.ListRecipes(context.Background())
	var shakshuka catalog.Recipe
	for _, r := range recipes {
		if r.Name == "Shakshuka" {
			shakshuka = r
		}
	}

	rec := get(t, srv, "/recipes/"+shakshuka.ID.String(), false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"<strong>tomato</strong>", "<ol>", "4 piece Egg", "50 gram Feta"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected recipe page to contain %q", want)
		}
	}
}

func TestServerRecipeNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/recipes/" + uuid.NewString(), "/recipes/not-a-uuid", "/nowhere"} {
		rec := get(t, srv, path, false)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Not found") {
			t.Errorf("%s: expected the not found page", path)
		}
	}
}

func TestServerPageLoadErrorRendersErrorPage(t *testing.T) {
	srv := newTestServerWith(t, failingCatalog{})
	rec := get(t, srv, "/tags", false)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Something went wrong") {
		t.Error("expected the error page")
	}
}

func TestServerSharesOneCacheAcrossRequests(t *testing.T) {
	counting := &countingCatalog{Catalog: newTestStore(t)}
	srv := newTestServerWith(t, counting)

	for i := 0; i < 3; i++ {
		if rec := get(t, srv, "/recipes", false); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
	if got := counting.recipeLists.Load(); got != 1 {
		t.Errorf("expected one catalog read shared through the cache, got %d", got)
	}
	if srv.Queries().Len() != 1 {
		t.Errorf("expected one cache entry, got %d", srv.Queries().Len())
	}
}

func TestServerZeroStaleTimeDisablesCache(t *testing.T) {
	counting := &countingCatalog{Catalog: newTestStore(t)}
	srv := newTestServerConfig(t, ServerConfig{Addr: "127.0.0.1:0", Catalog: counting})

	for i := 0; i < 2; i++ {
		if rec := get(t, srv, "/recipes", false); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
	if got := counting.recipeLists.Load(); got != 2 {
		t.Errorf("expected every request to reach the catalog, got %d reads", got)
	}
	if srv.Queries().Len() != 0 {
		t.Errorf("expected no cache entries, got %d", srv.Queries().Len())
	}
}

func TestServerResponsesVaryOnPartialHeader(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, tc := range []struct {
		path    string
		partial bool
	}{
		{"/tags", false},
		{"/tags", true},
		{"/index", false},
		{"/index", true},
		{"/recipes/" + uuid.NewString(), true},
	} {
		rec := get(t, srv, tc.path, tc.partial)
		if !strings.Contains(rec.Header().Get("Vary"), PartialHeader) {
			t.Errorf("%s (partial=%v): expected Vary to name %s, got %q",
				tc.path, tc.partial, PartialHeader, rec.Header().Get("Vary"))
		}
	}
}

func TestServerIndexAliasNavigatesHome(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/index", false)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("expected 303 to /, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = get(t, srv, "/index", true)
	if rec.Code != http.StatusNoContent || rec.Header().Get(LocationHeader) != "/" {
		t.Errorf("expected 204 with %s=/, got %d %q", LocationHeader, rec.Code, rec.Header().Get(LocationHeader))
	}
}

func TestServerStaticAssets(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/static/js/nav.js", "/static/css/app.css"} {
		if rec := get(t, srv, path, false); rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
	if body := get(t, srv, "/static/js/nav.js", false).Body.String(); !strings.Contains(body, "preventDefault") {
		t.Error("expected nav script to suppress default navigation")
	}
}

func TestServerMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	get(t, srv, "/recipes", false)
	get(t, srv, "/recipes", false)

	body := get(t, srv, "/metrics", false).Body.String()
	for _, want := range []string{
		`nutria_query_cache_hits_total{resource="recipes"} 1`,
		`nutria_query_cache_misses_total{resource="recipes"} 1`,
		`nutria_http_requests_total{method="GET",route="/recipes",status="200"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected metrics to contain %q", want)
		}
	}
}

func TestServerImplementsHandler(t *testing.T) {
	srv, _ := newTestServer(t)
	var _ http.Handler = srv
}
