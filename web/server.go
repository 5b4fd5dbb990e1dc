// ABOUTME: Nutria HTTP server: catalog pages inside the application shell, a JSON API, health and metrics.
// ABOUTME: Routes are served by chi; the shell middleware wraps every page with the shared fetch cache and router.
package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/2389-research/nutria/catalog"
	"github.com/2389-research/nutria/query"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Catalog is the read/write surface of the catalog store used by the server.
type Catalog interface {
	ListTags(ctx context.Context) ([]catalog.Tag, error)
	ListIngredients(ctx context.Context) ([]catalog.Ingredient, error)
	ListRecipes(ctx context.Context) ([]catalog.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*catalog.Recipe, error)
	CreateUser(ctx context.Context, email, password string) (*catalog.User, error)
	Ping(ctx context.Context) error
}

// Server is the Nutria HTTP server.
type Server struct {
	catalog   Catalog
	templates *TemplateEngine
	shell     *Shell
	router    chi.Router
	addr      string
	logger    *zap.Logger
	registry  *prometheus.Registry
}

// ServerConfig holds the configuration for the web server.
type ServerConfig struct {
	Addr      string        // listen address (default: "127.0.0.1:3000")
	Catalog   Catalog       // required
	StaleTime time.Duration // fetch cache freshness; non-positive disables caching
	Logger    *zap.Logger   // default: no-op
	Registry  *prometheus.Registry
}

// NewServer creates a Server with the given configuration. It creates the
// single fetch cache the shell shares with every page and sets up routing.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:3000"
	}
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("Catalog must not be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	tmpl, err := NewTemplateEngine()
	if err != nil {
		return nil, fmt.Errorf("initializing templates: %w", err)
	}

	queryMetrics, err := query.NewMetrics(cfg.Registry)
	if err != nil {
		return nil, fmt.Errorf("registering query metrics: %w", err)
	}
	httpMetrics, err := newHTTPMetrics(cfg.Registry)
	if err != nil {
		return nil, fmt.Errorf("registering http metrics: %w", err)
	}

	s := &Server{
		catalog:   cfg.Catalog,
		templates: tmpl,
		shell: NewShell(query.NewClient(
			query.WithStaleTime(cfg.StaleTime),
			query.WithMetrics(queryMetrics),
		)),
		addr:     cfg.Addr,
		logger:   cfg.Logger,
		registry: cfg.Registry,
	}

	s.router = s.buildRouter(httpMetrics)
	return s, nil
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Queries returns the fetch cache shared by all pages.
func (s *Server) Queries() *query.Client {
	return s.shell.Queries()
}

// Run serves HTTP on the configured address until ctx is canceled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// buildRouter constructs the chi router with all routes and middleware.
func (s *Server) buildRouter(metrics *httpMetrics) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(requestLogger(s.logger, metrics))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	staticFS, err := fs.Sub(StaticFS, "static")
	if err != nil {
		s.logger.Warn("failed to create static sub-FS", zap.Error(err))
	} else {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	}

	// Pages render inside the application shell.
	r.Group(func(r chi.Router) {
		r.Use(s.shell.Middleware)
		r.NotFound(s.handleNotFound)

		r.Get("/", s.handleHome)
		r.Get("/index", s.handleIndexAlias)
		r.Get("/recipes", s.handleRecipes)
		r.Get("/recipes/{recipeID}", s.handleRecipe)
		r.Get("/tags", s.handleTags)
		r.Get("/ingredients", s.handleIngredients)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/tags", s.handleAPITags)
		r.Get("/ingredients", s.handleAPIIngredients)
		r.Get("/recipes", s.handleAPIRecipes)
		r.Get("/recipes/{recipeID}", s.handleAPIRecipe)
		r.Post("/users", s.handleAPICreateUser)
		r.Delete("/cache", s.handleAPIInvalidateCache)
	})

	return r
}
