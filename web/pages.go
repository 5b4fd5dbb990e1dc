// ABOUTME: Page handlers for the catalog front end: landing, recipes, recipe detail, tags, ingredients.
// ABOUTME: Data is loaded through the shell's fetch cache; the nav bar is rendered from the request's router.
package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/2389-research/nutria/catalog"
	"github.com/2389-research/nutria/query"
	"github.com/2389-research/nutria/ui"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NavLinks are the top-level navigation entries, in display order.
var NavLinks = []ui.Link{
	ui.NewLink("/", "Home"),
	ui.NewLink("/recipes", "Recipes"),
	ui.NewLink("/ingredients", "Ingredients"),
	ui.NewLink("/tags", "Tags"),
}

// renderNav renders the navigation bar for the router carried by ctx.
func renderNav(ctx context.Context) (template.HTML, error) {
	var b strings.Builder
	if err := ui.NavBar(ctx, NavLinks...).Render(&b); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}

// renderPage fills in the nav bar and renders page, as a full document or as
// the body fragment for partial requests.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, page string, data PageData) {
	w.Header().Add("Vary", PartialHeader)
	nav, err := renderNav(r.Context())
	if err != nil {
		s.logger.Error("rendering nav", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	data.Nav = nav

	if isPartial(r) {
		err = s.templates.RenderPartial(w, page, data)
	} else {
		err = s.templates.Render(w, page, data)
	}
	if err != nil {
		s.logger.Error("rendering page", zap.String("page", page), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// renderError renders the error page, mapping catalog.ErrNotFound to 404.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	data := PageData{Title: "Something went wrong", Status: http.StatusInternalServerError,
		Message: "The page could not be loaded."}
	if errors.Is(err, catalog.ErrNotFound) {
		data = PageData{Title: "Not found", Status: http.StatusNotFound,
			Message: "There is nothing at " + r.URL.Path + "."}
	} else {
		s.logger.Error("loading page data",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
	}
	s.renderPage(w, r, "error.html", data)
}

// handleHome renders the static landing page.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, "home.html", PageData{Title: "Index"})
}

// handleIndexAlias sends the legacy /index path to the landing page.
func (s *Server) handleIndexAlias(w http.ResponseWriter, r *http.Request) {
	router, ok := ui.RouterFrom(r.Context())
	if !ok {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if err := router.Navigate(r.Context(), "/"); err != nil {
		s.logger.Error("navigating from /index", zap.Error(err))
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, catalog.ErrNotFound)
}

func (s *Server) handleRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.loadRecipes(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.renderPage(w, r, "recipes.html", PageData{Title: "Recipes", Recipes: recipes})
}

func (s *Server) handleRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "recipeID"))
	if err != nil {
		s.renderError(w, r, catalog.ErrNotFound)
		return
	}
	recipe, err := s.loadRecipe(r.Context(), id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.renderPage(w, r, "recipe.html", PageData{Title: recipe.Name, Recipe: recipe})
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.loadTags(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.renderPage(w, r, "tags.html", PageData{Title: "Tags", Tags: tags})
}

func (s *Server) handleIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := s.loadIngredients(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.renderPage(w, r, "ingredients.html", PageData{Title: "Ingredients", Ingredients: ingredients})
}

// Loaders read through the fetch cache carried by the request context.

func (s *Server) loadRecipes(ctx context.Context) ([]catalog.Recipe, error) {
	return query.Get(ctx, query.FromContext(ctx), "recipes", s.catalog.ListRecipes)
}

func (s *Server) loadRecipe(ctx context.Context, id uuid.UUID) (*catalog.Recipe, error) {
	return query.Get(ctx, query.FromContext(ctx), query.Key("recipes", id.String()),
		func(ctx context.Context) (*catalog.Recipe, error) {
			return s.catalog.GetRecipe(ctx, id)
		})
}

func (s *Server) loadTags(ctx context.Context) ([]catalog.Tag, error) {
	return query.Get(ctx, query.FromContext(ctx), "tags", s.catalog.ListTags)
}

func (s *Server) loadIngredients(ctx context.Context) ([]catalog.Ingredient, error) {
	return query.Get(ctx, query.FromContext(ctx), "ingredients", s.catalog.ListIngredients)
}
