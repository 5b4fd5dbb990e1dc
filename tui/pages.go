// ABOUTME: Loads and renders browser pages as plain text, reading catalog data through the shared fetch cache.
// ABOUTME: Uses the same query keys as the web pages so both front ends agree on what is cached.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/2389-research/nutria/catalog"
	"github.com/2389-research/nutria/query"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
)

// Catalog is the read side of catalog.Store used by the browser.
type Catalog interface {
	ListTags(ctx context.Context) ([]catalog.Tag, error)
	ListIngredients(ctx context.Context) ([]catalog.Ingredient, error)
	ListRecipes(ctx context.Context) ([]catalog.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*catalog.Recipe, error)
}

const recipesPath = "/recipes"

// topLevel lists the paths the browser can show besides recipe details.
var topLevel = map[string]bool{
	"/":            true,
	recipesPath:    true,
	"/ingredients": true,
	"/tags":        true,
}

// KnownPath reports whether the browser has a page for path.
func KnownPath(path string) bool {
	if topLevel[path] {
		return true
	}
	_, ok := recipeID(path)
	return ok
}

func recipeID(path string) (uuid.UUID, bool) {
	rest, ok := strings.CutPrefix(path, recipesPath+"/")
	if !ok {
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(rest)
	return id, err == nil
}

// LoadPageCmd returns a command that loads the page for path. ctx must carry
// the shared query client.
func LoadPageCmd(ctx context.Context, c Catalog, path string) tea.Cmd {
	return func() tea.Msg {
		msg, err := loadPage(ctx, c, path)
		if err != nil {
			return PageErrMsg{Path: path, Err: err}
		}
		return msg
	}
}

func loadPage(ctx context.Context, c Catalog, path string) (PageLoadedMsg, error) {
	client := query.FromContext(ctx)

	switch path {
	case "/":
		return PageLoadedMsg{Path: path, Title: "Index", Body: "Hello user!"}, nil

	case recipesPath:
		recipes, err := query.Get(ctx, client, "recipes", c.ListRecipes)
		if err != nil {
			return PageLoadedMsg{}, err
		}
		return recipesPage(recipes), nil

	case "/tags":
		tags, err := query.Get(ctx, client, "tags", c.ListTags)
		if err != nil {
			return PageLoadedMsg{}, err
		}
		var b strings.Builder
		for _, tag := range tags {
			fmt.Fprintf(&b, "• %s\n", tag.Name)
		}
		return PageLoadedMsg{Path: path, Title: "Tags", Body: emptyOr(b.String(), "No tags yet.")}, nil

	case "/ingredients":
		ingredients, err := query.Get(ctx, client, "ingredients", c.ListIngredients)
		if err != nil {
			return PageLoadedMsg{}, err
		}
		var b strings.Builder
		for _, in := range ingredients {
			b.WriteString("• " + in.Name)
			if len(in.Tags) > 0 {
				b.WriteString(MutedStyle.Render("  " + strings.Join(in.Tags, ", ")))
			}
			b.WriteString("\n")
		}
		return PageLoadedMsg{Path: path, Title: "Ingredients", Body: emptyOr(b.String(), "No ingredients yet.")}, nil
	}

	id, ok := recipeID(path)
	if !ok {
		return PageLoadedMsg{}, fmt.Errorf("load %s: %w", path, catalog.ErrNotFound)
	}
	recipe, err := query.Get(ctx, client, query.Key("recipes", id.String()),
		func(ctx context.Context) (*catalog.Recipe, error) {
			return c.GetRecipe(ctx, id)
		})
	if err != nil {
		return PageLoadedMsg{}, err
	}
	return recipePage(path, recipe)
}

func recipesPage(recipes []catalog.Recipe) PageLoadedMsg {
	msg := PageLoadedMsg{Path: recipesPath, Title: "Recipes"}
	var b strings.Builder
	for i, r := range recipes {
		fmt.Fprintf(&b, "%d. %s", i+1, r.Name)
		if r.User.Email != "" {
			b.WriteString(MutedStyle.Render("  by " + r.User.Email))
		}
		b.WriteString("\n")
		msg.Links = append(msg.Links, recipesPath+"/"+r.ID.String())
	}
	msg.Body = emptyOr(b.String(), "No recipes yet.")
	return msg
}

func recipePage(path string, r *catalog.Recipe) (PageLoadedMsg, error) {
	var b strings.Builder
	if r.Description != "" {
		desc, err := glamour.Render(r.Description, "notty")
		if err != nil {
			return PageLoadedMsg{}, fmt.Errorf("render description: %w", err)
		}
		b.WriteString(strings.TrimSpace(desc))
		b.WriteString("\n\n")
	}
	if r.Link != "" {
		b.WriteString(MutedStyle.Render(r.Link))
		b.WriteString("\n\n")
	}
	if len(r.Ingredients) > 0 {
		b.WriteString(TitleStyle.Render("Ingredients"))
		b.WriteString("\n")
		for _, line := range r.Ingredients {
			qty := strconv.FormatFloat(line.Quantity, 'f', -1, 64)
			fmt.Fprintf(&b, "• %s %s %s\n", qty, line.Unit, line.Name)
		}
	}
	return PageLoadedMsg{Path: path, Title: r.Name, Body: strings.TrimRight(b.String(), "\n")}, nil
}

func emptyOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return strings.TrimRight(s, "\n")
}
