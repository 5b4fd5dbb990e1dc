// ABOUTME: Catalog domain types: users, tags, ingredients, recipes and their ingredient lines.
// ABOUTME: IDs are UUIDs; JSON tags define the shape served by the /api endpoints.
package catalog

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint would be violated.
	ErrConflict = errors.New("conflict")
	// ErrInvalid is returned for input that fails validation.
	ErrInvalid = errors.New("invalid input")
)

// User owns recipes and tags. The password hash is never serialized.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
}

// Tag labels ingredients.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatorID uuid.UUID `json:"creator_id"`
}

// Ingredient is a named ingredient with its tags.
type Ingredient struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Tags []string  `json:"tags"`
}

// RecipeIngredient is one ingredient line of a recipe.
type RecipeIngredient struct {
	IngredientID uuid.UUID `json:"ingredient_id"`
	Name         string    `json:"name"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
}

// Recipe is a recipe with its owner and, when loaded individually, its
// ingredient lines.
type Recipe struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Link        string             `json:"link,omitempty"`
	User        User               `json:"user"`
	Ingredients []RecipeIngredient `json:"ingredients,omitempty"`
}
