// ABOUTME: SQLite-backed catalog store for users, tags, ingredients and recipes.
// ABOUTME: Opens the database in WAL mode with foreign keys on and migrates it to the latest schema.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

// Store is the catalog database.
type Store struct {
	db      *sql.DB
	version int
}

// Open opens or creates the catalog database at path and applies pending
// migrations. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	version, err := migrate(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, version: version}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the migration version the database is at.
func (s *Store) SchemaVersion() int {
	return s.version
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateUser stores a new user with a bcrypt hash of password.
func (s *Store) CreateUser(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("email %q: %w", email, ErrInvalid)
	}
	if password == "" {
		return nil, fmt.Errorf("empty password: %w", ErrInvalid)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{ID: uuid.New(), Email: email, PasswordHash: string(hash)}
	if err := s.insertUser(ctx, s.db, u); err != nil {
		return nil, err
	}
	return u, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insertUser(ctx context.Context, db execer, u *User) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO user (id, email, password) VALUES (?, ?, ?)`,
		u.ID.String(), u.Email, u.PasswordHash,
	)
	if err != nil {
		return wrapWriteErr("insert user", err)
	}
	return nil
}

// GetUser loads a user by id.
func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	var rawID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, COALESCE(password, '') FROM user WHERE id = ?`, id.String(),
	).Scan(&rawID, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	return &u, nil
}

// CheckPassword reports whether password matches the user's stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ListTags returns all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(creator_id, '') FROM tag ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := []Tag{}
	for rows.Next() {
		var t Tag
		var id, creator string
		if err := rows.Scan(&id, &t.Name, &creator); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		if t.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse tag id: %w", err)
		}
		if creator != "" {
			if t.CreatorID, err = uuid.Parse(creator); err != nil {
				return nil, fmt.Errorf("parse tag creator id: %w", err)
			}
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ListIngredients returns all ingredients ordered by name, each with its tag names.
func (s *Store) ListIngredients(ctx context.Context) ([]Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.name, COALESCE(t.name, '')
		FROM ingredient i
		LEFT JOIN ingredient_tag it ON it.ingredient_id = i.id
		LEFT JOIN tag t ON t.id = it.tag_id
		ORDER BY i.name, i.id, t.name`)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := []Ingredient{}
	for rows.Next() {
		var id, name, tag string
		if err := rows.Scan(&id, &name, &tag); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse ingredient id: %w", err)
		}
		if n := len(ingredients); n == 0 || ingredients[n-1].ID != parsed {
			ingredients = append(ingredients, Ingredient{ID: parsed, Name: name, Tags: []string{}})
		}
		if tag != "" {
			last := &ingredients[len(ingredients)-1]
			last.Tags = append(last.Tags, tag)
		}
	}
	return ingredients, rows.Err()
}

const recipeColumns = `
	r.id, r.name, COALESCE(r.description, ''), COALESCE(r.link, ''),
	COALESCE(u.id, ''), COALESCE(u.email, '')`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row scanner) (Recipe, error) {
	var r Recipe
	var id, userID string
	if err := row.Scan(&id, &r.Name, &r.Description, &r.Link, &userID, &r.User.Email); err != nil {
		return r, err
	}
	var err error
	if r.ID, err = uuid.Parse(id); err != nil {
		return r, fmt.Errorf("parse recipe id: %w", err)
	}
	if userID != "" {
		if r.User.ID, err = uuid.Parse(userID); err != nil {
			return r, fmt.Errorf("parse recipe owner id: %w", err)
		}
	}
	return r, nil
}

// ListRecipes returns all recipes with their owners, ordered by name.
// Ingredient lines are not loaded.
func (s *Store) ListRecipes(ctx context.Context) ([]Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recipeColumns+`
		FROM recipe r LEFT JOIN user u ON r.user_id = u.id
		ORDER BY r.name`)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	recipes := []Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

// GetRecipe loads one recipe with its owner and ingredient lines.
func (s *Store) GetRecipe(ctx context.Context, id uuid.UUID) (*Recipe, error) {
	r, err := scanRecipe(s.db.QueryRowContext(ctx, `SELECT `+recipeColumns+`
		FROM recipe r LEFT JOIN user u ON r.user_id = u.id
		WHERE r.id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recipe %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.name, ri.quantity, ri.unit
		FROM recipe_ingredient ri JOIN ingredient i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = ?
		ORDER BY i.name`, id.String())
	if err != nil {
		return nil, fmt.Errorf("list recipe ingredients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line RecipeIngredient
		var ingID string
		if err := rows.Scan(&ingID, &line.Name, &line.Quantity, &line.Unit); err != nil {
			return nil, fmt.Errorf("scan recipe ingredient: %w", err)
		}
		if line.IngredientID, err = uuid.Parse(ingID); err != nil {
			return nil, fmt.Errorf("parse recipe ingredient id: %w", err)
		}
		r.Ingredients = append(r.Ingredients, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &r, nil
}

// wrapWriteErr maps sqlite unique violations to ErrConflict.
func wrapWriteErr(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
