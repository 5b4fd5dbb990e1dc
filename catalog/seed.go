// ABOUTME: YAML seed fixtures for the catalog and the transactional importer that loads them.
// ABOUTME: Fixtures reference users by email and tags/ingredients by name; ids are generated on import.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed seed/default.yaml
var defaultSeed []byte

// Seed is the fixture document format.
type Seed struct {
	Users       []SeedUser       `yaml:"users"`
	Tags        []SeedTag        `yaml:"tags"`
	Ingredients []SeedIngredient `yaml:"ingredients"`
	Recipes     []SeedRecipe     `yaml:"recipes"`
}

// SeedUser is a user fixture. Password is hashed on import.
type SeedUser struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// SeedTag is a tag fixture. Creator is an optional user email.
type SeedTag struct {
	Name    string `yaml:"name"`
	Creator string `yaml:"creator"`
}

// SeedIngredient is an ingredient fixture tagged by tag name.
type SeedIngredient struct {
	Name string   `yaml:"name"`
	Tags []string `yaml:"tags"`
}

// SeedRecipe is a recipe fixture. Owner is an optional user email.
type SeedRecipe struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Link        string           `yaml:"link"`
	Owner       string           `yaml:"owner"`
	Ingredients []SeedRecipeLine `yaml:"ingredients"`
}

// SeedRecipeLine names an ingredient used by a recipe, with its amount.
type SeedRecipeLine struct {
	Name     string  `yaml:"name"`
	Quantity float64 `yaml:"quantity"`
	Unit     string  `yaml:"unit"`
}

// ImportStats counts the records created by Import.
type ImportStats struct {
	Users       int
	Tags        int
	Ingredients int
	Recipes     int
}

// LoadSeed decodes a fixture document. Unknown fields are rejected.
func LoadSeed(r io.Reader) (*Seed, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Seed
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &s, nil
}

// DefaultSeed returns the fixtures bundled with the binary.
func DefaultSeed() (*Seed, error) {
	return LoadSeed(bytes.NewReader(defaultSeed))
}

// Import inserts every record of seed in a single transaction. Either all
// records are created or none are.
func (s *Store) Import(ctx context.Context, seed *Seed) (ImportStats, error) {
	var stats ImportStats

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	users := make(map[string]uuid.UUID)
	for _, su := range seed.Users {
		email := strings.TrimSpace(strings.ToLower(su.Email))
		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.MinCost)
		if err != nil {
			return stats, fmt.Errorf("hash password for %s: %w", email, err)
		}
		u := &User{ID: uuid.New(), Email: email, PasswordHash: string(hash)}
		if err := s.insertUser(ctx, tx, u); err != nil {
			return stats, fmt.Errorf("seed user %s: %w", email, err)
		}
		users[email] = u.ID
		stats.Users++
	}

	lookupUser := func(email string) (any, error) {
		if email == "" {
			return nil, nil
		}
		id, ok := users[strings.ToLower(email)]
		if !ok {
			return nil, fmt.Errorf("unknown user %q: %w", email, ErrInvalid)
		}
		return id.String(), nil
	}

	tags := make(map[string]uuid.UUID)
	for _, st := range seed.Tags {
		creator, err := lookupUser(st.Creator)
		if err != nil {
			return stats, fmt.Errorf("seed tag %s: %w", st.Name, err)
		}
		id := uuid.New()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tag (id, name, creator_id) VALUES (?, ?, ?)`,
			id.String(), st.Name, creator,
		); err != nil {
			return stats, wrapWriteErr("seed tag "+st.Name, err)
		}
		tags[st.Name] = id
		stats.Tags++
	}

	ingredients := make(map[string]uuid.UUID)
	for _, si := range seed.Ingredients {
		id := uuid.New()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ingredient (id, name) VALUES (?, ?)`, id.String(), si.Name,
		); err != nil {
			return stats, wrapWriteErr("seed ingredient "+si.Name, err)
		}
		for _, tagName := range si.Tags {
			tagID, ok := tags[tagName]
			if !ok {
				return stats, fmt.Errorf("ingredient %s: unknown tag %q: %w", si.Name, tagName, ErrInvalid)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO ingredient_tag (ingredient_id, tag_id) VALUES (?, ?)`,
				id.String(), tagID.String(),
			); err != nil {
				return stats, wrapWriteErr("tag ingredient "+si.Name, err)
			}
		}
		ingredients[si.Name] = id
		stats.Ingredients++
	}

	for _, sr := range seed.Recipes {
		owner, err := lookupUser(sr.Owner)
		if err != nil {
			return stats, fmt.Errorf("seed recipe %s: %w", sr.Name, err)
		}
		id := uuid.New()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recipe (id, name, description, link, user_id) VALUES (?, ?, ?, ?, ?)`,
			id.String(), sr.Name, nullable(sr.Description), nullable(sr.Link), owner,
		); err != nil {
			return stats, wrapWriteErr("seed recipe "+sr.Name, err)
		}
		for _, line := range sr.Ingredients {
			ingID, ok := ingredients[line.Name]
			if !ok {
				return stats, fmt.Errorf("recipe %s: unknown ingredient %q: %w", sr.Name, line.Name, ErrInvalid)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO recipe_ingredient (ingredient_id, recipe_id, quantity, unit) VALUES (?, ?, ?, ?)`,
				ingID.String(), id.String(), line.Quantity, line.Unit,
			); err != nil {
				return stats, wrapWriteErr("seed recipe line "+line.Name, err)
			}
		}
		stats.Recipes++
	}

	if err := tx.Commit(); err != nil {
		return ImportStats{}, fmt.Errorf("commit import: %w", err)
	}
	return stats, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
