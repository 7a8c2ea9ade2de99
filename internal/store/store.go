// Package store defines the persistence contracts for the recipe API and
// implements the session store on Badger. The relational implementation
// lives in store/sqlstore.
//
// Every tag, ingredient and recipe method takes the acting owner and scopes
// its query with a single id-and-owner predicate: a row owned by somebody
// else is reported exactly like a missing row, with ErrNotFound.
package store

import (
	"context"

	"github.com/recipebox/recipe-api/internal/domain"
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
}

// EntityStore persists tags and ingredients.
type EntityStore interface {
	// GetOrCreateEntity returns the (owner, kind, name) row, inserting it
	// if absent. created is true only for the call that inserted the row.
	// Losing a concurrent insert race is not an error.
	GetOrCreateEntity(ctx context.Context, kind domain.EntityKind, ownerID, name string) (entity *domain.Entity, created bool, err error)

	GetEntity(ctx context.Context, kind domain.EntityKind, id int64, ownerID string) (*domain.Entity, error)

	// ListEntities returns the owner's rows ordered by name descending.
	ListEntities(ctx context.Context, kind domain.EntityKind, ownerID string) ([]*domain.Entity, error)

	// RenameEntity fails with ErrAlreadyExists if the owner already has a
	// row of that kind named name.
	RenameEntity(ctx context.Context, kind domain.EntityKind, id int64, ownerID, name string) (*domain.Entity, error)

	// DeleteEntity removes the row and detaches it from every recipe.
	DeleteEntity(ctx context.Context, kind domain.EntityKind, id int64, ownerID string) error
}

// RecipeStore persists recipes and their tag and ingredient links.
type RecipeStore interface {
	// CreateRecipe inserts the scalar fields and sets r.ID.
	CreateRecipe(ctx context.Context, r *domain.Recipe) error

	// GetRecipe loads the recipe with its associations.
	GetRecipe(ctx context.Context, id int64, ownerID string) (*domain.Recipe, error)

	// ListRecipes returns the owner's recipes with associations, newest id first.
	ListRecipes(ctx context.Context, ownerID string) ([]*domain.Recipe, error)

	// UpdateRecipe applies allow-listed column changes and bumps updated_at,
	// even when changes is empty. ErrNotFound if the owner has no such recipe.
	UpdateRecipe(ctx context.Context, id int64, ownerID string, changes []domain.RecipeChange) error

	// DeleteRecipe removes the recipe and its links, never the linked entities.
	DeleteRecipe(ctx context.Context, id int64, ownerID string) error

	// ClearAssociations unlinks every entity of kind from the recipe.
	ClearAssociations(ctx context.Context, kind domain.EntityKind, recipeID int64) error

	// Attach links an entity to the recipe. Attaching twice is a no-op.
	Attach(ctx context.Context, kind domain.EntityKind, recipeID, entityID int64) error
}

// Tx is the unit-of-work view used by the recipe write path.
type Tx interface {
	EntityStore
	RecipeStore
}

// Store is the full relational store.
type Store interface {
	UserStore
	EntityStore
	RecipeStore

	// WithTx runs fn in one transaction, committing if fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Ping(ctx context.Context) error
	Close() error
}
