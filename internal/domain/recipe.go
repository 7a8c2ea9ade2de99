package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MaxTimeMinutes is the largest preparation time the INTEGER column holds.
const MaxTimeMinutes = math.MaxInt32

// Recipe is owned by exactly one user. Every entity in Tags and Ingredients
// shares the recipe's OwnerID.
type Recipe struct {
	ID          int64
	OwnerID     string
	Title       string
	TimeMinutes int
	Price       decimal.Decimal
	Link        string
	Description string
	Tags        []*Entity
	Ingredients []*Entity
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Associations returns the linked entities of kind k.
func (r *Recipe) Associations(k EntityKind) []*Entity {
	if k == KindIngredient {
		return r.Ingredients
	}
	return r.Tags
}

// SetAssociations replaces the linked entities of kind k.
func (r *Recipe) SetAssociations(k EntityKind, entities []*Entity) {
	if k == KindIngredient {
		r.Ingredients = entities
		return
	}
	r.Tags = entities
}

// RecipeField is a column a client may write. Anything not listed here,
// including the owner, is never applied.
type RecipeField string

const (
	FieldTitle       RecipeField = "title"
	FieldTimeMinutes RecipeField = "time_minutes"
	FieldPrice       RecipeField = "price"
	FieldLink        RecipeField = "link"
	FieldDescription RecipeField = "description"
)

// WritableRecipeFields is the update allow-list.
var WritableRecipeFields = []RecipeField{FieldTitle, FieldTimeMinutes, FieldPrice, FieldLink, FieldDescription}

// Writable reports whether f is on the allow-list.
func (f RecipeField) Writable() bool {
	for _, w := range WritableRecipeFields {
		if f == w {
			return true
		}
	}
	return false
}

// RecipeChange is one allow-listed column assignment.
type RecipeChange struct {
	Field RecipeField
	Value any
}
