package domain

import "time"

// EntityKind names one of the user-scoped, name-keyed entity types.
type EntityKind string

const (
	KindTag        EntityKind = "tag"
	KindIngredient EntityKind = "ingredient"
)

// EntityKinds lists every kind in a stable order.
var EntityKinds = []EntityKind{KindTag, KindIngredient}

// Valid reports whether k is a known kind.
func (k EntityKind) Valid() bool {
	return k == KindTag || k == KindIngredient
}

// Plural returns the collection name ("tags", "ingredients").
func (k EntityKind) Plural() string {
	return string(k) + "s"
}

// Entity is a tag or an ingredient. (OwnerID, Name) is unique per kind.
type Entity struct {
	ID        int64      `json:"id"`
	Kind      EntityKind `json:"-"`
	OwnerID   string     `json:"-"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Descriptor names a tag or ingredient inside a recipe payload.
type Descriptor struct {
	Name string `json:"name" validate:"notblank,max=255"`
}
