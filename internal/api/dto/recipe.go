package dto

import (
	"encoding/json"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// Descriptor names a tag or ingredient inside a recipe payload. Other keys,
// such as the id echoed from a response, are ignored.
type Descriptor struct {
	_ struct{} `json:"-" additionalProperties:"true"`

	Name string `json:"name" doc:"Tag or ingredient name; created for the caller if it does not exist"`
}

// Price is a decimal price sent as a JSON string or number. The literal
// text is kept as written and parsed later, so no float rounding happens.
type Price string

// UnmarshalJSON accepts "5.25" and 5.25 alike.
func (p *Price) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = Price(s)
		return nil
	}
	*p = Price(b)
	return nil
}

// Schema describes Price as a string or a number.
func (Price) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{
		OneOf: []*huma.Schema{
			{Type: huma.TypeString},
			{Type: huma.TypeNumber},
		},
		Description: "Decimal price, at most 5 digits with 2 decimal places",
		Examples:    []any{"5.25"},
	}
}

// Entity is a tag or an ingredient.
type Entity struct {
	ID   int64  `json:"id" doc:"Identifier"`
	Name string `json:"name" doc:"Name"`
}

// RecipeRequest is the body of create, replace and partial update.
// Absent tags or ingredients leave the links alone; an empty list clears them.
type RecipeRequest struct {
	_ struct{} `json:"-" additionalProperties:"true"`

	Title       *string       `json:"title,omitempty" doc:"Title (1-255 chars)"`
	TimeMinutes *int          `json:"time_minutes,omitempty" doc:"Preparation time in minutes"`
	Price       *Price        `json:"price,omitempty"`
	Link        *string       `json:"link,omitempty" doc:"Optional link (<= 255 chars)"`
	Description *string       `json:"description,omitempty" doc:"Free-text description"`
	Tags        *[]Descriptor `json:"tags,omitempty" doc:"Replaces the recipe's tags when present"`
	Ingredients *[]Descriptor `json:"ingredients,omitempty" doc:"Replaces the recipe's ingredients when present"`

	// Accepted and ignored: a recipe always belongs to the caller.
	User  any `json:"user,omitempty" doc:"Ignored"`
	Owner any `json:"owner,omitempty" doc:"Ignored"`
}

// CreateRecipeInput wraps recipe creation for huma. RawBody lets the
// handler tell an explicit null apart from an absent key.
type CreateRecipeInput struct {
	AuthHeader
	Body    RecipeRequest
	RawBody []byte
}

// UpdateRecipeInput wraps replace and partial update for huma.
type UpdateRecipeInput struct {
	AuthHeader
	IDParam
	Body    RecipeRequest
	RawBody []byte
}

// RecipeByIDInput addresses one recipe.
type RecipeByIDInput struct {
	AuthHeader
	IDParam
}

// RecipeSummary is the list projection: everything but the description.
type RecipeSummary struct {
	ID          int64    `json:"id" doc:"Recipe ID"`
	Title       string   `json:"title" doc:"Title"`
	TimeMinutes int      `json:"time_minutes" doc:"Preparation time in minutes"`
	Price       string   `json:"price" example:"5.25" doc:"Decimal price"`
	Link        string   `json:"link" doc:"Link"`
	Tags        []Entity `json:"tags" doc:"Tags, by id"`
	Ingredients []Entity `json:"ingredients" doc:"Ingredients, by id"`
}

// RecipeDetail adds the description and timestamps.
type RecipeDetail struct {
	RecipeSummary
	Description string    `json:"description" doc:"Free-text description"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

// RecipeListOutput is the newest-first recipe list.
type RecipeListOutput struct {
	Body []RecipeSummary
}

// RecipeOutput wraps a recipe detail for huma.
type RecipeOutput struct {
	Body RecipeDetail
}

// CreatedRecipeOutput is returned with 201 by create.
type CreatedRecipeOutput struct {
	Status int
	Body   RecipeDetail
}

// EntityListOutput lists tags or ingredients, name descending.
type EntityListOutput struct {
	Body []Entity
}

// RenameEntityInput renames a tag or ingredient.
type RenameEntityInput struct {
	AuthHeader
	IDParam
	Body Descriptor
}

// EntityByIDInput addresses one tag or ingredient.
type EntityByIDInput struct {
	AuthHeader
	IDParam
}

// EntityOutput wraps a tag or ingredient for huma.
type EntityOutput struct {
	Body Entity
}
