package validation_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/recipebox/recipe-api/internal/errors"
	"github.com/recipebox/recipe-api/internal/validation"
)

type descriptor struct {
	Name string `json:"name" validate:"notblank,max=255"`
}

type recipeRequest struct {
	Title       string          `json:"title" validate:"notblank,max=255"`
	TimeMinutes int             `json:"time_minutes" validate:"gte=0"`
	Price       decimal.Decimal `json:"price" validate:"price"`
	Link        string          `json:"link,omitempty" validate:"max=255"`
	Tags        []descriptor    `json:"tags,omitempty" validate:"dive"`
}

func validRequest() recipeRequest {
	return recipeRequest{
		Title:       "Sample recipe",
		TimeMinutes: 22,
		Price:       decimal.RequireFromString("5.25"),
		Tags:        []descriptor{{Name: "Thai"}},
	}
}

func TestValidator_Valid(t *testing.T) {
	v := validation.New()
	assert.NoError(t, v.Validate(validRequest()))
}

func TestValidator_FieldErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name   string
		mutate func(*recipeRequest)
		field  string
	}{
		{"blank title", func(r *recipeRequest) { r.Title = "   " }, "title"},
		{"long title", func(r *recipeRequest) { r.Title = strings.Repeat("a", 256) }, "title"},
		{"negative time", func(r *recipeRequest) { r.TimeMinutes = -1 }, "time_minutes"},
		{"too many places", func(r *recipeRequest) { r.Price = decimal.RequireFromString("1.005") }, "price"},
		{"too many digits", func(r *recipeRequest) { r.Price = decimal.RequireFromString("1000.00") }, "price"},
		{"long link", func(r *recipeRequest) { r.Link = strings.Repeat("l", 256) }, "link"},
		{"blank tag name", func(r *recipeRequest) { r.Tags = []descriptor{{Name: "ok"}, {Name: ""}} }, "tags[1].name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := v.Validate(req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.field)
		})
	}
}

func TestValidPrice(t *testing.T) {
	tests := []struct {
		price string
		want  bool
	}{
		{"0", true},
		{"5.25", true},
		{"999.99", true},
		{"-12.50", true},
		{"1000", false},
		{"0.001", false},
		{"12.345", false},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			assert.Equal(t, tt.want, validation.ValidPrice(decimal.RequireFromString(tt.price)))
		})
	}
}

func TestValidator_Var(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Var("name", "Kosher Salt", "notblank,max=255"))

	err := v.Var("name", " ", "notblank")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
