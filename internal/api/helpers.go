package api

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/recipebox/recipe-api/internal/api/dto"
	"github.com/recipebox/recipe-api/internal/domain"
	domainerrors "github.com/recipebox/recipe-api/internal/errors"
	"github.com/recipebox/recipe-api/internal/service"
)

func toUserDTO(u *domain.User) dto.User {
	return dto.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toAuthResponse(resp *service.AuthResponse) dto.AuthResponse {
	return dto.AuthResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		ExpiresIn:    resp.ExpiresIn,
		SessionID:    resp.SessionID,
		User:         toUserDTO(resp.User),
	}
}

func toEntityDTO(e *domain.Entity) dto.Entity {
	return dto.Entity{ID: e.ID, Name: e.Name}
}

func toEntityDTOs(entities []*domain.Entity) []dto.Entity {
	out := make([]dto.Entity, len(entities))
	for i, e := range entities {
		out[i] = toEntityDTO(e)
	}
	return out
}

func toRecipeSummary(r *domain.Recipe) dto.RecipeSummary {
	return dto.RecipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Tags:        toEntityDTOs(r.Tags),
		Ingredients: toEntityDTOs(r.Ingredients),
	}
}

func toRecipeDetail(r *domain.Recipe) dto.RecipeDetail {
	return dto.RecipeDetail{
		RecipeSummary: toRecipeSummary(r),
		Description:   r.Description,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toDescriptors(list *[]dto.Descriptor) *[]domain.Descriptor {
	if list == nil {
		return nil
	}
	out := make([]domain.Descriptor, len(*list))
	for i, d := range *list {
		out[i] = domain.Descriptor{Name: d.Name}
	}
	return &out
}

// nonNullableRecipeKeys may be absent from a recipe body but never null.
var nonNullableRecipeKeys = []string{
	string(domain.FieldTitle),
	string(domain.FieldTimeMinutes),
	string(domain.FieldPrice),
	string(domain.FieldLink),
	string(domain.FieldDescription),
	domain.KindTag.Plural(),
	domain.KindIngredient.Plural(),
}

// rejectNulls reports every recipe key the raw body sets to null. Decoding
// alone cannot tell null from absent.
func rejectNulls(raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}

	details := make(map[string]string)
	for _, key := range nonNullableRecipeKeys {
		if v, ok := fields[key]; ok && string(v) == "null" {
			details[key] = "may not be null"
		}
	}
	if len(details) > 0 {
		return domainerrors.ValidationWithDetails("validation failed", details)
	}
	return nil
}

// toRecipeInput converts a request body. raw is the undecoded body.
func toRecipeInput(body *dto.RecipeRequest, raw []byte) (service.RecipeInput, error) {
	if err := rejectNulls(raw); err != nil {
		return service.RecipeInput{}, err
	}

	in := service.RecipeInput{
		Title:       body.Title,
		TimeMinutes: body.TimeMinutes,
		Link:        body.Link,
		Description: body.Description,
		Tags:        toDescriptors(body.Tags),
		Ingredients: toDescriptors(body.Ingredients),
	}

	if body.Price != nil {
		price, err := decimal.NewFromString(string(*body.Price))
		if err != nil {
			return in, domainerrors.ValidationWithDetails("validation failed", map[string]string{
				string(domain.FieldPrice): "must be a decimal number",
			})
		}
		in.Price = &price
	}

	switch {
	case body.User != nil:
		in.Owner = body.User
	case body.Owner != nil:
		in.Owner = body.Owner
	}

	return in, nil
}
