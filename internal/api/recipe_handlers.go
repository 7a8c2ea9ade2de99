package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/recipebox/recipe-api/internal/api/dto"
	"github.com/recipebox/recipe-api/internal/domain"
	"github.com/recipebox/recipe-api/internal/service"
)

func (s *Server) registerRecipeRoutes() {
	security := []map[string][]string{{"bearer": {}}}

	huma.Register(s.api, huma.Operation{
		OperationID: "listRecipes",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes",
		Summary:     "List recipes",
		Description: "Returns the caller's recipes, newest first",
		Tags:        []string{"Recipes"},
		Security:    security,
	}, s.handleListRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createRecipe",
		Method:        http.MethodPost,
		Path:          "/api/v1/recipes",
		Summary:       "Create recipe",
		Description:   "Creates a recipe. Named tags and ingredients are reused when the caller already has them and created otherwise.",
		Tags:          []string{"Recipes"},
		Security:      security,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecipe",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes/{id}",
		Summary:     "Get recipe",
		Description: "Returns one of the caller's recipes with its description",
		Tags:        []string{"Recipes"},
		Security:    security,
	}, s.handleGetRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceRecipe",
		Method:      http.MethodPut,
		Path:        "/api/v1/recipes/{id}",
		Summary:     "Replace recipe",
		Description: "Full update: title, time_minutes and price are required",
		Tags:        []string{"Recipes"},
		Security:    security,
	}, s.handleReplaceRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateRecipe",
		Method:      http.MethodPatch,
		Path:        "/api/v1/recipes/{id}",
		Summary:     "Update recipe",
		Description: "Partial update: only the fields present change. A present tags or ingredients list replaces the current one.",
		Tags:        []string{"Recipes"},
		Security:    security,
	}, s.handleUpdateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteRecipe",
		Method:        http.MethodDelete,
		Path:          "/api/v1/recipes/{id}",
		Summary:       "Delete recipe",
		Description:   "Deletes the recipe. Its tags and ingredients are kept.",
		Tags:          []string{"Recipes"},
		Security:      security,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteRecipe)
}

func (s *Server) handleListRecipes(ctx context.Context, input *dto.AuthHeader) (*dto.RecipeListOutput, error) {
	principal, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	recipes, err := s.services.Recipe.ListRecipes(ctx, principal.User.ID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.RecipeSummary, len(recipes))
	for i, r := range recipes {
		out[i] = toRecipeSummary(r)
	}
	return &dto.RecipeListOutput{Body: out}, nil
}

func (s *Server) handleCreateRecipe(ctx context.Context, input *dto.CreateRecipeInput) (*dto.CreatedRecipeOutput, error) {
	principal, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	in, err := toRecipeInput(&input.Body, input.RawBody)
	if err != nil {
		return nil, err
	}

	recipe, err := s.services.Recipe.CreateRecipe(ctx, principal.User.ID, in)
	if err != nil {
		return nil, err
	}

	return &dto.CreatedRecipeOutput{Status: http.StatusCreated, Body: toRecipeDetail(recipe)}, nil
}

func (s *Server) handleGetRecipe(ctx context.Context, input *dto.RecipeByIDInput) (*dto.RecipeOutput, error) {
	principal, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	recipe, err := s.services.Recipe.GetRecipe(ctx, principal.User.ID, input.ID)
	if err != nil {
		return nil, err
	}

	return &dto.RecipeOutput{Body: toRecipeDetail(recipe)}, nil
}

func (s *Server) handleReplaceRecipe(ctx context.Context, input *dto.UpdateRecipeInput) (*dto.RecipeOutput, error) {
	return s.writeRecipe(ctx, input, s.services.Recipe.ReplaceRecipe)
}

func (s *Server) handleUpdateRecipe(ctx context.Context, input *dto.UpdateRecipeInput) (*dto.RecipeOutput, error) {
	return s.writeRecipe(ctx, input, s.services.Recipe.UpdateRecipe)
}

type recipeWriter func(ctx context.Context, ownerID string, id int64, in service.RecipeInput) (*domain.Recipe, error)

func (s *Server) writeRecipe(ctx context.Context, input *dto.UpdateRecipeInput, write recipeWriter) (*dto.RecipeOutput, error) {
	principal, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	in, err := toRecipeInput(&input.Body, input.RawBody)
	if err != nil {
		return nil, err
	}

	recipe, err := write(ctx, principal.User.ID, input.ID, in)
	if err != nil {
		return nil, err
	}

	return &dto.RecipeOutput{Body: toRecipeDetail(recipe)}, nil
}

func (s *Server) handleDeleteRecipe(ctx context.Context, input *dto.RecipeByIDInput) (*struct{}, error) {
	principal, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Recipe.DeleteRecipe(ctx, principal.User.ID, input.ID); err != nil {
		return nil, err
	}

	return nil, nil
}
