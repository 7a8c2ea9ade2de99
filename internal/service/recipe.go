package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/shopspring/decimal"

	"github.com/recipebox/recipe-api/internal/domain"
	domainerrors "github.com/recipebox/recipe-api/internal/errors"
	"github.com/recipebox/recipe-api/internal/normalize"
	"github.com/recipebox/recipe-api/internal/store"
	"github.com/recipebox/recipe-api/internal/validation"
)

// RecipeInput is a recipe write payload. A nil field was absent from the
// request. Owner holds any owner/user value the client sent; it is
// accepted and never applied.
type RecipeInput struct {
	Title       *string
	TimeMinutes *int
	Price       *decimal.Decimal
	Link        *string
	Description *string
	Tags        *[]domain.Descriptor
	Ingredients *[]domain.Descriptor
	Owner       any
}

// fields returns every scalar key present in the payload by wire name,
// including keys the client is not allowed to write.
func (in *RecipeInput) fields() map[string]any {
	m := make(map[string]any, 6)
	if in.Title != nil {
		m[string(domain.FieldTitle)] = *in.Title
	}
	if in.TimeMinutes != nil {
		m[string(domain.FieldTimeMinutes)] = *in.TimeMinutes
	}
	if in.Price != nil {
		m[string(domain.FieldPrice)] = *in.Price
	}
	if in.Link != nil {
		m[string(domain.FieldLink)] = *in.Link
	}
	if in.Description != nil {
		m[string(domain.FieldDescription)] = *in.Description
	}
	if in.Owner != nil {
		m["user"] = in.Owner
	}
	return m
}

// allowListed keeps only the writable recipe fields, in a fixed order.
func allowListed(fields map[string]any) []domain.RecipeChange {
	changes := make([]domain.RecipeChange, 0, len(fields))
	for _, f := range domain.WritableRecipeFields {
		if v, ok := fields[string(f)]; ok {
			changes = append(changes, domain.RecipeChange{Field: f, Value: v})
		}
	}
	return changes
}

// RecipeService implements the recipe write path and owner-scoped reads.
type RecipeService struct {
	store      store.Store
	reconciler *Reconciler
	validator  *validation.Validator
	logger     *slog.Logger
}

// NewRecipeService creates a new recipe service.
func NewRecipeService(s store.Store, reconciler *Reconciler, validator *validation.Validator, logger *slog.Logger) *RecipeService {
	return &RecipeService{
		store:      s,
		reconciler: reconciler,
		validator:  validator,
		logger:     logger,
	}
}

// ListRecipes returns the owner's recipes, newest first.
func (s *RecipeService) ListRecipes(ctx context.Context, ownerID string) ([]*domain.Recipe, error) {
	return s.store.ListRecipes(ctx, ownerID)
}

// GetRecipe returns one of the owner's recipes.
func (s *RecipeService) GetRecipe(ctx context.Context, ownerID string, id int64) (*domain.Recipe, error) {
	return s.store.GetRecipe(ctx, id, ownerID)
}

// CreateRecipe stores a new recipe owned by ownerID and links the tags and
// ingredients named in the payload, creating any that do not exist yet.
func (s *RecipeService) CreateRecipe(ctx context.Context, ownerID string, in RecipeInput) (*domain.Recipe, error) {
	s.normalize(&in)
	if err := s.validate(&in, true); err != nil {
		return nil, err
	}
	s.logDroppedOwner(&in, ownerID)

	recipe := &domain.Recipe{
		OwnerID:     ownerID,
		Title:       *in.Title,
		TimeMinutes: *in.TimeMinutes,
		Price:       *in.Price,
	}
	if in.Link != nil {
		recipe.Link = *in.Link
	}
	if in.Description != nil {
		recipe.Description = *in.Description
	}

	var created *domain.Recipe
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.CreateRecipe(ctx, recipe); err != nil {
			return err
		}
		if err := s.reconcileAll(ctx, tx, recipe, &in); err != nil {
			return err
		}
		var err error
		created, err = tx.GetRecipe(ctx, recipe.ID, ownerID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	recipeWrites.WithLabelValues("create").Inc()
	if s.logger != nil {
		s.logger.Info("Recipe created", "recipe_id", created.ID, "user_id", ownerID)
	}
	return created, nil
}

// UpdateRecipe applies a partial update. Fields absent from the payload
// keep their values; tags and ingredients are replaced only when present.
func (s *RecipeService) UpdateRecipe(ctx context.Context, ownerID string, id int64, in RecipeInput) (*domain.Recipe, error) {
	return s.update(ctx, ownerID, id, in, false)
}

// ReplaceRecipe is the full update: title, time_minutes and price must be
// present. Absent optional fields are left unchanged.
func (s *RecipeService) ReplaceRecipe(ctx context.Context, ownerID string, id int64, in RecipeInput) (*domain.Recipe, error) {
	return s.update(ctx, ownerID, id, in, true)
}

func (s *RecipeService) update(ctx context.Context, ownerID string, id int64, in RecipeInput, full bool) (*domain.Recipe, error) {
	s.normalize(&in)
	if err := s.validate(&in, full); err != nil {
		return nil, err
	}
	s.logDroppedOwner(&in, ownerID)

	changes := allowListed(in.fields())

	var updated *domain.Recipe
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		// The owner-scoped UPDATE is the existence check.
		if err := tx.UpdateRecipe(ctx, id, ownerID, changes); err != nil {
			return err
		}
		recipe := &domain.Recipe{ID: id, OwnerID: ownerID}
		if err := s.reconcileAll(ctx, tx, recipe, &in); err != nil {
			return err
		}
		var err error
		updated, err = tx.GetRecipe(ctx, id, ownerID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	recipeWrites.WithLabelValues("update").Inc()
	if s.logger != nil {
		s.logger.Info("Recipe updated", "recipe_id", id, "user_id", ownerID, "fields", len(changes))
	}
	return updated, nil
}

// DeleteRecipe removes one of the owner's recipes. Its tags and
// ingredients remain.
func (s *RecipeService) DeleteRecipe(ctx context.Context, ownerID string, id int64) error {
	if err := s.store.DeleteRecipe(ctx, id, ownerID); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	recipeWrites.WithLabelValues("delete").Inc()
	if s.logger != nil {
		s.logger.Info("Recipe deleted", "recipe_id", id, "user_id", ownerID)
	}
	return nil
}

func (s *RecipeService) reconcileAll(ctx context.Context, tx store.Tx, recipe *domain.Recipe, in *RecipeInput) error {
	if err := s.reconciler.Reconcile(ctx, tx, recipe, domain.KindTag, in.Tags); err != nil {
		return err
	}
	return s.reconciler.Reconcile(ctx, tx, recipe, domain.KindIngredient, in.Ingredients)
}

func (s *RecipeService) normalize(in *RecipeInput) {
	if in.Title != nil {
		title := normalize.Text(*in.Title)
		in.Title = &title
	}
	if in.Link != nil {
		link := normalize.Text(*in.Link)
		in.Link = &link
	}
}

// validate checks every present field and reports all failures at once.
// With requireCore the title, time and price must be present.
func (s *RecipeService) validate(in *RecipeInput, requireCore bool) error {
	details := make(map[string]string)
	check := func(field string, value any, tag string) {
		err := s.validator.Var(field, value, tag)
		if err == nil {
			return
		}
		var de *domainerrors.Error
		if errors.As(err, &de) {
			if m, ok := de.Details.(map[string]string); ok {
				maps.Copy(details, m)
				return
			}
		}
		details[field] = "is invalid"
	}
	required := func(field string, present bool) bool {
		if !present && requireCore {
			details[field] = "is required"
		}
		return present
	}

	if required(string(domain.FieldTitle), in.Title != nil) {
		check(string(domain.FieldTitle), *in.Title, "notblank,max=255")
	}
	if required(string(domain.FieldTimeMinutes), in.TimeMinutes != nil) {
		check(string(domain.FieldTimeMinutes), *in.TimeMinutes, fmt.Sprintf("gte=0,lte=%d", domain.MaxTimeMinutes))
	}
	if required(string(domain.FieldPrice), in.Price != nil) {
		check(string(domain.FieldPrice), in.Price.String(), "price")
	}
	if in.Link != nil {
		check(string(domain.FieldLink), *in.Link, "max=255")
	}
	checkDescriptors := func(kind domain.EntityKind, list *[]domain.Descriptor) {
		if list == nil {
			return
		}
		for i, d := range *list {
			check(fmt.Sprintf("%s[%d].name", kind.Plural(), i), resolveDescriptor(d), "notblank,max=255")
		}
	}
	checkDescriptors(domain.KindTag, in.Tags)
	checkDescriptors(domain.KindIngredient, in.Ingredients)

	if len(details) > 0 {
		return domainerrors.ValidationWithDetails("validation failed", details)
	}
	return nil
}

func (s *RecipeService) logDroppedOwner(in *RecipeInput, ownerID string) {
	if in.Owner != nil && s.logger != nil {
		s.logger.Debug("Ignoring owner field in recipe payload", "user_id", ownerID)
	}
}
