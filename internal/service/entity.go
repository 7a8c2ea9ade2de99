package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/recipebox/recipe-api/internal/domain"
	"github.com/recipebox/recipe-api/internal/store"
	"github.com/recipebox/recipe-api/internal/validation"
)

// EntityService lists, renames and deletes a user's tags and ingredients.
// There is no create: entities only come into being through recipe writes.
type EntityService struct {
	store     store.EntityStore
	validator *validation.Validator
	logger    *slog.Logger
}

// NewEntityService creates a new entity service.
func NewEntityService(s store.EntityStore, validator *validation.Validator, logger *slog.Logger) *EntityService {
	return &EntityService{store: s, validator: validator, logger: logger}
}

// ListEntities returns the owner's entities of kind, name descending.
func (s *EntityService) ListEntities(ctx context.Context, kind domain.EntityKind, ownerID string) ([]*domain.Entity, error) {
	return s.store.ListEntities(ctx, kind, ownerID)
}

// RenameEntity renames one of the owner's entities in place. Renaming onto
// a name the owner already uses for that kind is a conflict.
func (s *EntityService) RenameEntity(ctx context.Context, kind domain.EntityKind, ownerID string, id int64, d domain.Descriptor) (*domain.Entity, error) {
	d.Name = resolveDescriptor(d)
	if err := s.validator.Validate(d); err != nil {
		return nil, err
	}

	entity, err := s.store.RenameEntity(ctx, kind, id, ownerID, d.Name)
	if err != nil {
		return nil, fmt.Errorf("rename %s: %w", kind, err)
	}

	if s.logger != nil {
		s.logger.Info("Entity renamed", "kind", kind, "entity_id", id, "user_id", ownerID)
	}
	return entity, nil
}

// DeleteEntity removes one of the owner's entities and detaches it from
// every recipe.
func (s *EntityService) DeleteEntity(ctx context.Context, kind domain.EntityKind, ownerID string, id int64) error {
	if err := s.store.DeleteEntity(ctx, kind, id, ownerID); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}

	if s.logger != nil {
		s.logger.Info("Entity deleted", "kind", kind, "entity_id", id, "user_id", ownerID)
	}
	return nil
}
