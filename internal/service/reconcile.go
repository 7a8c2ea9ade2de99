package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/recipebox/recipe-api/internal/domain"
	"github.com/recipebox/recipe-api/internal/normalize"
	"github.com/recipebox/recipe-api/internal/store"
)

// Reconciler turns a list of descriptors into the set of owned entities
// linked to a recipe, creating missing tags and ingredients on the way.
type Reconciler struct {
	logger *slog.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(logger *slog.Logger) *Reconciler {
	return &Reconciler{logger: logger}
}

// resolveDescriptor returns the stored name a descriptor refers to.
func resolveDescriptor(d domain.Descriptor) string {
	return normalize.Name(d.Name)
}

// Reconcile replaces the recipe's associations of kind with the entities
// named by descriptors. A nil descriptors pointer leaves them untouched; a
// non-nil empty list clears them.
//
// Names are resolved and attached in the given order. A repeated name is
// attached once. tx must be the transaction that also carries the recipe
// write so readers never see the cleared intermediate state.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	tx store.Tx,
	recipe *domain.Recipe,
	kind domain.EntityKind,
	descriptors *[]domain.Descriptor,
) error {
	if descriptors == nil {
		return nil
	}

	if err := tx.ClearAssociations(ctx, kind, recipe.ID); err != nil {
		return err
	}

	attached := make([]*domain.Entity, 0, len(*descriptors))
	seen := make(map[string]struct{}, len(*descriptors))
	for _, d := range *descriptors {
		name := resolveDescriptor(d)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		entity, created, err := tx.GetOrCreateEntity(ctx, kind, recipe.OwnerID, name)
		if err != nil {
			return fmt.Errorf("resolve %s %q: %w", kind, name, err)
		}
		if created {
			entitiesCreated.WithLabelValues(string(kind)).Inc()
			if r.logger != nil {
				r.logger.Debug("Entity created from recipe payload",
					"kind", kind,
					"entity_id", entity.ID,
					"recipe_id", recipe.ID,
					"user_id", recipe.OwnerID,
				)
			}
		}

		if err := tx.Attach(ctx, kind, recipe.ID, entity.ID); err != nil {
			return err
		}
		attached = append(attached, entity)
	}

	recipe.SetAssociations(kind, attached)
	return nil
}
