package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/recipebox/recipe-api/internal/domain"
	"github.com/recipebox/recipe-api/internal/store"
)

// entityTable maps a kind to its table and recipe link table.
type entityTable struct {
	table string // tags
	link  string // recipe_tags
	fk    string // tag_id
}

var entityTables = map[domain.EntityKind]entityTable{
	domain.KindTag:        {table: "tags", link: "recipe_tags", fk: "tag_id"},
	domain.KindIngredient: {table: "ingredients", link: "recipe_ingredients", fk: "ingredient_id"},
}

func tableFor(kind domain.EntityKind) (entityTable, error) {
	if !kind.Valid() {
		return entityTable{}, fmt.Errorf("unknown entity kind %q", kind)
	}
	return entityTables[kind], nil
}

const entityColumns = `id, user_id, name, created_at, updated_at`

func scanEntity(row rowScanner, kind domain.EntityKind) (*domain.Entity, error) {
	var (
		e                    = domain.Entity{Kind: kind}
		createdAt, updatedAt timestamp
	)
	if err := row.Scan(&e.ID, &e.OwnerID, &e.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time
	return &e, nil
}

// findEntityByName returns store.ErrNotFound when the owner has no such row.
func (q *queries) findEntityByName(ctx context.Context, t entityTable, kind domain.EntityKind, ownerID, name string) (*domain.Entity, error) {
	e, err := scanEntity(q.queryRow(ctx,
		`SELECT `+entityColumns+` FROM `+t.table+` WHERE user_id = ? AND name = ?`,
		ownerID, name,
	), kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return e, err
}

// GetOrCreateEntity looks the name up first, then inserts with
// ON CONFLICT DO NOTHING. An insert that returns no row, or that still trips
// the unique constraint, lost a race to a concurrent writer and the winner's
// row is read back.
func (q *queries) GetOrCreateEntity(ctx context.Context, kind domain.EntityKind, ownerID, name string) (*domain.Entity, bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, false, err
	}

	existing, err := q.findEntityByName(ctx, t, kind, ownerID, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("find %s: %w", kind, err)
	}

	ts := now()
	created, err := scanEntity(q.queryRow(ctx, `
		INSERT INTO `+t.table+` (user_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, name) DO NOTHING
		RETURNING `+entityColumns,
		ownerID, name, q.d.timeArg(ts), q.d.timeArg(ts),
	), kind)
	switch {
	case err == nil:
		return created, true, nil
	case errors.Is(err, sql.ErrNoRows), isUniqueViolation(err):
		getOrCreateRaces.WithLabelValues(string(kind)).Inc()
	default:
		return nil, false, fmt.Errorf("insert %s: %w", kind, err)
	}

	winner, err := q.findEntityByName(ctx, t, kind, ownerID, name)
	if err != nil {
		return nil, false, fmt.Errorf("re-read %s after conflict: %w", kind, err)
	}
	return winner, false, nil
}

// GetEntity returns one of the owner's entities.
func (q *queries) GetEntity(ctx context.Context, kind domain.EntityKind, id int64, ownerID string) (*domain.Entity, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	e, err := scanEntity(q.queryRow(ctx,
		`SELECT `+entityColumns+` FROM `+t.table+` WHERE id = ? AND user_id = ?`,
		id, ownerID,
	), kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage(string(kind) + " not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}
	return e, nil
}

// ListEntities returns the owner's entities, name descending.
func (q *queries) ListEntities(ctx context.Context, kind domain.EntityKind, ownerID string) ([]*domain.Entity, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := q.query(ctx,
		`SELECT `+entityColumns+` FROM `+t.table+` WHERE user_id = ? ORDER BY name`+q.d.nameOrder+` DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Plural(), err)
	}
	defer rows.Close()

	entities := []*domain.Entity{}
	for rows.Next() {
		e, err := scanEntity(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// RenameEntity changes the name of one of the owner's entities.
func (q *queries) RenameEntity(ctx context.Context, kind domain.EntityKind, id int64, ownerID, name string) (*domain.Entity, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	e, err := scanEntity(q.queryRow(ctx, `
		UPDATE `+t.table+` SET name = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
		RETURNING `+entityColumns,
		name, q.d.timeArg(now()), id, ownerID,
	), kind)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, store.ErrNotFound.WithMessage(string(kind) + " not found")
	case isUniqueViolation(err):
		return nil, store.ErrAlreadyExists.WithMessage(fmt.Sprintf("%s %q already exists", kind, name)).WithCause(err)
	case err != nil:
		return nil, fmt.Errorf("rename %s: %w", kind, err)
	}
	return e, nil
}

// DeleteEntity removes one of the owner's entities; link rows cascade.
func (q *queries) DeleteEntity(ctx context.Context, kind domain.EntityKind, id int64, ownerID string) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}

	res, err := q.exec(ctx, `DELETE FROM `+t.table+` WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return expectOne(res, string(kind))
}
