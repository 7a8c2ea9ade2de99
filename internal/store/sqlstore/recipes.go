package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/recipebox/recipe-api/internal/domain"
	"github.com/recipebox/recipe-api/internal/store"
)

const recipeColumns = `id, user_id, title, time_minutes, price, link, description, created_at, updated_at`

func scanRecipe(row rowScanner) (*domain.Recipe, error) {
	var (
		r                    domain.Recipe
		price                decimal.Decimal
		createdAt, updatedAt timestamp
	)
	if err := row.Scan(&r.ID, &r.OwnerID, &r.Title, &r.TimeMinutes, &price, &r.Link, &r.Description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	r.Price = price
	r.CreatedAt = createdAt.Time
	r.UpdatedAt = updatedAt.Time
	r.Tags = []*domain.Entity{}
	r.Ingredients = []*domain.Entity{}
	return &r, nil
}

// CreateRecipe inserts r's scalar fields and assigns r.ID. Associations are
// attached separately.
func (q *queries) CreateRecipe(ctx context.Context, r *domain.Recipe) error {
	ts := now()
	var (
		id                   int64
		createdAt, updatedAt timestamp
	)
	err := q.queryRow(ctx, `
		INSERT INTO recipes (user_id, title, time_minutes, price, link, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at, updated_at`,
		r.OwnerID, r.Title, r.TimeMinutes, r.Price, r.Link, r.Description,
		q.d.timeArg(ts), q.d.timeArg(ts),
	).Scan(&id, &createdAt, &updatedAt)
	if err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}

	r.ID = id
	r.CreatedAt = createdAt.Time
	r.UpdatedAt = updatedAt.Time
	return nil
}

// GetRecipe returns the owner's recipe with its tags and ingredients.
func (q *queries) GetRecipe(ctx context.Context, id int64, ownerID string) (*domain.Recipe, error) {
	r, err := scanRecipe(q.queryRow(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = ? AND user_id = ?`,
		id, ownerID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("recipe not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	byID := map[int64]*domain.Recipe{r.ID: r}
	for _, kind := range domain.EntityKinds {
		if err := q.loadAssociations(ctx, kind, byID, `rt.recipe_id = ?`, r.ID); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ListRecipes returns the owner's recipes, highest id first. Associations
// are loaded with one query per kind.
func (q *queries) ListRecipes(ctx context.Context, ownerID string) ([]*domain.Recipe, error) {
	rows, err := q.query(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE user_id = ? ORDER BY id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	recipes := []*domain.Recipe{}
	byID := make(map[int64]*domain.Recipe)
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, r)
		byID[r.ID] = r
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(recipes) == 0 {
		return recipes, nil
	}

	for _, kind := range domain.EntityKinds {
		if err := q.loadAssociations(ctx, kind, byID, `r.user_id = ?`, ownerID); err != nil {
			return nil, err
		}
	}
	return recipes, nil
}

// loadAssociations fills the kind's association slice for every recipe in
// byID that the where clause selects. Entities come back in id order.
func (q *queries) loadAssociations(ctx context.Context, kind domain.EntityKind, byID map[int64]*domain.Recipe, where string, arg any) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}

	rows, err := q.query(ctx, `
		SELECT rt.recipe_id, e.id, e.user_id, e.name, e.created_at, e.updated_at
		FROM `+t.link+` rt
		JOIN `+t.table+` e ON e.id = rt.`+t.fk+`
		JOIN recipes r ON r.id = rt.recipe_id
		WHERE `+where+`
		ORDER BY rt.recipe_id, e.id`,
		arg,
	)
	if err != nil {
		return fmt.Errorf("load recipe %s: %w", kind.Plural(), err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			recipeID             int64
			e                    = domain.Entity{Kind: kind}
			createdAt, updatedAt timestamp
		)
		if err := rows.Scan(&recipeID, &e.ID, &e.OwnerID, &e.Name, &createdAt, &updatedAt); err != nil {
			return fmt.Errorf("scan recipe %s: %w", kind, err)
		}
		e.CreatedAt = createdAt.Time
		e.UpdatedAt = updatedAt.Time

		if r, ok := byID[recipeID]; ok {
			r.SetAssociations(kind, append(r.Associations(kind), &e))
		}
	}
	return rows.Err()
}

// UpdateRecipe applies allow-listed changes and bumps updated_at. Field
// names are checked against the allow-list again here, since they become
// column names.
func (q *queries) UpdateRecipe(ctx context.Context, id int64, ownerID string, changes []domain.RecipeChange) error {
	sets := make([]string, 0, len(changes)+1)
	args := make([]any, 0, len(changes)+3)
	for _, c := range changes {
		if !c.Field.Writable() {
			return fmt.Errorf("recipe field %q is not writable", c.Field)
		}
		sets = append(sets, string(c.Field)+" = ?")
		args = append(args, c.Value)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, q.d.timeArg(now()), id, ownerID)

	res, err := q.exec(ctx,
		`UPDATE recipes SET `+strings.Join(sets, ", ")+` WHERE id = ? AND user_id = ?`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	return expectOne(res, "recipe")
}

// DeleteRecipe removes the owner's recipe. Link rows cascade; tags and
// ingredients stay.
func (q *queries) DeleteRecipe(ctx context.Context, id int64, ownerID string) error {
	res, err := q.exec(ctx, `DELETE FROM recipes WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return expectOne(res, "recipe")
}

// ClearAssociations unlinks every entity of kind from the recipe.
func (q *queries) ClearAssociations(ctx context.Context, kind domain.EntityKind, recipeID int64) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	if _, err := q.exec(ctx, `DELETE FROM `+t.link+` WHERE recipe_id = ?`, recipeID); err != nil {
		return fmt.Errorf("clear recipe %s: %w", kind.Plural(), err)
	}
	return nil
}

// Attach links an entity to a recipe; an existing link is left alone.
func (q *queries) Attach(ctx context.Context, kind domain.EntityKind, recipeID, entityID int64) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	_, err = q.exec(ctx,
		`INSERT INTO `+t.link+` (recipe_id, `+t.fk+`) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		recipeID, entityID,
	)
	if err != nil {
		return fmt.Errorf("attach %s: %w", kind, err)
	}
	return nil
}
