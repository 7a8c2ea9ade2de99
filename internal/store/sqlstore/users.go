package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/recipebox/recipe-api/internal/domain"
	"github.com/recipebox/recipe-api/internal/store"
)

const userColumns = `id, email, name, password_hash, created_at, updated_at`

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u                    domain.User
		createdAt, updatedAt timestamp
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time
	return &u, nil
}

// CreateUser inserts a user. A taken email yields store.ErrAlreadyExists.
func (q *queries) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := q.exec(ctx, `
		INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.PasswordHash,
		q.d.timeArg(u.CreatedAt), q.d.timeArg(u.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("email already registered").WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser returns the user with id.
func (q *queries) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns the user registered with email.
func (q *queries) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// UpdateUser writes email, name and password hash.
func (q *queries) UpdateUser(ctx context.Context, u *domain.User) error {
	res, err := q.exec(ctx, `
		UPDATE users SET email = ?, name = ?, password_hash = ?, updated_at = ?
		WHERE id = ?`,
		u.Email, u.Name, u.PasswordHash, q.d.timeArg(u.UpdatedAt), u.ID,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("email already registered").WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return expectOne(res, "user")
}
