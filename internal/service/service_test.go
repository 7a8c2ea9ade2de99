package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipe-api/internal/auth"
	"github.com/recipebox/recipe-api/internal/domain"
	"github.com/recipebox/recipe-api/internal/store"
	"github.com/recipebox/recipe-api/internal/store/sqlstore"
	"github.com/recipebox/recipe-api/internal/validation"
)

var cheapArgon = auth.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type testEnv struct {
	store    *sqlstore.Store
	sessions *store.SessionStore
	tokens   *auth.TokenService

	auth     *AuthService
	users    *UserService
	recipes  *RecipeService
	entities *EntityService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	db, err := sqlstore.Open(ctx, sqlstore.Options{Driver: "sqlite", DSN: filepath.Join(dir, "recipes.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Migrate(ctx)
	require.NoError(t, err)

	sessions, err := store.OpenSessionStore(store.SessionStoreOptions{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	hasher := auth.NewPasswordHasher(cheapArgon)
	v := validation.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessionService := NewSessionService(sessions, db, tokens, logger)

	return &testEnv{
		store:    db,
		sessions: sessions,
		tokens:   tokens,
		auth:     NewAuthService(db, tokens, sessionService, hasher, v, logger),
		users:    NewUserService(db, sessionService, hasher, v, logger),
		recipes:  NewRecipeService(db, NewReconciler(logger), v, logger),
		entities: NewEntityService(db, v, logger),
	}
}

var userCounter atomic.Int64

func (e *testEnv) newUser(t *testing.T) *domain.User {
	t.Helper()
	n := userCounter.Add(1)
	u, err := e.auth.Register(context.Background(), RegisterRequest{
		Email:    fmt.Sprintf("cook%d@example.com", n),
		Password: "correct horse battery",
		Name:     "Cook",
	})
	require.NoError(t, err)
	return u
}

func ptr[T any](v T) *T { return &v }

func descriptors(names ...string) *[]domain.Descriptor {
	list := make([]domain.Descriptor, len(names))
	for i, n := range names {
		list[i] = domain.Descriptor{Name: n}
	}
	return &list
}

func sampleInput(title string) RecipeInput {
	return RecipeInput{
		Title:       ptr(title),
		TimeMinutes: ptr(10),
		Price:       ptr(decimal.RequireFromString("5.00")),
	}
}

func names(entities []*domain.Entity) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.Name
	}
	return out
}
