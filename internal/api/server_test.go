package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipe-api/internal/auth"
	"github.com/recipebox/recipe-api/internal/service"
	"github.com/recipebox/recipe-api/internal/store"
	"github.com/recipebox/recipe-api/internal/store/sqlstore"
	"github.com/recipebox/recipe-api/internal/validation"
)

// testEnvelope mirrors Envelope with a typed payload.
type testEnvelope[T any] struct {
	V       int               `json:"v"`
	Success bool              `json:"success"`
	Data    T                 `json:"data"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api      humatest.TestAPI
	store    *sqlstore.Store
	sessions *store.SessionStore
}

func defaultTestOptions() Options {
	return Options{CORSOrigins: []string{"*"}, AuthPerMinute: 6000, AuthBurst: 1000}
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWithOptions(t, defaultTestOptions())
}

func setupTestServerWithOptions(t *testing.T, opts Options) *testServer {
	t.Helper()
	ctx := context.Background()
	tmpDir := t.TempDir()

	db, err := sqlstore.Open(ctx, sqlstore.Options{Driver: "sqlite", DSN: filepath.Join(tmpDir, "recipes.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Migrate(ctx)
	require.NoError(t, err)

	sessions, err := store.OpenSessionStore(store.SessionStoreOptions{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	key, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	logger := discardLogger()
	hasher := auth.NewPasswordHasher(auth.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	v := validation.New()
	sessionService := service.NewSessionService(sessions, db, tokens, logger)

	services := &Services{
		Auth:   service.NewAuthService(db, tokens, sessionService, hasher, v, logger),
		User:   service.NewUserService(db, sessionService, hasher, v, logger),
		Recipe: service.NewRecipeService(db, service.NewReconciler(logger), v, logger),
		Entity: service.NewEntityService(db, v, logger),
	}
	health := map[string]HealthChecker{"database": db, "sessions": sessions}

	s := NewServer(services, health, opts, logger)
	t.Cleanup(s.Close)

	return &testServer{
		Server:   s,
		api:      humatest.Wrap(t, s.API()),
		store:    db,
		sessions: sessions,
	}
}

var userCounter atomic.Int64

// createUser registers a fresh account and returns its access token.
func (ts *testServer) createUser(t *testing.T) string {
	t.Helper()
	email := fmt.Sprintf("cook%d@example.com", userCounter.Add(1))

	resp := ts.api.Post("/api/v1/users", map[string]any{
		"email":    email,
		"password": "correct horse battery",
		"name":     "Cook",
	})
	require.Equal(t, http.StatusCreated, resp.Code, "register failed: %s", resp.Body.String())

	return ts.login(t, email, "correct horse battery").AccessToken
}

func (ts *testServer) login(t *testing.T, email, password string) authData {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/token", map[string]any{"email": email, "password": password})
	require.Equal(t, http.StatusOK, resp.Code, "login failed: %s", resp.Body.String())

	return decodeEnvelope[authData](t, resp.Body.Bytes()).Data
}

type authData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	SessionID    string `json:"session_id"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
}

func decodeEnvelope[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var envelope testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &envelope), "body: %s", body)
	require.Equal(t, EnvelopeVersion, envelope.V)
	return envelope
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}
