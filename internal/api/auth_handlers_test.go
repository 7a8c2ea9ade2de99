package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/users", map[string]any{
		"email":    "  Julia@Example.com",
		"password": "longenough",
		"name":     "Julia",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	envelope := decodeEnvelope[struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}](t, resp.Body.Bytes())
	assert.True(t, envelope.Success)
	assert.Equal(t, "julia@example.com", envelope.Data.Email)
	assert.NotEmpty(t, envelope.Data.ID)
	assert.Empty(t, envelope.Data.Password)
	assert.NotContains(t, resp.Body.String(), "password_hash")

	resp = ts.api.Post("/api/v1/users", map[string]any{"email": "julia@example.com", "password": "longenough"})
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "ALREADY_EXISTS", decodeEnvelope[any](t, resp.Body.Bytes()).Code)
}

func TestRegister_Validation(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/users", map[string]any{"email": "nope", "password": "short"})
	assert.GreaterOrEqual(t, resp.Code, 400)
	assert.Less(t, resp.Code, 500)

	envelope := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.False(t, envelope.Success)
	assert.Equal(t, "VALIDATION", envelope.Code)
}

func TestLogin(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/users", map[string]any{"email": "anne@example.com", "password": "correct horse battery"})
	require.Equal(t, http.StatusCreated, resp.Code)

	data := ts.login(t, "ANNE@example.com", "correct horse battery")
	assert.Equal(t, "Bearer", data.TokenType)
	assert.NotEmpty(t, data.AccessToken)
	assert.NotEmpty(t, data.RefreshToken)
	assert.Equal(t, "anne@example.com", data.User.Email)

	me := ts.api.Get("/api/v1/users/me", bearer(data.AccessToken))
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, data.User.ID, decodeEnvelope[struct {
		ID string `json:"id"`
	}](t, me.Body.Bytes()).Data.ID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/token", map[string]any{"email": "ghost@example.com", "password": "whatever123"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	envelope := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.False(t, envelope.Success)
	assert.Equal(t, "INVALID_CREDENTIALS", envelope.Code)
}

func TestRefreshAndLogout(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/users", map[string]any{"email": "rita@example.com", "password": "correct horse battery"})
	require.Equal(t, http.StatusCreated, resp.Code)
	login := ts.login(t, "rita@example.com", "correct horse battery")

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{"refresh_token": login.RefreshToken})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	refreshed := decodeEnvelope[authData](t, resp.Body.Bytes()).Data
	assert.Equal(t, login.SessionID, refreshed.SessionID)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{"refresh_token": login.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.Code, "spent refresh token")

	resp = ts.api.Post("/api/v1/auth/logout", bearer(refreshed.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/recipes", bearer(refreshed.AccessToken))
	assert.Equal(t, http.StatusUnauthorized, resp.Code, "revoked session")
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name   string
		header []any
	}{
		{"missing header", nil},
		{"wrong scheme", []any{"Authorization: Basic abc"}},
		{"garbage token", []any{"Authorization: Bearer v4.local.garbage"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get("/api/v1/recipes", tt.header...)
			assert.Equal(t, http.StatusUnauthorized, resp.Code)

			envelope := decodeEnvelope[any](t, resp.Body.Bytes())
			assert.False(t, envelope.Success)
			assert.Equal(t, "UNAUTHORIZED", envelope.Code)
		})
	}
}

func TestUpdateCurrentUser(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.createUser(t)

	resp := ts.api.Patch("/api/v1/users/me", bearer(token), map[string]any{"name": "Chef"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	envelope := decodeEnvelope[struct {
		Name string `json:"name"`
	}](t, resp.Body.Bytes())
	assert.Equal(t, "Chef", envelope.Data.Name)
}

func TestAuthRateLimit(t *testing.T) {
	ts := setupTestServerWithOptions(t, Options{AuthPerMinute: 1, AuthBurst: 2})

	body := map[string]any{"email": "ghost@example.com", "password": "whatever123"}
	assert.Equal(t, http.StatusUnauthorized, ts.api.Post("/api/v1/auth/token", body).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.api.Post("/api/v1/auth/token", body).Code)

	resp := ts.api.Post("/api/v1/auth/token", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "RATE_LIMITED", decodeEnvelope[any](t, resp.Body.Bytes()).Code)
}
