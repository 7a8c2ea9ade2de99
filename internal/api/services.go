package api

import (
	"context"

	"github.com/recipebox/recipe-api/internal/service"
)

// Services groups the business services used by the API server.
type Services struct {
	Auth   *service.AuthService
	User   *service.UserService
	Recipe *service.RecipeService
	Entity *service.EntityService
}

// HealthChecker is a dependency reported by /health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
