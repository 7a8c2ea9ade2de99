// Package di wires the recipe server together with samber/do.
package di

import (
	"github.com/samber/do/v2"
	"github.com/spf13/viper"

	"github.com/recipebox/recipe-api/internal/auth"
	"github.com/recipebox/recipe-api/internal/config"
	"github.com/recipebox/recipe-api/internal/di/providers"
	"github.com/recipebox/recipe-api/internal/logger"
	"github.com/recipebox/recipe-api/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// v carries flags, environment and config file settings.
func NewContainer(v *viper.Viper) *do.RootScope {
	injector := do.New()
	do.ProvideValue(injector, v)

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSessionStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvidePasswordHasher)
	do.Provide(injector, providers.ProvideValidator)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideRecipeService)
	do.Provide(injector, providers.ProvideEntityService)

	// Workers
	do.Provide(injector, providers.ProvideSessionGCJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
// This triggers lazy initialization of every provider.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SessionStoreHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.UserService](injector)
	_ = do.MustInvoke[*service.RecipeService](injector)
	_ = do.MustInvoke[*service.EntityService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionGCJob](injector)

	// Server
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}
