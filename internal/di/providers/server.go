package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/recipebox/recipe-api/internal/api"
	"github.com/recipebox/recipe-api/internal/config"
	"github.com/recipebox/recipe-api/internal/logger"
	"github.com/recipebox/recipe-api/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sessions := do.MustInvoke[*SessionStoreHandle](i)

	services := &api.Services{
		Auth:   do.MustInvoke[*service.AuthService](i),
		User:   do.MustInvoke[*service.UserService](i),
		Recipe: do.MustInvoke[*service.RecipeService](i),
		Entity: do.MustInvoke[*service.EntityService](i),
	}
	health := map[string]api.HealthChecker{
		"database": storeHandle.Store,
		"sessions": sessions.SessionStore,
	}

	handler := api.NewServer(services, health, api.Options{
		CORSOrigins:   cfg.Server.CORSOrigins,
		AuthPerMinute: cfg.RateLimit.AuthPerMinute,
		AuthBurst:     cfg.RateLimit.AuthBurst,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
