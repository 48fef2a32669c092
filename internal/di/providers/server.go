package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/juzzt/juzzt-server/internal/api"
	"github.com/juzzt/juzzt-server/internal/config"
	"github.com/juzzt/juzzt-server/internal/logger"
	"github.com/juzzt/juzzt-server/internal/media/images"
	"github.com/juzzt/juzzt-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	apiServer *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := h.Server.Shutdown(ctx)
	h.apiServer.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	imageStorage := do.MustInvoke[*images.Storage](i)

	services := &api.Services{
		Auth:      do.MustInvoke[*service.AuthService](i),
		Catalog:   do.MustInvoke[*service.CatalogService](i),
		Order:     do.MustInvoke[*service.OrderService](i),
		Playlist:  do.MustInvoke[*service.PlaylistService](i),
		Recommend: do.MustInvoke[*service.RecommendationService](i),
		Enrich:    do.MustInvoke[*service.EnrichmentService](i),
		Search:    do.MustInvoke[*service.SearchService](i),
		Session:   do.MustInvoke[*service.SessionService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, imageStorage, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv, apiServer: handler}, nil
}
