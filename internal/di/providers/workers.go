package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/juzzt/juzzt-server/internal/config"
	"github.com/juzzt/juzzt-server/internal/logger"
	"github.com/juzzt/juzzt-server/internal/service"
	"github.com/juzzt/juzzt-server/internal/watcher"
)

// CoverWatcherHandle wraps the cover drop directory watcher with shutdown capability.
type CoverWatcherHandle struct {
	*watcher.DropWatcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *CoverWatcherHandle) Shutdown() error {
	h.cancel()
	return h.Stop()
}

// ProvideCoverWatcher provides the cover drop directory watcher.
// Images dropped into the configured directory are attached to records.
func ProvideCoverWatcher(i do.Injector) (*CoverWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	catalog := do.MustInvoke[*service.CatalogService](i)

	w, err := watcher.New(log.Logger, cfg.Enrichment.DropPath, watcher.Options{})
	if err != nil {
		return nil, err
	}

	importer := watcher.NewCoverImporter(catalog, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("Cover watcher error", "error", err)
		}
	}()
	go importer.Run(ctx, w)

	log.Info("Cover watcher started", "path", cfg.Enrichment.DropPath)

	return &CoverWatcherHandle{
		DropWatcher: w,
		cancel:      cancel,
	}, nil
}

// EnrichmentJob runs the catalog enrichment batch on an interval.
type EnrichmentJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *EnrichmentJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideEnrichmentJob provides the background enrichment worker. An immediate
// run fires at startup when records are missing their MusicBrainz ID, then the
// batch repeats on the configured interval.
func ProvideEnrichmentJob(i do.Injector) (*EnrichmentJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	enricher := do.MustInvoke[*service.EnrichmentService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	if cfg.Enrichment.Interval <= 0 {
		log.Info("Background enrichment disabled")
		return &EnrichmentJob{cancel: cancel}, nil
	}

	runBatch := func() {
		summary, err := enricher.EnrichAll(ctx)
		if err != nil {
			log.Warn("Background enrichment run failed", "error", err)
			return
		}
		if summary.Processed > 0 {
			log.Info("Background enrichment run completed",
				"processed", summary.Processed,
				"enriched", summary.Enriched,
				"failed", summary.Failed,
			)
		}
	}

	go func() {
		// Run at startup only when there is known work, so a fully
		// enriched catalog does not hit the external APIs on every boot.
		missing, err := storeHandle.ListRecordsMissingMusicBrainzID(ctx)
		if err != nil {
			log.Warn("Failed to check for unenriched records", "error", err)
		} else if len(missing) > 0 {
			log.Info("Records missing metadata, running initial enrichment", "count", len(missing))
			runBatch()
		}

		ticker := time.NewTicker(cfg.Enrichment.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runBatch()
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Background enrichment started", "interval", cfg.Enrichment.Interval)

	return &EnrichmentJob{cancel: cancel}, nil
}

// SessionCleanupJob runs periodic session cleanup.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		// Initial cleanup on startup
		if count, err := sessionService.PurgeExpired(ctx); err != nil {
			log.Warn("Initial session cleanup failed", "error", err)
		} else if count > 0 {
			log.Info("Initial session cleanup completed", "deleted", count)
		}

		for {
			select {
			case <-ticker.C:
				if count, err := sessionService.PurgeExpired(ctx); err != nil {
					log.Warn("Session cleanup failed", "error", err)
				} else if count > 0 {
					log.Info("Session cleanup completed", "deleted", count)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session cleanup job started")

	return &SessionCleanupJob{cancel: cancel}, nil
}
