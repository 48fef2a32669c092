// Package main provides a one-shot metadata enrichment run.
//
// It walks the whole catalog and fills missing MusicBrainz IDs and cover art
// URLs, then prints a summary. Records that already have both fields are
// skipped, so the command is safe to run repeatedly.
//
// Usage:
//
//	go run ./cmd/enrich
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/juzzt/juzzt-server/internal/config"
	"github.com/juzzt/juzzt-server/internal/logger"
	"github.com/juzzt/juzzt-server/internal/media/images"
	"github.com/juzzt/juzzt-server/internal/metadata/coverart"
	"github.com/juzzt/juzzt-server/internal/metadata/musicbrainz"
	"github.com/juzzt/juzzt-server/internal/service"
	"github.com/juzzt/juzzt-server/internal/store/cache"
	"github.com/juzzt/juzzt-server/internal/store/sqlite"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	s, err := sqlite.Open(cfg.Database.Path, appLog.Logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	metaCache, err := cache.Open(cfg.Database.CachePath, appLog.Logger)
	if err != nil {
		log.Fatalf("Failed to open metadata cache: %v", err)
	}
	defer metaCache.Close()

	mbClient := musicbrainz.NewClient(appLog.Logger, musicbrainz.Options{
		BaseURL:           cfg.MusicBrainz.BaseURL,
		UserAgent:         cfg.MusicBrainz.UserAgent,
		RequestsPerSecond: cfg.MusicBrainz.RequestsPerSecond,
	})
	defer mbClient.Close()

	coverClient := coverart.NewClient(appLog.Logger, cfg.CoverArt.BaseURL)

	storage, err := images.NewStorage(cfg.ImageHost.LocalPath)
	if err != nil {
		log.Fatalf("Failed to open image storage: %v", err)
	}
	uploader := images.NewUploader(appLog.Logger, storage, cfg.ImageHost.UploadURL, cfg.ImageHost.APIKey)

	enricher := service.NewEnrichmentService(
		s,
		mbClient,
		coverClient,
		metaCache,
		uploader,
		cfg.Enrichment.DropPath,
		appLog.Logger,
	)

	// Ctrl-C stops the run between records; completed work is kept.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Println("Starting enrichment run...")

	summary, err := enricher.EnrichAll(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Enrichment run failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Enrichment complete: %d processed, %d enriched, %d failed\n",
		summary.Processed, summary.Enriched, summary.Failed)
}
