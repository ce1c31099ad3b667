package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"hotelhub/internal/adapters/feed"
	"hotelhub/internal/adapters/observability"
	redisad "hotelhub/internal/adapters/redis"
	"hotelhub/internal/app"
	"hotelhub/internal/domain"
	"hotelhub/internal/shared"
	"hotelhub/internal/storage"
)

func main() {
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(cfg.ImportSources) == 0 {
		log.Fatal().Msg("IMPORT_SOURCE is empty; set a comma separated list of files or URLs")
	}
	log.Info().
		Strs("sources", cfg.ImportSources).
		Int("workers", cfg.ImportWorkers).
		Int("rps", cfg.ImportRPS).
		Str("driver", cfg.StoreDriver).
		Msg("importer starting")

	observability.Serve(cfg.MetricsAddr, observability.InitRegistry())

	if err := run(ctx, cfg); err != nil {
		stop()
		log.Fatal().Err(err).Msg("import failed")
	}
}

func run(ctx context.Context, cfg shared.Config) error {
	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// imported writes evict cached hotels the API may be serving
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		cache = rc
	}

	src := feed.New(cfg.ImportSources, cfg.FeedKey, cfg.ImportRPS)
	imp := app.NewImportService(src, app.NewCommandService(store, cache))

	stats, err := imp.Run(ctx, cfg.ImportWorkers)
	if err != nil {
		return err
	}
	log.Info().
		Int64("hotels", stats.Hotels).
		Int64("reviews", stats.Reviews).
		Int64("room_types", stats.RoomTypes).
		Int64("failed", stats.Failed).
		Msg("import completed")
	return nil
}
