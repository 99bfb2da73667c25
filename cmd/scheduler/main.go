// Command scheduler procesa las importaciones encoladas y, si SCHEDULER_IMPORT_CRON está
// configurado, encola la importación periódica de SCHEDULER_IMPORT_SOURCE.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/registro-escuelas/internal/application/importer"
	"github.com/jhoicas/registro-escuelas/internal/domain/normalize"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/cache"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/csvio"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/postgres"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/scheduler"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/storage"
	"github.com/jhoicas/registro-escuelas/pkg/config"
	"github.com/jhoicas/registro-escuelas/pkg/logger"
	"github.com/jhoicas/registro-escuelas/pkg/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("queue", cfg.Scheduler.Queue).
		Msg("iniciando scheduler")

	if !cfg.Redis.Enabled() {
		log.Fatal().Msg("REDIS_URL es obligatoria para el scheduler")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB, postgres.PoolOptions{AppName: "registro-scheduler", MaxConns: 4})
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	var svcOpts []importer.Option
	rdb, err := cache.NewClient(ctx, cfg.Redis.URL)
	if err != nil {
		log.Warn().Err(err).Msg("redis no disponible, la caché de reportes no se invalidará")
	} else {
		defer rdb.Close()
		svcOpts = append(svcOpts, importer.WithCache(cache.NewRedisCache(rdb, cfg.Redis.CacheTTL)))
	}

	opener, err := newOpener(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("cliente MinIO")
	}

	svc := importer.NewService(postgres.NewTxRunner(pool), normalize.NewNormalizer(validator.New()), log, svcOpts...)
	handler := scheduler.NewImportHandler(svc, opener, csvio.OptionsFromConfig(cfg.Import), log)

	worker, err := scheduler.NewWorker(cfg.Redis.URL, cfg.Scheduler.Queue, handler, log)
	if err != nil {
		log.Fatal().Err(err).Msg("worker")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return worker.Run(gctx) })

	if cfg.Scheduler.ImportCron != "" {
		periodic, err := scheduler.NewPeriodic(cfg.Redis.URL, cfg.Scheduler.Queue, cfg.Scheduler.ImportCron, cfg.Scheduler.Source, log)
		if err != nil {
			log.Fatal().Err(err).Msg("importación periódica")
		}
		g.Go(func() error { return periodic.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("scheduler finalizado con error")
		os.Exit(1)
	}
	log.Info().Msg("scheduler detenido")
}

func newOpener(cfg config.StorageConfig) (*storage.Opener, error) {
	if !cfg.Enabled() {
		return storage.NewOpener(nil), nil
	}
	client, err := storage.NewMinIOClient(cfg)
	if err != nil {
		return nil, err
	}
	return storage.NewOpener(client), nil
}
