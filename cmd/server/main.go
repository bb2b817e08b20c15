package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"joyeriapos/internal/config"
	"joyeriapos/internal/infra"
	"joyeriapos/internal/repository"
	"joyeriapos/internal/router"
	"joyeriapos/internal/service"
	"joyeriapos/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in prod
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if cfg.JWTSecret == "" {
		// tokens stop validating after a restart; fine for local use
		cfg.JWTSecret = uuid.NewString()
		log.Warn().Msg("JWT_SECRET not set, using a random per-process secret")
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
	}

	docs, err := repository.OpenDocumentStore(cfg, rdb)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open document store")
	}
	store, err := repository.NewStore(context.Background(), docs, cfg.PersistTimeout())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load store")
	}
	log.Info().Str("driver", cfg.StoreDriver).Msg("store loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Background jobs need Redis. Without it sales still work and tickets are
	// rendered on demand by GET /v1/ventas/:id/ticket.
	var jobs service.Encolador
	var pool *worker.Pool
	if rdb != nil {
		dispatcher := worker.NewDispatcher(rdb)
		jobs = dispatcher

		mailer := infra.NewMailer(cfg)
		docsSvc := service.NewDocumentoService(store, store, store, cfg.TicketStoragePath, cfg.NombreNegocio)
		pool = worker.NewPool(rdb, cfg.WorkerPoolSize, map[string]worker.Processor{
			worker.QueueTickets: worker.NewTicketWorker(docsSvc, mailer, dispatcher, cfg.NombreNegocio),
			worker.QueueEmail:   worker.NewEmailWorker(mailer),
			worker.QueueCierres: worker.NewCierreWorker(docsSvc),
		})
		pool.Start(ctx)
		worker.StartRetryCron(ctx, rdb)
	} else {
		log.Warn().Msg("REDIS_URL not set, background jobs disabled")
	}

	r := router.New(cfg, store, rdb, jobs)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("%s backend listening on :%d", cfg.NombreNegocio, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	if pool != nil {
		pool.Wait()
	}
	log.Info().Msg("server exited")
}
