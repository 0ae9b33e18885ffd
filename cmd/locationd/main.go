// Command locationd is the HTTP endpoint drop-off reporters submit to.
//
// @title        Drop-off Location API
// @version      1.0
// @description  Receives drop-off positions reported by couriers.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/99minutos/dropoff-location/internal/api"
	"github.com/99minutos/dropoff-location/internal/core/service"
	mongodb "github.com/99minutos/dropoff-location/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/dropoff-location/internal/infrastructure/db/redis"
	"github.com/99minutos/dropoff-location/internal/pkg/config"
	"github.com/99minutos/dropoff-location/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "locationd",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "locationd",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo unavailable")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()

	repo := mongodb.NewLocationRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	// Deduplication is best effort: run without it when Redis is down.
	var (
		rdb   *goredis.Client
		dedup service.DedupChecker
	)
	rdb, err = redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, deduplication disabled")
	} else {
		defer rdb.Close()
		dedup = redisdb.NewDedupChecker(rdb)
	}

	svc := service.NewLocationService(repo, dedup, logger.Component("location_service"))
	e := api.NewRouter(api.RouterDeps{
		Locations: svc,
		Mongo:     db,
		Redis:     rdb,
		Log:       logger.Component("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("location API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
