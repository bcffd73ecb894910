// Command server runs the watchlist HTTP API.
//
// Configuration comes from the environment (optionally a .env file in dev).
// The storage backend is selected by STORE_DRIVER: "blob" talks to the remote
// object store holding movies.json, "sqlite" keeps the document in a local
// database for development and tests.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/filmlog/go-watchlist-backend/docs"
	"github.com/filmlog/go-watchlist-backend/internal/blob"
	"github.com/filmlog/go-watchlist-backend/internal/config"
	httpapi "github.com/filmlog/go-watchlist-backend/internal/http"
	"github.com/filmlog/go-watchlist-backend/internal/observability"
	"github.com/filmlog/go-watchlist-backend/internal/store"
	"github.com/filmlog/go-watchlist-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

// @title           Watchlist API
// @version         1.0
// @description     Personal movie watchlist: CRUD over a single JSON document.
// @BasePath        /
func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx := context.Background()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		ctxTO, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(ctxTO); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	st, closeStore, err := buildStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store setup failed")
	}
	defer closeStore()

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, st, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("driver", cfg.StoreDriver).
			Str("version", version).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctxTO, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxTO); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// buildStore selects the document store from configuration.
func buildStore(cfg config.Config) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		db, err := store.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		s, err := store.NewSQLiteStore(db, cfg.Blob.Pathname)
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return s, closer, nil
	default: // blob
		base := sysutil.FirstNonEmpty(cfg.Blob.APIURL, blob.DefaultBaseURL)
		c := blob.NewClient(base, cfg.Blob.Token)
		return store.NewBlobStore(c, cfg.Blob.Pathname), func() {}, nil
	}
}
