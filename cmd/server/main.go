package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"restoanalytics/analytics"
	"restoanalytics/catalog"
	"restoanalytics/config"
	"restoanalytics/database"
	"restoanalytics/handlers"
	"restoanalytics/metrics"
	"restoanalytics/worker"
)

// main loads configuration, opens the database, starts the catalog worker
// and serves the HTTP API until interrupted.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := handlers.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, logger, cfg.DatabaseURL, database.PoolOptions{MaxOpenConns: cfg.MaxOpenConns})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	store := database.NewPostgresStore(db)
	m := metrics.New()
	holder := &catalog.Holder{}

	go worker.NewCatalogWorker(logger, store, holder, m, cfg.CatalogInterval).Run(ctx)

	analyzer := analytics.New(logger, store, m, analytics.Options{
		ClusterMaxZoom:   &cfg.ClusterMaxZoom,
		ClusterLimit:     cfg.ClusterLimit,
		DefaultPageLimit: cfg.DefaultPageLimit,
		MaxPageLimit:     cfg.MaxPageLimit,
	})

	mux := handlers.NewMux(handlers.Deps{
		Log:            logger,
		Store:          store,
		Analyzer:       analyzer,
		Catalog:        holder,
		Metrics:        m,
		RequestTimeout: cfg.RequestTimeout,
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})
	handler := c.Handler(handlers.AccessLog(logger, m)(mux))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info().Msg("shutdown complete")
}
