// Command server exposes harvested channels, videos, and runs over a
// read-only HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-harvester/internal/config"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db/repository"
	"github.com/ad-tracker/youtube-channel-harvester/internal/handler"
	"github.com/ad-tracker/youtube-channel-harvester/internal/metrics"
	"github.com/ad-tracker/youtube-channel-harvester/internal/middleware"
	"github.com/ad-tracker/youtube-channel-harvester/pkg/logger"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Database environment variables are not set.", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Database.DB())
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close(pool)

	log.Info("Database connection established", zap.Int32("max_conns", pool.Config().MaxConns))

	channelRepo := repository.NewChannelRepository(pool)
	videoRepo := repository.NewVideoRepository(pool)
	runRepo := repository.NewHarvestRunRepository(pool)

	var mw []gin.HandlerFunc
	mw = append(mw, middleware.RequestLogger(log))
	if keys := cfg.Server.Keys(); len(keys) > 0 {
		mw = append(mw, middleware.NewAPIKeyAuth(keys, log).Handler())
	} else {
		log.Warn("No API keys configured (API_KEYS), the read API is unauthenticated")
	}

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.Handlers{
		Health:   handler.NewHealthHandler(pool),
		Channels: handler.NewChannelHandler(channelRepo, videoRepo, log),
		Videos:   handler.NewVideoHandler(videoRepo, log),
		Runs:     handler.NewRunHandler(runRepo, log),
	}, metrics.NewHTTP(), mw...)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.Int("port", cfg.Server.Port))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", zap.Error(err))
			os.Exit(1)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error("Graceful shutdown failed", zap.Error(err))
			if err := server.Close(); err != nil {
				log.Error("Failed to close server", zap.Error(err))
			}
			os.Exit(1)
		}

		log.Info("Server stopped gracefully")
	}
}
