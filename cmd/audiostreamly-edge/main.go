package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"audiostreamly-edge/internal/config"
	"audiostreamly-edge/internal/server"
	"audiostreamly-edge/internal/store"
	"audiostreamly-edge/internal/upload"
)

func main() {
	logger := log.New(os.Stdout, "audiostreamly-edge ", log.LstdFlags|log.Lmsgprefix)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Printf("skipping .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load configuration: %v", err)
	}

	metadataStore := store.New(cfg.StoreEndpoint)
	namer := upload.NewNamer(cfg.BucketEndpoint, cfg.CDNBase, cfg.UniqueUploadKeys)

	handler := server.New(metadataStore, namer, server.Options{FeedCacheMaxAge: cfg.FeedCacheMaxAge}, logger)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("graceful shutdown error: %v", err)
		}
	}()

	logger.Printf("listening on %s (metadata store: %s)", cfg.ListenAddr, cfg.StoreEndpoint)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("http server error: %v", err)
	}
	logger.Println("shutdown complete")
}
