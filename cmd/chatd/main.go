package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/ventspace/vent/internal/blob"
	"github.com/ventspace/vent/internal/crisis"
	"github.com/ventspace/vent/internal/hub"
	"github.com/ventspace/vent/internal/imagegen"
	"github.com/ventspace/vent/internal/kv"
	"github.com/ventspace/vent/internal/server"
	"github.com/ventspace/vent/internal/storage"
	"github.com/ventspace/vent/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		dbConfig := storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		}
		store, err = storage.NewPostgresStorage(dbConfig)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Session store for activity timestamps; degrade to memory if the
	// on-disk store cannot be opened (check-ins then never fire).
	var sessionStore kv.Store
	sessionStore, err = kv.OpenPebbleStore(filepath.Join(cfg.Data.Dir, "session"))
	if err != nil {
		logger.Warn("Failed to open session store, using in-memory fallback", zap.Error(err))
		sessionStore = kv.NewMemoryStore()
	}
	defer sessionStore.Close()

	var blobs blob.Store
	blobs, err = blob.OpenPebbleStore(filepath.Join(cfg.Data.Dir, "blobs"))
	if err != nil {
		logger.Warn("Failed to open blob store, using in-memory fallback", zap.Error(err))
		blobs = blob.NewMemoryStore()
	}
	defer blobs.Close()

	// Crisis flow components
	completer := crisis.NewOpenAICompleter(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Temperature,
		cfg.OpenAI.RequestTimeout,
		logger,
	)
	tracker := crisis.NewActivityTracker(sessionStore, cfg.Crisis.InactivityThresholdDays, logger)
	router := crisis.NewRouter(store, logger)
	sessions := crisis.NewSessionManager(completer, logger)
	images := imagegen.NewOpenAIGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.ImageModel, cfg.OpenAI.RequestTimeout, logger)

	h := hub.New(logger)
	srv := server.New(store, blobs, h, tracker, router, sessions, images, logger)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting server", zap.String("addr", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(sctx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	h.CloseAll()
	h.Wait()
	logger.Info("Shutdown complete")
}
