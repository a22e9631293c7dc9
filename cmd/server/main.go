// Package main provides the entry point for the lifelog server, a personal
// life-events diary API backed by a document store for events and a blob
// store for images.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/lifelog-api/lifelog/internal/api"
	"github.com/lifelog-api/lifelog/internal/blob"
	"github.com/lifelog-api/lifelog/internal/config"
	"github.com/lifelog-api/lifelog/internal/logging"
	"github.com/lifelog-api/lifelog/internal/store"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// main parses flags, loads configuration, constructs the stores and runs the
// HTTP server until interrupted.
func main() {
	fmt.Printf("lifelog Version: %s, Commit: %s, BuiltAt: %s\n", Version, Commit, BuildDate)

	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// Optional .env file for local development; real env vars win either way.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level := cfg.Log.Level
	if cfg.Debug {
		level = "debug"
	}
	logging.SetupBaseLogger(logging.Options{
		File:       cfg.Log.File,
		Level:      level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events, blobs, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize stores: %v", err)
	}
	defer cleanup()

	srv := api.NewServer(cfg, events, blobs)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err = <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err = srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("shutdown error: %v", err)
			os.Exit(1)
		}
	}
}

// buildStores constructs the event and blob stores selected by configuration.
// With no Mongo URI both fall back to the in-memory backends, which is enough
// for local experimentation.
func buildStores(ctx context.Context, cfg *config.Config) (store.EventStore, blob.Store, func(), error) {
	cleanup := func() {}

	if cfg.Mongo.URI == "" {
		log.Warn("no mongo uri configured, using in-memory stores; data will not survive a restart")
		return store.NewMemoryEventStore(), blob.NewMemoryStore(), cleanup, nil
	}

	client, err := store.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		return nil, nil, cleanup, err
	}
	cleanup = func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}
	db := client.Database(cfg.Mongo.Database)
	events := store.NewMongoEventStore(db.Collection(cfg.Mongo.Collection))
	log.WithFields(log.Fields{
		"database":   cfg.Mongo.Database,
		"collection": cfg.Mongo.Collection,
	}).Info("connected to event store")

	var blobs blob.Store
	switch cfg.Blob.Backend {
	case "minio":
		m := cfg.Blob.Minio
		blobs, err = blob.NewMinioStore(ctx, m.Endpoint, m.AccessKey, m.SecretKey, m.Bucket, m.UseSSL)
		if err != nil {
			cleanup()
			return nil, nil, func() {}, err
		}
	case "memory":
		blobs = blob.NewMemoryStore()
	default:
		blobs, err = blob.NewGridFSStore(db)
		if err != nil {
			cleanup()
			return nil, nil, func() {}, err
		}
	}
	log.WithField("backend", cfg.Blob.Backend).Info("blob store ready")

	return events, blobs, cleanup, nil
}
