package main

import (
	"log"
	"os"

	"github.com/existflow/secureview/internal/blobstore"
	"github.com/existflow/secureview/internal/config"
	"github.com/existflow/secureview/internal/db"
	"github.com/existflow/secureview/internal/logger"
	"github.com/existflow/secureview/server"
)

func main() {
	cfg := config.DefaultConfig()

	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}

	if err := logger.Init(logger.Config{
		Level:   logger.ParseLevel(cfg.LogLevel),
		Console: true,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	store, err := blobstore.NewCachedStore(blobstore.NewSQLStore(database), blobstore.CacheConfig{
		Size: cfg.CacheSizeMB,
		TTL:  cfg.CacheTTL,
	})
	if err != nil {
		log.Fatalf("Failed to create blob cache: %v", err)
	}
	defer store.Close()

	srv, err := server.New(store, server.Options{
		BaseURL:      cfg.BaseURL,
		AdminKeyHash: cfg.AdminKeyHash,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	log.Printf("SecureView server starting on %s", cfg.Addr)
	if err := srv.Start(cfg.Addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
