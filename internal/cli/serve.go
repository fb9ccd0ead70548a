package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/existflow/secureview/internal/blobstore"
	"github.com/existflow/secureview/internal/db"
	"github.com/existflow/secureview/internal/logger"
	"github.com/existflow/secureview/server"
)

// shutdownTimeout bounds graceful shutdown
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web viewer and issuance API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config)")
	serveCmd.Flags().String("base-url", "", "Origin share links are built on")
	serveCmd.Flags().String("database-url", "", "SQLite path or postgres:// URL")
}

func runServe(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.Addr = v
	}
	if v, _ := cmd.Flags().GetString("base-url"); v != "" {
		cfg.BaseURL = v
	}
	if v, _ := cmd.Flags().GetString("database-url"); v != "" {
		cfg.DatabaseURL = v
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx)
}

// serve runs the server until ctx is cancelled
func serve(ctx context.Context) error {
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to open database", logger.F("error", err))
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
		logger.Info("Database closed")
	}()

	store, err := blobstore.NewCachedStore(blobstore.NewSQLStore(database), blobstore.CacheConfig{
		Size: cfg.CacheSizeMB,
		TTL:  cfg.CacheTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to create blob cache: %w", err)
	}
	defer store.Close()

	srv, err := server.New(store, server.Options{
		BaseURL:      cfg.BaseURL,
		AdminKeyHash: cfg.AdminKeyHash,
		Console:      cfg.LogConsole,
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting",
			logger.F("addr", cfg.Addr),
			logger.F("base_url", srv.Issuer().BaseURL()),
			logger.F("admin_key", cfg.AdminKeyHash != ""))
		fmt.Printf("SecureView listening on %s (links on %s)\n", cfg.Addr, srv.Issuer().BaseURL())

		if err := srv.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Server shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
