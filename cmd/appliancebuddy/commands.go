package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/spf13/cobra"

	"appliance-buddy-backend/config"
	"appliance-buddy-backend/internal/api"
	"appliance-buddy-backend/internal/db"
	"appliance-buddy-backend/internal/notification"
	"appliance-buddy-backend/internal/seed"
	"appliance-buddy-backend/internal/service"
	"appliance-buddy-backend/internal/store"
)

func loadConfig(cmd *cobra.Command, logger *log.Logger) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}
	logger.Printf("configuration loaded from %s", path)
	return cfg, nil
}

// openStore connects and migrates. The returned close func releases the pool.
func openStore(cfg *config.Config, logger *log.Logger) (store.Store, func(), error) {
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Printf("database initialized (%s)", db.DriverName(cfg.Database.DSN))

	closeDB := func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return store.NewGormStore(gormDB), closeDB, nil
}

// startNotifier returns a running worker pool, or nil when VAPID keys are
// missing. Callers Close the pool to drain queued notifications.
func startNotifier(ctx context.Context, cfg *config.Config, s store.Store, logger *log.Logger) (*notification.WorkerPool, *webpush.Options) {
	if !cfg.Push.Enabled() {
		logger.Println("VAPID keys not configured; push notifications disabled")
		return nil, nil
	}
	opts := &webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}
	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, s, opts)
	pool.Start(ctx)
	return pool, opts
}

func serveCmd(logger *log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, logger)
			if err != nil {
				return err
			}
			inMemory, _ := cmd.Flags().GetBool("memory")

			var appStore store.Store
			databaseType := "memory"
			if inMemory {
				mem := store.NewMemoryStore()
				if _, err := seed.Run(cmd.Context(), mem, nil); err != nil {
					return err
				}
				appStore = mem
				logger.Println("using seeded in-memory store; data is lost on exit")
			} else {
				s, closeDB, err := openStore(cfg, logger)
				if err != nil {
					return err
				}
				defer closeDB()
				appStore = s
				databaseType = db.DriverName(cfg.Database.DSN)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			pool, webpushOptions := startNotifier(ctx, cfg, appStore, logger)
			var notifier service.Notifier
			if pool != nil {
				notifier = pool
				defer pool.Close()
			}

			router := api.NewRouter(appStore, api.RouterConfig{
				CORSOrigin:      cfg.Server.CORSOrigin,
				RateLimitPerSec: cfg.Server.RateLimitPerSec,
				RateBurst:       cfg.Server.RateBurst,
				CacheTTL:        time.Duration(cfg.Server.CacheTTLSeconds) * time.Second,
				DatabaseType:    databaseType,
				Webpush:         webpushOptions,
				Notifier:        notifier,
			})
			server := &http.Server{
				Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
				Handler: router,
			}

			go func() {
				logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatalf("HTTP server ListenAndServe: %v", err)
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			<-stop
			logger.Println("Shutdown signal received, stopping services...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("HTTP server Shutdown: %w", err)
			}

			logger.Println("Server gracefully stopped")
			return nil
		},
	}
	cmd.Flags().Bool("memory", false, "serve a seeded in-memory store instead of the configured database")
	return cmd
}

func refreshCmd(logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-statuses",
		Short: "Mark past-due Upcoming maintenance tasks as Overdue",
		Long:  "Mark past-due Upcoming maintenance tasks as Overdue and notify push subscribers. Intended to run from cron.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, logger)
			if err != nil {
				return err
			}
			s, closeDB, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer closeDB()

			ctx := cmd.Context()
			var notifier service.Notifier
			pool, _ := startNotifier(ctx, cfg, s, logger)
			if pool != nil {
				notifier = pool
			}

			tasks, err := service.NewMaintenanceService(s, nil, notifier).RefreshOverdueStatuses(ctx, time.Now())
			if pool != nil {
				pool.Close()
			}
			if err != nil {
				return fmt.Errorf("refresh failed after %d updates: %w", len(tasks), err)
			}
			logger.Printf("%d maintenance tasks marked overdue", len(tasks))
			return nil
		},
	}
}

func seedCmd(logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace all data with the sample appliances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, logger)
			if err != nil {
				return err
			}
			s, closeDB, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer closeDB()

			res, err := seed.Run(cmd.Context(), s, nil)
			if err != nil {
				return err
			}
			logger.Printf("seeded %d appliances", res.Appliances)
			return nil
		},
	}
}

func migrateCmd(logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, logger)
			if err != nil {
				return err
			}
			_, closeDB, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			closeDB()
			logger.Println("migrations applied")
			return nil
		},
	}
}
