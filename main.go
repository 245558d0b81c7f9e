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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"neuroclinic-server/internal/config"
	"neuroclinic-server/internal/logger"
	"neuroclinic-server/internal/metrics"
	"neuroclinic-server/internal/middleware"
	"neuroclinic-server/internal/models"
	"neuroclinic-server/internal/repository"
	"neuroclinic-server/internal/routes"
	"neuroclinic-server/internal/services"
	"neuroclinic-server/internal/tracing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	root := &cobra.Command{
		Use:           "neuroclinic-server",
		Short:         "Neurology clinic API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env is fine, the environment may already be set.
			_ = godotenv.Load()
		},
	}
	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func modelConfig(cfg *config.Config) models.DatabaseConfig {
	return models.DatabaseConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		Debug:  !cfg.IsProduction(),
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			log, err := logger.New(cfg.Log)
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			defer log.Sync() //nolint:errcheck

			db, err := models.Connect(modelConfig(cfg))
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			if err := models.Migrate(db); err != nil {
				return fmt.Errorf("migrating: %w", err)
			}
			log.Info("database schema up to date", zap.String("driver", cfg.Database.Driver))
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var autoMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), autoMigrate)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", true, "migrate the schema before serving")
	return cmd
}

func serve(ctx context.Context, autoMigrate bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	tp, err := tracing.Init(ctx, cfg.ServiceName, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(sctx); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector("neuroclinic")
	}

	open := models.Connect
	if autoMigrate {
		open = models.InitDB
	}
	db, err := open(modelConfig(cfg))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	svc := services.New(services.Deps{
		Store:    repository.NewGormStore(db),
		Log:      log,
		Metrics:  collector,
		Location: cfg.Location(),
	}, cfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.SecurityHeaders(cfg.IsProduction()),
		middleware.Metrics(collector),
	)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{middleware.HeaderRequestID}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, svc, cfg, collector)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
