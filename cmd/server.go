package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/frahmantamala/sensor-monitoring/internal"
	"github.com/frahmantamala/sensor-monitoring/internal/devserver"
	"github.com/frahmantamala/sensor-monitoring/pkg/logger"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the development gateway server",
	Long:  `Start the REST backend the dashboard client talks to during development.`,
	Run: func(cmd *cobra.Command, args []string) {
		startDevServer()
	},
}

type serverDependencies struct {
	Config  *internal.Config
	GormDB  *gorm.DB
	SqlxDB  *sqlx.DB
	Handler http.Handler
	Logger  *slog.Logger
}

func startDevServer() {
	deps, err := initializeServerDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting development gateway", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Handler,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.SqlxDB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeServerDependencies() (*serverDependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.L()

	gormDB, sqlxDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	store := devserver.NewStore(gormDB)
	if !config.Database.IsPostgres() {
		// sqlite quick-start runs without the SQL migrations
		if err := store.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
	}

	// Broken docs should surface at startup, not when someone opens /swagger.
	if _, err := devserver.ValidateOpenAPISpec(context.Background(), config.Server.OpenAPIPath); err != nil {
		lg.Warn("OpenAPI spec unavailable, docs endpoints degraded", "error", err)
	}

	readings := devserver.NewReadingStore(sqlxDB)
	handler := devserver.NewHandler(store, readings, lg)
	router := devserver.NewRouter(handler, config.Server, lg)

	return &serverDependencies{
		Config:  config,
		GormDB:  gormDB,
		SqlxDB:  sqlxDB,
		Handler: router,
		Logger:  lg,
	}, nil
}

// initDB opens the database once through GORM and hands the same connection
// pool to sqlx for the raw time-series queries.
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, *sqlx.DB, error) {
	var dialector gorm.Dialector
	driverName := "sqlite3"
	if cfg.IsPostgres() {
		dialector = postgres.Open(cfg.Source)
		driverName = "pgx"
	} else {
		dialector = sqlite.Open(cfg.Source)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access db pool: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return gormDB, sqlx.NewDb(sqlDB, driverName), nil
}
