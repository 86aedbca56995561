package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pznebula/valuator/valuator"
	"github.com/pznebula/valuator/valuator/database"
	"github.com/pznebula/valuator/valuator/logger"
	"github.com/pznebula/valuator/valuator/migration"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting account valuation engine",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldCalibrate := flag.Bool("calibrate", false, "Run a full calibration pass on startup")
	shouldImportLegacy := flag.Bool("import-legacy", false, "Import the legacy MongoDB dataset before starting")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := valuator.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	dbConfig := database.DBConfig{
		Host:         cfg.DB.Host,
		Port:         cfg.DB.Port,
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Database:     cfg.DB.Database,
		PoolSize:     cfg.DB.PoolSize,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxLifetime:  cfg.DB.MaxLifetime,
	}

	db, err := database.New(ctx, dbConfig)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	slog.Info("Initializing database schema...")
	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	app := valuator.New(*cfg, version, commit)
	app.DB = db

	if err := app.SetupServices(); err != nil {
		slog.Error("Failed to set up services",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	if *shouldImportLegacy {
		if err := runLegacyImport(ctx, app, cfg); err != nil {
			slog.Error("Legacy import failed",
				slog.String("type", "db"),
				slog.Any("error", err))
			os.Exit(-1)
		}
	}

	if *shouldCalibrate {
		slog.Info("Performing initial calibration for all games...",
			slog.String("type", "val"))
		if err := app.Scheduler.CalibrateAll(ctx); err != nil {
			slog.Error("Initial calibration failed",
				slog.String("type", "val"),
				slog.Any("error", err))
			os.Exit(-1)
		}
	}

	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	app.Scheduler.Start(schedulerCtx)

	slog.Info("Valuation engine is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down...")
}

func runLegacyImport(ctx context.Context, app *valuator.App, cfg *valuator.Config) error {
	slog.Info("Connecting to legacy MongoDB...",
		slog.String("type", "db"),
		slog.String("database", cfg.Mongo.Database))

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer disconnectCancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			slog.Warn("Failed to disconnect from MongoDB",
				slog.String("type", "db"),
				slog.Any("error", err))
		}
	}()

	migrator := migration.NewMigrator(app.DB.BunDB(), client, cfg.Mongo.Database)
	return migrator.MigrateAll(ctx)
}
