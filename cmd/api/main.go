// Package main is the entry point for the Wochenbericht API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/mhaas/wochenbericht/backend/internal/backend"
	"github.com/mhaas/wochenbericht/backend/internal/config"
	"github.com/mhaas/wochenbericht/backend/internal/handler"
	"github.com/mhaas/wochenbericht/backend/internal/middleware"
	"github.com/mhaas/wochenbericht/backend/internal/repo"
	"github.com/mhaas/wochenbericht/backend/internal/service"
	"github.com/mhaas/wochenbericht/backend/internal/storage"
	"github.com/mhaas/wochenbericht/backend/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// --- Export backend ---------------------------------------------------
	// The backend is selected exactly once at startup; a request never
	// switches backends.
	renderer, kind, err := backend.FromConfig(cfg)
	if err != nil {
		slog.Error("failed to configure export backend", "error", err)
		os.Exit(1)
	}
	slog.Info("export backend selected", "backend", string(kind))

	if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
		slog.Error("failed to create export directory", "dir", cfg.ExportDir, "error", err)
		os.Exit(1)
	}
	store := storage.NewDiskStore(cfg.ExportDir, cfg.PublicBaseURL)

	// --- Services ---------------------------------------------------------
	exportSvc := service.NewExportService(
		repo.NewEntryRepo(pool),
		repo.NewProfileRepo(pool),
		repo.NewVehicleRepo(pool),
		service.ExportOptions{
			Renderer: renderer,
			Kind:     kind,
			Store:    store,
			Logger:   logger,
			MinYear:  cfg.MinYear,
			MaxYear:  cfg.MaxYear,
		},
	)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID → RealIP → Logger → Recoverer → CORS →
	// body size limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Mount("/", handler.NewServer(exportSvc).Routes())

	// Serve stored artifacts from the export directory.
	r.Handle("/exports/*", http.StripPrefix("/exports/",
		http.FileServer(http.Dir(cfg.ExportDir))))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// The write timeout leaves room for a slow export worker round-trip.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// runMigrations applies all embedded migrations. goose needs database/sql,
// so a separate connection is opened through the pgx stdlib driver.
func runMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(context.Background())
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("migration applied", "source", res.Source.Path)
	}
	return nil
}
