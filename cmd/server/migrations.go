package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/studyhub/studyhub-api/internal/config"
	"github.com/studyhub/studyhub-api/internal/redact"
)

// migrationsDir is the repository-relative directory holding goose SQL
// migration files.
const migrationsDir = "migrations"

// migrationTableName is the table goose uses to track applied versions.
const migrationTableName = "schema_migrations"

// slogGooseLogger adapts slog to the logger interface goose expects.
type slogGooseLogger struct{}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...), "component", "goose")
	os.Exit(1)
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...), "component", "goose")
}

// runMigrations executes a goose migration command against the configured
// database. The create command only writes a new SQL file and does not need
// a reachable database.
func runMigrations(cfg *config.Config, command, migrationName string) error {
	log := slog.Default().With("component", "migrations", "command", command)

	goose.SetLogger(&slogGooseLogger{})
	goose.SetTableName(migrationTableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	dir, err := resolveMigrationsDir()
	if err != nil {
		return err
	}
	log.Info("Using migrations directory", "path", dir)

	switch command {
	case "up", "down", "reset", "status", "version":
	case "create":
		if migrationName == "" {
			return fmt.Errorf("migration name is required for 'create' command")
		}
		return goose.Create(nil, dir, migrationName, "sql")
	default:
		return fmt.Errorf(
			"unknown migration command: %s (expected up, down, reset, status, version, or create)",
			command,
		)
	}

	if cfg.Database.URL == "" {
		return fmt.Errorf("database URL is empty: check your configuration")
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Error closing database connection", "error", closeErr)
		}
	}()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Error("Database ping failed", "error", redact.Error(err))
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	start := time.Now()
	switch command {
	case "up":
		err = goose.Up(db, dir)
	case "down":
		err = goose.Down(db, dir)
	case "reset":
		err = goose.Reset(db, dir)
	case "status":
		err = goose.Status(db, dir)
	case "version":
		err = goose.Version(db, dir)
	}
	if err != nil {
		return fmt.Errorf("migration command '%s' failed: %w", command, err)
	}

	log.Info("Migration command executed successfully",
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// resolveMigrationsDir locates the migrations directory relative to the
// working directory, walking upward so the binary also works when started
// from a subdirectory of the repository.
func resolveMigrationsDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to determine working directory: %w", err)
	}

	for dir := cwd; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, migrationsDir)
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			return candidate, nil
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}

	return "", fmt.Errorf("migrations directory %q not found under %s or its parents", migrationsDir, cwd)
}
