// Package db opens the embedded libsql analysis-history database and
// keeps its schema current with goose migrations.
package db

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	_ "github.com/tursodatabase/go-libsql"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Connect opens the history database named by dsn, creating the file and
// its directory on first use, and migrates the schema. The dsn is a
// libsql file DSN ("file:name.db"); a bare path works too. Relative
// database files land in dataDir when it is set.
func Connect(dsn, dataDir string, logger zerolog.Logger) (*sql.DB, error) {
	path := databasePath(dsn, dataDir)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create database directory %s: %w", dir, err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info().Str("path", path).Msg("history database not found, creating a new one")
		file, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("could not create db at path %s: %w", path, err)
		}
		file.Close()
	}

	// Embedded mode with the pragmas tuned for a small local database.
	connDSN := fmt.Sprintf("file:%s?_foreign_keys=1&_journal_mode=WAL&_synchronous=NORMAL&_cache_size=-64000&_temp_store=memory", path)

	handle, err := sql.Open("libsql", connDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open libsql connection: %w", err)
	}

	// One writer at a time keeps libsql away from SQLITE_BUSY.
	handle.SetMaxOpenConns(1)
	handle.SetConnMaxIdleTime(5 * time.Minute)

	if err := Migrate(handle); err != nil {
		handle.Close()
		return nil, err
	}

	logger.Debug().Str("path", path).Msg("history database ready")
	return handle, nil
}

// Migrate applies all pending schema migrations from the embedded set. It
// is exposed for callers that open their own connection, such as tests
// against an in-memory database.
func Migrate(handle *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(handle, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// databasePath resolves a configured DSN to the database file path.
func databasePath(dsn, dataDir string) string {
	path := strings.TrimPrefix(strings.TrimSpace(dsn), "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		path = "vgc-analyzer.db"
	}
	if !filepath.IsAbs(path) && dataDir != "" {
		path = filepath.Join(os.ExpandEnv(dataDir), path)
	}
	return path
}
