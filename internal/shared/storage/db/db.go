package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver
	_ "modernc.org/sqlite"             // register sqlite as database/sql driver

	"resume-tailor/internal/shared/telemetry"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"

	defaultPingTimeout = 5 * time.Second
	sqlitePragmas      = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
)

// ErrEmptyDSN is returned when no connection string or file path is given.
var ErrEmptyDSN = errors.New("database location is empty")

// Options controls pool sizing for the application log database.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var openDB = sql.Open

// DefaultCLIOptions suits one short command: a couple of connections, recycled quickly.
func DefaultCLIOptions() Options {
	return Options{
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxIdleTime: 30 * time.Second,
		ConnMaxLifetime: 15 * time.Minute,
		PingTimeout:     defaultPingTimeout,
	}
}

// DefaultMigrateOptions is used by cmd/migrate.
func DefaultMigrateOptions() Options {
	opts := DefaultCLIOptions()
	opts.MaxOpenConns = 1
	opts.ConnMaxIdleTime = 2 * time.Minute
	opts.ConnMaxLifetime = time.Hour
	return opts
}

// OptionsFromEnv applies DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS,
// DB_CONN_MAX_LIFETIME, DB_CONN_MAX_IDLE_TIME and DB_PING_TIMEOUT on top of
// defaults. Unparseable values are logged and ignored.
func OptionsFromEnv(defaults Options) Options {
	opts := defaults
	ints := map[string]*int{
		"DB_MAX_OPEN_CONNS": &opts.MaxOpenConns,
		"DB_MAX_IDLE_CONNS": &opts.MaxIdleConns,
	}
	for key, dst := range ints {
		if raw, ok := lookupEnv(key); ok {
			v, err := strconv.Atoi(raw)
			if err != nil {
				telemetry.Warn("ignoring db env", map[string]any{"key": key, "error": err})
				continue
			}
			*dst = v
		}
	}
	durations := map[string]*time.Duration{
		"DB_CONN_MAX_LIFETIME":  &opts.ConnMaxLifetime,
		"DB_CONN_MAX_IDLE_TIME": &opts.ConnMaxIdleTime,
		"DB_PING_TIMEOUT":       &opts.PingTimeout,
	}
	for key, dst := range durations {
		if raw, ok := lookupEnv(key); ok {
			v, err := time.ParseDuration(raw)
			if err != nil {
				telemetry.Warn("ignoring db env", map[string]any{"key": key, "error": err})
				continue
			}
			*dst = v
		}
	}
	return opts
}

// Connect opens the Postgres application log through pgx and pings it.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("postgres: %w", ErrEmptyDSN)
	}
	return open(ctx, DriverPostgres, databaseURL, opts)
}

// OpenSQLite opens, creating if needed, a SQLite application log file.
// The pool is pinned to one connection.
func OpenSQLite(ctx context.Context, path string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: %w", ErrEmptyDSN)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	opts.MaxOpenConns = 1
	opts.MaxIdleConns = 1
	return open(ctx, DriverSQLite, path+"?"+sqlitePragmas, opts)
}

func open(ctx context.Context, driver, dsn string, opts Options) (*sql.DB, error) {
	handle, err := openDB(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	configurePool(handle, opts)

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := handle.PingContext(pingCtx); err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	stats := handle.Stats()
	telemetry.Info("database opened", map[string]any{
		"driver":   driver,
		"open":     stats.OpenConnections,
		"idle":     stats.Idle,
		"max_open": stats.MaxOpenConnections,
	})
	return handle, nil
}

func configurePool(handle *sql.DB, opts Options) {
	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = DefaultCLIOptions().MaxOpenConns
	}
	maxIdle := opts.MaxIdleConns
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	handle.SetMaxOpenConns(maxOpen)
	handle.SetMaxIdleConns(maxIdle)
	if opts.ConnMaxLifetime > 0 {
		handle.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		handle.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

func lookupEnv(key string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	return raw, raw != ""
}
