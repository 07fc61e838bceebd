package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite" // driver: sqlite

	"github.com/kuesten-code/Werkbank-sub000/internal/common"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// pgxQuerier is the subset of *pgxpool.Pool the Postgres stores need.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Open creates a pgx pool and makes sure the intake tables exist.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("connecting to database", "driver", DriverPostgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database dsn", "error", err)
		return nil, err
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "werkbank-intake"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.StatementTimeout.Milliseconds())
	}

	dialCtx, cancel := common.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		logger.Error("failed to create schema", "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database")
	return pool, nil
}

// OpenSQLite opens an embedded database file and makes sure the intake tables exist.
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*sql.DB, error) {
	logger.Info("connecting to database", "driver", DriverSQLite, "dsn", dsn)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a single writer avoids SQLITE_BUSY on concurrent upserts
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if err := EnsureSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		logger.Error("failed to create schema", "error", err)
		return nil, err
	}
	logger.Info("successfully connected to database")
	return db, nil
}

// EnsureSchema creates the Postgres tables when missing.
func EnsureSchema(ctx context.Context, q pgxQuerier) error {
	for _, stmt := range schemaPostgres {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// EnsureSQLiteSchema creates the SQLite tables when missing.
func EnsureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQLite); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Pinger is satisfied by *pgxpool.Pool and by SQLPinger.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SQLPinger adapts *sql.DB to Pinger.
type SQLPinger struct{ DB *sql.DB }

func (p SQLPinger) Ping(ctx context.Context) error { return p.DB.PingContext(ctx) }

// HealthCheck pings the database to catch DSN issues early.
func HealthCheck(ctx context.Context, p Pinger, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("pinging database")
	ctx, cancel := common.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		return err
	}
	logger.Debug("database ping successful")
	return nil
}

// Handle bundles whichever backend the configuration selected.
type Handle struct {
	Driver string
	Pool   *pgxpool.Pool
	SQL    *sql.DB
	logger *slog.Logger
}

// Connect opens the configured backend.
func Connect(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*Handle, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case DriverPostgres:
		pool, err := Open(ctx, Config{
			DSN:              cfg.DSN,
			MaxConns:         cfg.MaxConns,
			MinConns:         cfg.MinConns,
			MaxConnLifetime:  cfg.MaxConnLifetime,
			MaxConnIdleTime:  cfg.MaxConnIdleTime,
			DialTimeout:      cfg.DialTimeout,
			StatementTimeout: cfg.StatementTimeout,
		}, logger)
		if err != nil {
			return nil, common.DatabaseError("connect", err)
		}
		return &Handle{Driver: DriverPostgres, Pool: pool, logger: logger}, nil
	case DriverSQLite, "":
		db, err := OpenSQLite(ctx, cfg.DSN, logger)
		if err != nil {
			return nil, common.DatabaseError("connect", err)
		}
		return &Handle{Driver: DriverSQLite, SQL: db, logger: logger}, nil
	default:
		return nil, common.ConfigError("unsupported database driver %q", cfg.Driver)
	}
}

// Patterns returns the pattern store of the selected backend.
func (h *Handle) Patterns() PatternStore {
	if h.Pool != nil {
		return NewPgPatternStore(h.Pool, h.logger)
	}
	return NewSQLPatternStore(h.SQL, h.logger)
}

// Suppliers returns the supplier directory of the selected backend.
func (h *Handle) Suppliers() SupplierDirectory {
	if h.Pool != nil {
		return NewPgSupplierDirectory(h.Pool, h.logger)
	}
	return NewSQLSupplierDirectory(h.SQL, h.logger)
}

func (h *Handle) Pinger() Pinger {
	if h.Pool != nil {
		return h.Pool
	}
	return SQLPinger{DB: h.SQL}
}

// Close closes the database connections gracefully
func (h *Handle) Close() {
	h.logger.Info("closing database connections")
	if h.Pool != nil {
		h.Pool.Close()
	}
	if h.SQL != nil {
		if err := h.SQL.Close(); err != nil {
			h.logger.Error("failed to close sqlite database", "error", err)
		}
	}
	h.logger.Info("database connections closed")
}
