package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/lodge-manager/internal/persistence"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so TEXT columns sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Config holds SQLite connection settings.
type Config struct {
	// Path is the database file, or ":memory:".
	Path string

	BusyTimeout     time.Duration
	JournalMode     string
	Synchronous     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns the settings used by the server.
func DefaultConfig(path string) Config {
	return Config{
		Path:            path,
		BusyTimeout:     30 * time.Second,
		JournalMode:     "WAL",
		Synchronous:     "NORMAL",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// TempFileTestConfig returns settings tuned for tests running against a temporary file.
func TempFileTestConfig(path string) Config {
	return Config{
		Path:            path,
		BusyTimeout:     5 * time.Second,
		JournalMode:     "MEMORY",
		Synchronous:     "OFF",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}
}

// Validate checks the configuration before a connection is opened.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return errors.New("sqlite path cannot be empty")
	}
	if c.BusyTimeout < 0 {
		return errors.New("busy timeout cannot be negative")
	}
	switch c.JournalMode {
	case "", "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "WAL", "OFF":
	default:
		return fmt.Errorf("invalid journal mode: %s", c.JournalMode)
	}
	switch c.Synchronous {
	case "", "OFF", "NORMAL", "FULL", "EXTRA":
	default:
		return fmt.Errorf("invalid synchronous mode: %s", c.Synchronous)
	}
	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 {
		return errors.New("connection limits cannot be negative")
	}
	return nil
}

// DSN renders the modernc.org/sqlite connection string. Pragmas are applied to
// every pooled connection, which keeps foreign keys enforced on all of them.
func (c Config) DSN() string {
	pragmas := []string{
		"_pragma=foreign_keys(1)",
		fmt.Sprintf("_pragma=busy_timeout(%d)", c.BusyTimeout.Milliseconds()),
	}
	if c.JournalMode != "" {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=journal_mode(%s)", c.JournalMode))
	}
	if c.Synchronous != "" {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=synchronous(%s)", c.Synchronous))
	}
	return c.Path + "?" + strings.Join(pragmas, "&")
}

// ConnectionPool manages SQLite database connections with transaction support.
type ConnectionPool struct {
	db     *sql.DB
	config Config
}

// NewConnectionPool opens and pings a SQLite database.
func NewConnectionPool(ctx context.Context, config Config) (*ConnectionPool, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sqlite configuration: %w", err)
	}

	if config.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(config.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	maxOpen := config.MaxOpenConns
	if config.Path == ":memory:" {
		// each connection would otherwise see its own empty database
		maxOpen = 1
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	return &ConnectionPool{db: db, config: config}, nil
}

// DB returns the underlying database handle.
func (cp *ConnectionPool) DB() *sql.DB {
	return cp.db
}

// Close closes the connection pool.
func (cp *ConnectionPool) Close() error {
	if cp.db != nil {
		return cp.db.Close()
	}
	return nil
}

// Ping tests the database connection.
func (cp *ConnectionPool) Ping(ctx context.Context) error {
	return cp.db.PingContext(ctx)
}

// WithTransaction runs fn inside a transaction. It commits when fn returns nil
// and rolls back otherwise, including on panic.
func (cp *ConnectionPool) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := cp.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// mapError translates driver errors into persistence sentinels. The driver only
// exposes constraint failures through the message text.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrForeignKey, err)
	case strings.Contains(msg, "CHECK constraint failed"),
		strings.Contains(msg, "NOT NULL constraint failed"),
		strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	}
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(column, value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", column, err)
	}
	return t, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
