package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Postgres driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store holds the database handle and provides access to repositories.
type Store struct {
	db      *sql.DB
	drv     *entsql.Driver
	dialect string
	seq     *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs auto-migration.
func Open(dsn string) (*Store, error) {
	return OpenDriver(context.Background(), DriverSQLite, dsn)
}

// OpenDriver opens a Store for the named driver and migrates the schema.
func OpenDriver(ctx context.Context, driver, dsn string) (*Store, error) {
	var (
		db   *sql.DB
		name string
		err  error
	)
	switch driver {
	case DriverSQLite, "":
		name = dialect.SQLite
		db, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		// One connection keeps pragmas and in-memory databases consistent.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	case DriverPostgres:
		name = dialect.Postgres
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	drv := entsql.OpenDB(name, db)
	if err := migrate(ctx, drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(ctx, db, name)
	if err != nil {
		drv.Close()
		return nil, err
	}

	return &Store{db: db, drv: drv, dialect: name, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL dialect name of the open database.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// Items returns an ItemRepo backed by this store.
func (s *Store) Items() ItemRepo {
	return &itemRepo{db: s.db, b: entsql.Dialect(s.dialect), seq: s.seq}
}

// Sessions returns a SessionRepo backed by this store.
func (s *Store) Sessions() SessionRepo {
	return &sessionRepo{db: s.db, b: entsql.Dialect(s.dialect)}
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. STUDYLOOP_DB environment variable
// 2. $XDG_DATA_HOME/studyloop/studyloop.db
// 3. ~/.local/share/studyloop/studyloop.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("STUDYLOOP_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "studyloop", "studyloop.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
