// Package database opens the user store and applies its schema migrations.
package database

import (
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// PoolConfig tunes the connection pool of a PostgreSQL database.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPool mirrors the pool settings used by the server.
var DefaultPool = PoolConfig{
	MaxOpenConns:    25,
	MaxIdleConns:    5,
	ConnMaxLifetime: 5 * time.Minute,
}

// Open connects to the database identified by driver and dsn.
func Open(driver, dsn string, pool PoolConfig) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		return db, nil
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	return db, nil
}

// Migrate applies every pending migration for the given driver.
// It is a no-op when the schema is already current.
func Migrate(db *sqlx.DB, driver string) error {
	var (
		target migratedb.Driver
		err    error
	)
	switch driver {
	case DriverPostgres:
		target, err = migratepgx.WithInstance(db.DB, &migratepgx.Config{})
	case DriverSQLite:
		target, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return fmt.Errorf("create %s migration driver: %w", driver, err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+dialect(driver))
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	// The migrator is not closed: closing it would close the shared *sql.DB.
	m, err := migrate.NewWithInstance("iofs", source, driver, target)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func dialect(driver string) string {
	if driver == DriverSQLite {
		return "sqlite"
	}
	return "postgres"
}
