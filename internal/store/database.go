package store

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/satonic/satonic-admin/internal/config"
)

// Database represents the console's local store connection
type Database struct {
	db *sqlx.DB
}

// NewDatabase creates a new database connection
func NewDatabase(cfg config.DatabaseConfig) (*Database, error) {
	driver, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	// Connect to the database
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set connection pool settings
	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	// Check the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &Database{db: db}
	if err := database.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return database, nil
}

func dataSource(cfg config.DatabaseConfig) (string, string, error) {
	switch cfg.Driver {
	case "postgres":
		return "postgres", fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name,
		), nil
	case "sqlite3", "":
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		}
		return "sqlite3", path + "?_foreign_keys=on&_busy_timeout=5000", nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// schema is portable between postgres and sqlite
var schema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		token      TEXT NOT NULL,
		subject    TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NULL
	)`,
	`CREATE TABLE IF NOT EXISTS drafts (
		session_id TEXT NOT NULL,
		flow       TEXT NOT NULL,
		scope_id   TEXT NOT NULL,
		payload    TEXT NOT NULL,
		step       INTEGER NOT NULL DEFAULT 1,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (session_id, flow, scope_id)
	)`,
}

// Migrate creates the tables the console needs
func (d *Database) Migrate() error {
	for _, stmt := range schema {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate local store: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// GetDB returns the sqlx.DB instance
func (d *Database) GetDB() *sqlx.DB {
	return d.db
}

// Transaction executes a function within a transaction
func (d *Database) Transaction(fn func(*sqlx.Tx) error) error {
	tx, err := d.db.Beginx()
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // re-throw panic after rollback
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
