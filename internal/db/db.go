// Package db provides a wrapper around the database
package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connection pool settings. The pool is created once at startup and
// shared by every operation for the lifetime of the process.
const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
)

// DB is the database wrapper
type DB struct {
	conn *gorm.DB
}

// NewDB initializes the process-wide database connection pool
func NewDB(postgresURL string) (*DB, error) {
	conn, err := gorm.Open(postgres.Open(postgresURL), &gorm.Config{
		// Disable foreign key constraints during AutoMigrate
		// We handle foreign keys explicitly in our migration files
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	return &DB{conn: conn}, nil
}

// Transaction wraps a database transaction (exposes GORM's transaction method)
func (db *DB) Transaction(fn func(tx *gorm.DB) error) error {
	return db.conn.Transaction(fn)
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database connection
func (db *DB) Ping() error {
	sqlDB, err := db.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
