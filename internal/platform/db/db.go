package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Handle wraps DB connectivity. It is constructed once at startup, passed
// into each adapter, and closed on shutdown.
type Handle struct {
	DB *gorm.DB
}

// ConnectPostgres opens and pings a postgres-backed handle.
func ConnectPostgres(dsn string) (*Handle, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}
	return ping(db)
}

// ConnectSqlite opens a file-backed sqlite handle for local development and
// single-node deployments.
func ConnectSqlite(path string) (*Handle, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open gorm sqlite: %w", err)
	}
	return ping(db)
}

func ping(db *gorm.DB) (*Handle, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve sql db handle: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Handle{DB: db}, nil
}

func (h *Handle) Close() error {
	if h == nil || h.DB == nil {
		return nil
	}
	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
