package storage

import (
	"fmt"

	apperrors "github.com/far7tna/portal/internal/errors"
)

// Driver identifiers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// New creates a backend based on the provided configuration.
func New(cfg Config) (Backend, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverMemory
	}

	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		if cfg.File == nil || cfg.File.Path == "" {
			return nil, fmt.Errorf("file driver requires a path")
		}
		return NewFile(cfg.File.Path)
	case DriverRedis:
		return NewRedis(cfg.Redis)
	case DriverSQLite:
		if cfg.SQLite == nil || cfg.SQLite.DSN == "" {
			return nil, fmt.Errorf("sqlite driver requires a dsn")
		}
		return NewSQLite(cfg.SQLite.DSN)
	default:
		return nil, apperrors.Wrapf(apperrors.ErrUnsupportedDriver, "storage driver %q", driver)
	}
}
