package storage

import (
	"context"
	"time"
)

// Backend is a durable key-value capability. SetMany and Delete apply all of their
// keys or none of them, so readers never see half of a write.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Config describes the backend selection parameters.
type Config struct {
	Driver string
	File   *FileConfig
	Redis  *RedisConfig
	SQLite *SQLiteConfig
}

// FileConfig points at the JSON document holding the entries.
type FileConfig struct {
	Path string
}

// RedisConfig captures connection options.
type RedisConfig struct {
	Addr        string
	Username    string
	Password    string
	DB          int
	Prefix      string
	DialTimeout time.Duration
}

// SQLiteConfig provides the database location.
type SQLiteConfig struct {
	DSN string
}
