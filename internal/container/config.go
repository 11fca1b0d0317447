// Package container wires the bill store, session store and views together
// and owns their lifecycle.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
type Config struct {
	// Database configuration, unused in remote store mode
	Database DatabaseConfig

	// Receipt storage configuration, unused in remote store mode
	Storage StorageConfig

	// Store selects the local or remote bill store
	Store StoreConfig

	// Session selects the key-value store sessions live in
	Session SessionConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration

	// MigrationsDir overrides the embedded migrations when set
	MigrationsDir string
}

// StorageConfig holds receipt storage settings.
type StorageConfig struct {
	// ReceiptsDir is the base directory of stored receipts
	ReceiptsDir string

	// FileURLPrefix is the public URL prefix receipts are served under
	FileURLPrefix string

	// MaxUploadSize caps a receipt in bytes
	MaxUploadSize int64
}

// StoreConfig holds bill store settings.
type StoreConfig struct {
	// Remote reads and writes bills through another instance's API
	Remote bool

	RemoteBaseURL string
	RemoteTimeout time.Duration
}

// SessionConfig holds session store settings.
type SessionConfig struct {
	// Redis keeps sessions in Redis instead of process memory
	Redis bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// TTL is the lifetime of a Redis entry after its last write
	TTL time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/billed.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Storage: StorageConfig{
			ReceiptsDir:   "data/files",
			FileURLPrefix: "/files/",
			MaxUploadSize: 10 << 20,
		},
		Store: StoreConfig{
			RemoteTimeout: 10 * time.Second,
		},
		Session: SessionConfig{
			RedisAddr: "localhost:6379",
			TTL:       24 * time.Hour,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Store.Remote {
		if c.Store.RemoteBaseURL == "" {
			return fmt.Errorf("store.remote_base_url is required in remote mode")
		}
	} else {
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required")
		}
		if c.Storage.ReceiptsDir == "" {
			return fmt.Errorf("storage.receipts_dir is required")
		}
	}

	if c.Session.Redis && c.Session.RedisAddr == "" {
		return fmt.Errorf("session.redis_addr is required")
	}

	return nil
}
