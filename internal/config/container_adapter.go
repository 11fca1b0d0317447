package config

import (
	"github.com/garyjia/billed/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			MigrationsDir:   c.Database.MigrationsDir,
		},
		Storage: container.StorageConfig{
			ReceiptsDir:   c.Storage.ReceiptsDir,
			FileURLPrefix: c.Storage.FileURLPrefix,
			MaxUploadSize: c.Storage.MaxUploadSize,
		},
		Store: container.StoreConfig{
			Remote:        c.Store.Mode == StoreModeRemote,
			RemoteBaseURL: c.Remote.BaseURL,
			RemoteTimeout: c.Remote.Timeout,
		},
		Session: container.SessionConfig{
			Redis:         c.Session.Backend == SessionBackendRedis,
			RedisAddr:     c.Session.RedisAddr,
			RedisPassword: c.Session.RedisPassword,
			RedisDB:       c.Session.RedisDB,
			TTL:           c.Session.TTL,
		},
	}
}
