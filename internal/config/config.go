package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Store modes
const (
	StoreModeLocal  = "local"
	StoreModeRemote = "remote"
)

// Session backends
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Store    StoreConfig    `mapstructure:"store"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Session  SessionConfig  `mapstructure:"session"`
	View     ViewConfig     `mapstructure:"view"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"` // empty: embedded migrations
}

// StorageConfig holds receipt storage configuration
type StorageConfig struct {
	ReceiptsDir   string `mapstructure:"receipts_dir"`
	FileURLPrefix string `mapstructure:"file_url_prefix"`
	MaxUploadSize int64  `mapstructure:"max_upload_size"`
}

// StoreConfig selects where bills are read from and written to
type StoreConfig struct {
	Mode string `mapstructure:"mode"` // local or remote
}

// RemoteConfig holds the remote bill store client configuration
type RemoteConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig holds the key-value store sessions are read from
type SessionConfig struct {
	Backend       string        `mapstructure:"backend"` // memory or redis
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
	CookieName    string        `mapstructure:"cookie_name"`
}

// ViewConfig holds page rendering configuration
type ViewConfig struct {
	PreviewWidth int `mapstructure:"preview_width"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from a .env file, the yaml config file and
// environment variables, in increasing precedence. A missing config file
// leaves the defaults in place.
func Load(configPath string) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BILLED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	v.SetDefault("database.path", "data/billed.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrations_dir", "")

	// Storage defaults
	v.SetDefault("storage.receipts_dir", "data/files")
	v.SetDefault("storage.file_url_prefix", "/files/")
	v.SetDefault("storage.max_upload_size", 10<<20)

	// Store defaults
	v.SetDefault("store.mode", StoreModeLocal)
	v.SetDefault("remote.base_url", "")
	v.SetDefault("remote.timeout", 10*time.Second)

	// Session defaults
	v.SetDefault("session.backend", SessionBackendMemory)
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.redis_password", "")
	v.SetDefault("session.redis_db", 0)
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.cookie_name", "billed_sid")

	// View defaults
	v.SetDefault("view.preview_width", 500)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	// Credentials are read from conventional names as well
	_ = v.BindEnv("session.redis_addr", "BILLED_SESSION_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("session.redis_password", "BILLED_SESSION_REDIS_PASSWORD", "REDIS_PASSWORD")
	_ = v.BindEnv("remote.base_url", "BILLED_REMOTE_BASE_URL", "BILLED_STORE_URL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	switch c.Store.Mode {
	case StoreModeLocal:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required in local store mode")
		}
		if c.Storage.ReceiptsDir == "" {
			return fmt.Errorf("storage.receipts_dir is required in local store mode")
		}
	case StoreModeRemote:
		if c.Remote.BaseURL == "" {
			return fmt.Errorf("remote.base_url is required in remote store mode")
		}
		if c.Remote.Timeout <= 0 {
			return fmt.Errorf("remote.timeout must be positive")
		}
	default:
		return fmt.Errorf("store.mode must be %q or %q, got %q", StoreModeLocal, StoreModeRemote, c.Store.Mode)
	}

	switch c.Session.Backend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.Session.RedisAddr == "" {
			return fmt.Errorf("session.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("session.backend must be %q or %q, got %q", SessionBackendMemory, SessionBackendRedis, c.Session.Backend)
	}

	if c.Session.CookieName == "" {
		return fmt.Errorf("session.cookie_name is required")
	}
	if c.View.PreviewWidth <= 0 {
		return fmt.Errorf("view.preview_width must be positive")
	}

	return nil
}
