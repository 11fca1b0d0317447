package container

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/infrastructure/kv"
	"github.com/garyjia/billed/internal/infrastructure/persistence/repository"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/billed/internal/infrastructure/remote"
	"github.com/garyjia/billed/internal/infrastructure/storage"
	"github.com/garyjia/billed/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// SessionBundle holds the session store and the client it owns, if any.
type SessionBundle struct {
	Store       port.KeyValueStore
	RedisClient *redis.Client
}

// ProvideDatabase opens the database and runs pending migrations.
func ProvideDatabase(ctx context.Context, cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	migrations, err := database.MigrationsFS(cfg.MigrationsDir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}
	if err := database.NewMigrator(db, logger).RunMigrations(ctx, migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideBillRepository creates the bill repository.
func ProvideBillRepository(db *sqlite.DB, logger *zap.Logger) port.BillRepository {
	return repository.NewBillRepository(db, logger)
}

// ProvideStorage creates the receipt storage, creating its directory.
func ProvideStorage(cfg *StorageConfig, logger *zap.Logger) (*storage.LocalFileStorage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is required")
	}
	if err := os.MkdirAll(cfg.ReceiptsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create receipts directory: %w", err)
	}
	return storage.NewLocalFileStorage(cfg.ReceiptsDir, logger), nil
}

// ProvideBillService creates the in-process bill store.
func ProvideBillService(
	repo port.BillRepository,
	files port.FileStorage,
	txManager port.TransactionManager,
	cfg *StorageConfig,
	logger *zap.Logger,
) service.BillService {
	return service.NewBillService(repo, files, txManager, NewLogger(logger), service.BillServiceConfig{
		FileURLPrefix: cfg.FileURLPrefix,
		MaxUploadSize: cfg.MaxUploadSize,
		Key:           storage.ReceiptPath,
	})
}

// ProvideRemoteStore creates the HTTP bill store client.
func ProvideRemoteStore(cfg *StoreConfig) *remote.BillClient {
	return remote.NewBillClient(cfg.RemoteBaseURL, remote.NewDefaultHTTPClient(cfg.RemoteTimeout))
}

// ProvideSessionStore creates the key-value store sessions are read from.
func ProvideSessionStore(cfg *SessionConfig, logger *zap.Logger) (*SessionBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("session config is required")
	}
	if !cfg.Redis {
		return &SessionBundle{Store: kv.NewMemoryStore()}, nil
	}

	client, err := kv.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("Session store connected to redis", zap.String("addr", cfg.RedisAddr))

	return &SessionBundle{
		Store:       kv.NewRedisStore(client, cfg.TTL),
		RedisClient: client,
	}, nil
}
