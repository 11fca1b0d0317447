package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/billed/internal/views"
	"github.com/garyjia/billed/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components start in dependency order and close in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure - Data
	db       *database.DB
	txDB     *sqlite.DB
	billRepo port.BillRepository

	// Infrastructure - Storage
	fileStorage port.FileStorage

	// Infrastructure - Sessions
	sessions    port.KeyValueStore
	redisClient *redis.Client

	// Application
	billService service.BillService
	store       port.BillStore
	export      service.ExportService
	renderer    *views.Renderer

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components:
// 1. Views
// 2. Bill store (database, repository, storage and service; or remote client)
// 3. Session store
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	renderer, err := views.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to initialize views: %w", err)
	}
	c.renderer = renderer
	c.export = service.NewExportService(NewLogger(c.logger))

	if c.config.Store.Remote {
		c.store = ProvideRemoteStore(&c.config.Store)
		c.logger.Info("Remote bill store configured", zap.String("base_url", c.config.Store.RemoteBaseURL))
	} else if err := c.initLocalStore(ctx); err != nil {
		c.closeResources()
		return err
	}

	sessions, err := ProvideSessionStore(&c.config.Session, c.logger)
	if err != nil {
		c.closeResources()
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	c.sessions = sessions.Store
	c.redisClient = sessions.RedisClient
	c.logger.Info("Session store initialized", zap.Bool("redis", c.config.Session.Redis))

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

func (c *Container) initLocalStore(ctx context.Context) error {
	dbBundle, err := ProvideDatabase(ctx, &c.config.Database, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.db = dbBundle.DB
	c.txDB = dbBundle.TransactionMgr
	c.billRepo = ProvideBillRepository(c.txDB, c.logger)
	c.logger.Info("Database initialized")

	files, err := ProvideStorage(&c.config.Storage, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.fileStorage = files
	c.logger.Info("Storage initialized")

	c.billService = ProvideBillService(c.billRepo, c.fileStorage, c.txDB, &c.config.Storage, c.logger)
	c.store = c.billService
	c.logger.Info("Bill service initialized")
	return nil
}

// Close releases all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")
	errs := c.closeResources()

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

func (c *Container) closeResources() []error {
	var errs []error

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			c.logger.Error("Failed to close redis client", zap.Error(err))
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
		c.redisClient = nil
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
		c.db = nil
	}

	return errs
}

// Ready returns true once Start has completed.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health reports the state of every owned component.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Overall:    c.ready.Load(),
		Components: make(map[string]ComponentHealth),
	}

	check := func(name string, err error) {
		if err != nil {
			status.Components[name] = ComponentHealth{Healthy: false, Message: err.Error()}
			status.Overall = false
			return
		}
		status.Components[name] = ComponentHealth{Healthy: true}
	}

	if c.config.Store.Remote {
		status.Components["store"] = ComponentHealth{Healthy: true, Message: "remote"}
	} else if c.db == nil {
		check("database", fmt.Errorf("not initialized"))
	} else {
		check("database", c.db.Healthy(ctx))
	}

	if c.redisClient != nil {
		check("sessions", c.redisClient.Ping(ctx).Err())
	} else if c.sessions != nil {
		status.Components["sessions"] = ComponentHealth{Healthy: true, Message: "memory"}
	} else {
		check("sessions", fmt.Errorf("not initialized"))
	}

	return status
}

// Store returns the bill store the pages use.
func (c *Container) Store() port.BillStore {
	return c.store
}

// BillService returns the in-process bill store, nil in remote mode.
func (c *Container) BillService() service.BillService {
	return c.billService
}

// FileStorage returns the receipt storage, nil in remote mode.
func (c *Container) FileStorage() port.FileStorage {
	return c.fileStorage
}

// Sessions returns the session key-value store.
func (c *Container) Sessions() port.KeyValueStore {
	return c.sessions
}

// Export returns the ledger export service.
func (c *Container) Export() service.ExportService {
	return c.export
}

// Renderer returns the page renderer.
func (c *Container) Renderer() *views.Renderer {
	return c.renderer
}

// Logger returns the key-value logger handed to the interface layer.
func (c *Container) Logger() *ZapLogger {
	return NewLogger(c.logger)
}
