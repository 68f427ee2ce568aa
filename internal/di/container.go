package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Amity808/entrytagv1/internal/handler"
	"github.com/Amity808/entrytagv1/internal/metrics"
	"github.com/Amity808/entrytagv1/internal/repository"
	"github.com/Amity808/entrytagv1/internal/service"
	"github.com/Amity808/entrytagv1/internal/settlement"
	"github.com/Amity808/entrytagv1/internal/worker"
	"github.com/Amity808/entrytagv1/pkg/config"
	"github.com/Amity808/entrytagv1/pkg/database"
	"github.com/Amity808/entrytagv1/pkg/kafka"
	"github.com/Amity808/entrytagv1/pkg/logger"
	"github.com/Amity808/entrytagv1/pkg/redis"
)

// Container holds all dependencies for the ticket ledger
type Container struct {
	Config *config.Config

	// Infrastructure
	DB       *database.PostgresDB
	Redis    *redis.Client
	Producer kafka.Publisher

	// Repositories
	EventRepo   repository.EventRepository
	TicketRepo  repository.TicketRepository
	ListingRepo repository.ListingRepository
	FeeRepo     repository.FeeRepository
	OutboxRepo  repository.OutboxRepository

	// Settlement
	Settlement settlement.Adapter

	// Services
	EventService       service.EventService
	PurchaseService    service.PurchaseService
	MarketplaceService service.MarketplaceService
	TicketService      service.TicketService
	PayoutService      service.PayoutService

	// Workers
	OutboxWorker *worker.OutboxWorker

	// Handlers
	HealthHandler      *handler.HealthHandler
	EventHandler       *handler.EventHandler
	PurchaseHandler    *handler.PurchaseHandler
	MarketplaceHandler *handler.MarketplaceHandler
	TicketHandler      *handler.TicketHandler
	FeeHandler         *handler.FeeHandler
}

// NewContainer builds the dependency graph from configuration. Postgres,
// Redis and Kafka are each optional; when disabled the container falls back
// to in-memory repositories and a no-op broker, which keeps local
// development and tests self-contained.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}
	log := logger.Get()

	if cfg.Database.Enabled {
		db, err := database.NewPostgres(ctx, &database.PostgresConfig{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			Database:        cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			MaxConns:        int32(cfg.Database.MaxOpenConns),
			MinConns:        int32(cfg.Database.MaxIdleConns),
			MaxConnLifetime: cfg.Database.ConnMaxLifetime,
			MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
			EnableTracing:   cfg.OTel.Enabled,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		c.DB = db
	}

	if cfg.Redis.Enabled {
		rc, err := redis.NewClient(ctx, &redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.Redis = rc
	}

	if err := c.buildRepositories(); err != nil {
		return nil, err
	}

	adapter, err := settlement.New(settlement.Config{
		Provider:        cfg.Settlement.Provider,
		StripeSecretKey: cfg.Settlement.StripeSecretKey,
		Environment:     cfg.App.Environment,
		MockSuccessRate: cfg.Settlement.MockSuccessRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build settlement adapter: %w", err)
	}
	c.Settlement = adapter

	recorder, err := metrics.New()
	if err != nil {
		log.Warn("metrics disabled", zap.Error(err))
		recorder = nil
	}

	policy := service.Policy{
		PlatformFeeBps:   cfg.Ledger.PlatformFeeBps,
		TransferLock:     cfg.Ledger.TransferLock,
		MinStartLead:     cfg.Ledger.MinStartLead,
		MinEventDuration: cfg.Ledger.MinEventDuration,
		Currency:         cfg.Ledger.Currency,
		OutboxTopic:      cfg.Kafka.TopicPrefix + ".events",
	}

	locks := service.NewKeyedMutex()
	c.EventService = service.NewEventService(c.EventRepo, c.OutboxRepo, locks, policy)
	c.PurchaseService = service.NewPurchaseService(c.EventRepo, c.TicketRepo, c.FeeRepo, c.OutboxRepo, c.Settlement, locks, policy, recorder)
	c.MarketplaceService = service.NewMarketplaceService(c.EventRepo, c.TicketRepo, c.ListingRepo, c.FeeRepo, c.OutboxRepo, c.Settlement, locks, policy, recorder)
	c.TicketService = service.NewTicketService(c.EventRepo, c.TicketRepo, c.OutboxRepo, locks, policy)
	c.PayoutService = service.NewPayoutService(c.EventRepo, c.FeeRepo, c.OutboxRepo, c.Settlement, policy)

	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(&kafka.ProducerConfig{
			Brokers:  cfg.Kafka.Brokers,
			ClientID: cfg.Kafka.ClientID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka producer: %w", err)
		}
		c.Producer = producer
		c.OutboxWorker = worker.NewOutboxWorker(c.OutboxRepo, producer, nil)
	}

	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.EventHandler = handler.NewEventHandler(c.EventService)
	c.PurchaseHandler = handler.NewPurchaseHandler(c.PurchaseService)
	c.MarketplaceHandler = handler.NewMarketplaceHandler(c.MarketplaceService)
	c.TicketHandler = handler.NewTicketHandler(c.TicketService)
	c.FeeHandler = handler.NewFeeHandler(c.PayoutService)

	return c, nil
}

func (c *Container) buildRepositories() error {
	if c.DB != nil {
		pool := c.DB.Pool()
		c.EventRepo = repository.NewPostgresEventRepository(pool)
		c.TicketRepo = repository.NewPostgresTicketRepository(pool)
		c.ListingRepo = repository.NewPostgresListingRepository(pool)
		c.FeeRepo = repository.NewPostgresFeeRepository(pool)
		c.OutboxRepo = repository.NewPostgresOutboxRepository(pool)
	} else {
		logger.Get().Warn("postgres disabled, using in-memory repositories")
		c.EventRepo = repository.NewMemoryEventRepository()
		c.TicketRepo = repository.NewMemoryTicketRepository()
		c.ListingRepo = repository.NewMemoryListingRepository()
		c.FeeRepo = repository.NewMemoryFeeRepository()
		c.OutboxRepo = repository.NewMemoryOutboxRepository()
	}

	if c.Redis != nil {
		c.EventRepo = repository.NewCachedEventRepository(c.EventRepo, c.Redis.Client)
	}
	return nil
}

// Close releases all infrastructure resources
func (c *Container) Close() {
	if c.OutboxWorker != nil {
		c.OutboxWorker.Stop()
	}
	if c.Producer != nil {
		c.Producer.Close()
	}
	if c.Redis != nil {
		c.Redis.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
