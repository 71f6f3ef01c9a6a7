package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	catalogdomain "github.com/tair/shopgrid/internal/catalog/domain"
	catalogrepo "github.com/tair/shopgrid/internal/catalog/repository"
	userdomain "github.com/tair/shopgrid/internal/user/domain"
	userrepo "github.com/tair/shopgrid/internal/user/repository"
	"github.com/tair/shopgrid/pkg/config"
	"github.com/tair/shopgrid/pkg/database"
	"github.com/tair/shopgrid/pkg/health"
	"github.com/tair/shopgrid/pkg/logger"
)

// Stores holds the open backing stores and the repositories built on them
type Stores struct {
	Driver   string
	Products catalogdomain.ProductRepository
	Users    userdomain.UserRepository

	// Redis is nil unless the cache or the rate limiter uses it
	Redis *redis.Client

	sqlDB   *sql.DB
	gormDB  *gorm.DB
	mongo   *mongo.Client
	mongoDB *mongo.Database
}

// OpenStores connects the store selected by store.driver and, when needed, Redis.
// Repositories are wrapped with tracing.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	s := &Stores{Driver: cfg.Store.Driver}

	var (
		products catalogdomain.ProductRepository
		users    userdomain.UserRepository
	)

	switch cfg.Store.Driver {
	case config.StorePostgres:
		sqlDB, err := database.NewPostgresConnection(ctx, cfg.Postgres.DSN())
		if err != nil {
			return nil, err
		}
		gormDB, err := database.NewGormConnection(sqlDB)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		s.sqlDB, s.gormDB = sqlDB, gormDB
		products = catalogrepo.NewGormProductRepository(gormDB)
		users = userrepo.NewGormUserRepository(gormDB)

	case config.StoreMongo:
		client, err := database.NewMongoConnection(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		s.mongo = client
		s.mongoDB = client.Database(cfg.Mongo.Database)
		products = catalogrepo.NewMongoProductRepository(s.mongoDB)
		users = userrepo.NewMongoUserRepository(s.mongoDB)

	case config.StoreMemory:
		logger.Logger.Warn().Msg("Using in-memory store, data is lost on restart")
		products = catalogrepo.NewMemoryProductRepository()
		users = userrepo.NewMemoryUserRepository()

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	s.Products = catalogrepo.NewTracingProductRepository(products, cfg.Store.Driver)
	s.Users = userrepo.NewTracingUserRepository(users, cfg.Store.Driver)

	if err := s.openRedis(ctx, cfg); err != nil {
		s.Close(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Stores) openRedis(ctx context.Context, cfg *config.Config) error {
	needsCache := cfg.Cache.Driver == config.CacheRedis
	if !needsCache && !cfg.RateLimit.Enabled {
		return nil
	}

	client, err := database.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		if needsCache {
			return err
		}
		logger.Logger.Warn().Err(err).Msg("Redis unavailable, rate limiting disabled")
		return nil
	}
	s.Redis = client
	return nil
}

// Migrate creates tables or indexes for the selected store
func (s *Stores) Migrate(ctx context.Context) error {
	switch {
	case s.gormDB != nil:
		if err := catalogrepo.NewGormProductRepository(s.gormDB).AutoMigrate(); err != nil {
			return fmt.Errorf("migrate products: %w", err)
		}
		if err := userrepo.NewGormUserRepository(s.gormDB).AutoMigrate(); err != nil {
			return fmt.Errorf("migrate users: %w", err)
		}
	case s.mongoDB != nil:
		if err := catalogrepo.NewMongoProductRepository(s.mongoDB).EnsureIndexes(ctx); err != nil {
			return err
		}
		if err := userrepo.NewMongoUserRepository(s.mongoDB).EnsureIndexes(ctx); err != nil {
			return err
		}
	}
	logger.Logger.Info().Str("driver", s.Driver).Msg("Store migrated")
	return nil
}

// RegisterHealthChecks adds the store and Redis probes. The store is critical,
// Redis only degrades the service.
func (s *Stores) RegisterHealthChecks(checker *health.Checker) {
	switch {
	case s.sqlDB != nil:
		checker.Register("postgres", true, s.sqlDB.PingContext)
	case s.mongo != nil:
		checker.Register("mongo", true, func(ctx context.Context) error {
			return s.mongo.Ping(ctx, nil)
		})
	}
	if s.Redis != nil {
		checker.Register("redis", false, func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		})
	}
}

// Close releases every open connection
func (s *Stores) Close(ctx context.Context) error {
	var errs []error
	if s.Redis != nil {
		errs = append(errs, s.Redis.Close())
	}
	if s.sqlDB != nil {
		errs = append(errs, s.sqlDB.Close())
	}
	if s.mongo != nil {
		errs = append(errs, s.mongo.Disconnect(ctx))
	}
	return errors.Join(errs...)
}
