package container

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"degreeplan/advisor/internal/advisor"
	"degreeplan/advisor/internal/client"
	"degreeplan/advisor/internal/config"
	"degreeplan/advisor/internal/queue"
	"degreeplan/advisor/internal/repository"
	"degreeplan/advisor/internal/requirements"
	"degreeplan/advisor/internal/server"
	"degreeplan/advisor/internal/service"
	"degreeplan/advisor/internal/state"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Core is what the engine needs without any infrastructure: the loaded
// majors and an advisor over them.
type Core struct {
	Config   *config.Config
	Registry *requirements.Registry
	Advisor  *advisor.Advisor
}

// Container holds all initialized components
type Container struct {
	*Core

	Repository  repository.ReportRepository
	Queue       queue.Queue
	StatusStore state.StatusStore
	Service     *service.Service
	Server      *server.Server

	db    *pgxpool.Pool
	redis *redis.Client
}

// CatalogSource picks where major definitions come from: the remote catalog,
// then local files, then the data compiled into the binary.
func CatalogSource(cfg config.CatalogConfig) requirements.Source {
	switch {
	case cfg.BaseURL != "":
		log.Infof("Using remote catalog %s", cfg.BaseURL)
		return client.NewCatalogClient(cfg)
	case cfg.MajorsDir != "":
		log.Infof("Using catalog files in %s", cfg.MajorsDir)
		return requirements.DirSource(cfg.CoursesFile, cfg.MajorsDir)
	default:
		return requirements.EmbeddedSource()
	}
}

func NewCore(ctx context.Context, cfg *config.Config) (*Core, error) {
	registry, err := requirements.Load(ctx, CatalogSource(cfg.Catalog))
	if err != nil {
		return nil, fmt.Errorf("failed to load requirement catalog: %w", err)
	}

	return &Core{
		Config:   cfg,
		Registry: registry,
		Advisor:  advisor.New(registry),
	}, nil
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	core, err := NewCore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	container := &Container{Core: core}

	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	container.db = db

	reportRepo := repository.NewReportRepository(db)
	if err := reportRepo.EnsureSchema(ctx); err != nil {
		container.Close()
		return nil, err
	}
	container.Repository = reportRepo

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	container.redis = rdb

	if err := rdb.Ping(ctx).Err(); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("✅ Connected to Redis successfully")

	redisQueue, err := queue.NewRedisQueue(ctx, rdb, cfg.Redis)
	if err != nil {
		container.Close()
		return nil, err
	}
	container.Queue = redisQueue

	container.StatusStore = state.NewRedisStatusStore(rdb, time.Duration(cfg.Redis.StatusTTL)*time.Second)

	container.Service = service.NewService(
		core.Advisor,
		reportRepo,
		redisQueue,
		container.StatusStore,
		cfg.Redis.ConsumerGroup,
		cfg.Redis.MinIdleTime,
	)
	container.Server = server.NewServer(core.Registry, core.Advisor, container.Service)

	return container, nil
}

// Run serves the HTTP API and/or runs the queue workers until ctx is done.
func (c *Container) Run(ctx context.Context, serve, work bool) error {
	g, ctx := errgroup.WithContext(ctx)

	if serve {
		g.Go(func() error {
			return c.Server.Run(ctx, c.Config.Server.Addr())
		})
	}

	if work {
		g.Go(func() error {
			return c.Service.RunWorkers(ctx, c.Config.Worker.MaxWorkers)
		})
	}

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("failed to close Redis client: %w", err)
		}
	}

	log.Info("Container shut down successfully")
	return nil
}
