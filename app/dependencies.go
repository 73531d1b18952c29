package app

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"

	"github.com/anhkhoa289/vote-anti-trick/config"
	"github.com/anhkhoa289/vote-anti-trick/internal/observability"
	"github.com/anhkhoa289/vote-anti-trick/repositories"
	"github.com/anhkhoa289/vote-anti-trick/repositories/cache"
	"github.com/anhkhoa289/vote-anti-trick/repositories/postgres"
	"github.com/anhkhoa289/vote-anti-trick/services"
)

// MetricsNamespace prefixes every exported Prometheus series
const MetricsNamespace = "vote_anti_trick"

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *observability.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Infrastructures repositories.InfrastructureRepository
	Votes           repositories.VoteRepository
	TxManager       repositories.TransactionManager

	// Services
	VotingService *services.VotingService

	// Observability
	Telemetry *observability.Telemetry
	Registry  *prometheus.Registry
	Metrics   *observability.Metrics
	Observer  *observability.Observer

	cache *ristretto.Cache
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger.Zap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps, err := NewDependenciesWithFactory(ctx, cfg, logger, factory)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesWithFactory wires everything on top of an open repository factory
func NewDependenciesWithFactory(
	ctx context.Context,
	cfg *config.Config,
	logger *observability.Logger,
	factory *postgres.RepositoryFactory,
) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	if err := deps.initTelemetry(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	if err := deps.initRepositories(cfg); err != nil {
		_ = deps.Telemetry.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	deps.VotingService = services.NewVotingService(&repositories.Repositories{
		Infrastructures: deps.Infrastructures,
		Votes:           deps.Votes,
	}, deps.TxManager)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initTelemetry sets up tracing, the metrics registry and the request observer
func (d *Dependencies) initTelemetry(ctx context.Context, cfg *config.Config) error {
	headers, err := cfg.Tracing.Headers()
	if err != nil {
		return err
	}

	telemetry, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Enabled:        cfg.Tracing.Enabled,
		Endpoint:       cfg.Tracing.Endpoint,
		Headers:        headers,
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: cfg.Tracing.ServiceVersion,
		Environment:    cfg.Environment,
		SampleRate:     cfg.Tracing.SampleRate,
	}, d.Logger)
	if err != nil {
		return err
	}
	d.Telemetry = telemetry
	otel.SetTracerProvider(telemetry.TracerProvider())
	otel.SetTextMapPropagator(telemetry.Propagator())

	opts := []observability.ObserverOption{observability.WithPropagator(telemetry.Propagator())}
	if cfg.Observability.MetricsEnabled {
		d.Registry = prometheus.NewRegistry()
		d.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		d.Metrics = observability.NewMetrics(d.Registry, MetricsNamespace)
		opts = append(opts, observability.WithMetrics(d.Metrics))
	}

	d.Observer = observability.NewObserver(d.Logger, telemetry.TracerProvider(), opts...)
	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories(cfg *config.Config) error {
	repos := d.RepoFactory.NewRepositories()

	d.Infrastructures = repos.Infrastructures
	d.Votes = repos.Votes
	d.TxManager = d.RepoFactory.GetTransactionManager()

	if cfg.Cache.Enabled {
		c, err := cache.NewRistretto(cfg.Cache.MaxItems)
		if err != nil {
			return err
		}
		d.cache = c
		d.Infrastructures = cache.NewInfrastructureRepository(repos.Infrastructures, c, cfg.Cache.TTL, d.Logger.Zap())
		d.Logger.Info("infrastructure cache enabled", observability.Fields{
			"maxItems": cfg.Cache.MaxItems,
			"ttl":      cfg.Cache.TTL.String(),
		})
	}

	d.Logger.Info("repositories initialized")
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if err := d.Telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down tracing: %w", err))
	}

	if d.cache != nil {
		d.cache.Close()
	}

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	_ = d.Logger.Sync()

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
