// Package cache provides in-memory read-through decorators for repositories.
// Entries expire after a TTL; eviction follows ristretto's TinyLFU admission policy.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anhkhoa289/vote-anti-trick/models"
	"github.com/anhkhoa289/vote-anti-trick/repositories"
)

// Config configures the infrastructure lookup cache
type Config struct {
	MaxItems int64
	TTL      time.Duration
}

// NewRistretto builds a cache sized for maxItems entries of cost 1
func NewRistretto(maxItems int64) (*ristretto.Cache, error) {
	if maxItems <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", maxItems)
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	return cache, nil
}

// InfrastructureRepository caches infrastructure lookups by id.
// Vote counts change on every vote and are never cached.
type InfrastructureRepository struct {
	next   repositories.InfrastructureRepository
	cache  *ristretto.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewInfrastructureRepository wraps next with a lookup cache
func NewInfrastructureRepository(
	next repositories.InfrastructureRepository,
	cache *ristretto.Cache,
	ttl time.Duration,
	logger *zap.Logger,
) *InfrastructureRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InfrastructureRepository{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Create creates the infrastructure and primes the cache
func (r *InfrastructureRepository) Create(ctx context.Context, infra *models.Infrastructure) error {
	if err := r.next.Create(ctx, infra); err != nil {
		return err
	}
	r.store(infra)
	return nil
}

// GetByID returns a cached infrastructure or loads it from the wrapped repository
func (r *InfrastructureRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Infrastructure, error) {
	if value, found := r.cache.Get(id.String()); found {
		if cached, ok := value.(models.Infrastructure); ok {
			return &cached, nil
		}
		r.logger.Warn("unexpected value type in infrastructure cache",
			zap.String("id", id.String()),
			zap.String("type", fmt.Sprintf("%T", value)),
		)
		r.cache.Del(id.String())
	}

	infra, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(infra)
	return infra, nil
}

// GetWithVoteCount is not cached
func (r *InfrastructureRepository) GetWithVoteCount(ctx context.Context, id uuid.UUID) (*models.InfrastructureWithVotes, error) {
	return r.next.GetWithVoteCount(ctx, id)
}

// ListWithVoteCounts is not cached
func (r *InfrastructureRepository) ListWithVoteCounts(ctx context.Context) ([]*models.InfrastructureWithVotes, error) {
	return r.next.ListWithVoteCounts(ctx)
}

func (r *InfrastructureRepository) store(infra *models.Infrastructure) {
	if infra == nil {
		return
	}
	if !r.cache.SetWithTTL(infra.ID.String(), *infra, 1, r.ttl) {
		r.logger.Debug("infrastructure cache set dropped", zap.String("id", infra.ID.String()))
	}
}
