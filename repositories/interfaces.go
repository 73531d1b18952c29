package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/anhkhoa289/vote-anti-trick/models"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction.
	// Repositories called with the ctx passed to fn run inside the transaction.
	// Commits if fn succeeds, rolls back on error or panic.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// InfrastructureRepository handles infrastructure data operations
type InfrastructureRepository interface {
	// Create creates a new infrastructure
	Create(ctx context.Context, infra *models.Infrastructure) error

	// GetByID retrieves an infrastructure by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Infrastructure, error)

	// GetWithVoteCount retrieves an infrastructure with its vote count
	GetWithVoteCount(ctx context.Context, id uuid.UUID) (*models.InfrastructureWithVotes, error)

	// ListWithVoteCounts retrieves all infrastructures with vote counts, newest first
	ListWithVoteCounts(ctx context.Context) ([]*models.InfrastructureWithVotes, error)
}

// VoteRepository handles vote data operations
type VoteRepository interface {
	// Create records a vote
	Create(ctx context.Context, vote *models.Vote) error

	// CountByInfrastructure counts the votes cast for an infrastructure
	CountByInfrastructure(ctx context.Context, infrastructureID uuid.UUID) (int, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Infrastructures InfrastructureRepository
	Votes           VoteRepository
}
