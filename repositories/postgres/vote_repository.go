package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anhkhoa289/vote-anti-trick/models"
	"github.com/anhkhoa289/vote-anti-trick/repositories"
)

// VoteRepository implements the repositories.VoteRepository interface
type VoteRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(db *DB, logger *zap.Logger) repositories.VoteRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoteRepository{
		db:     db,
		logger: logger,
	}
}

// Create records a vote
func (r *VoteRepository) Create(ctx context.Context, vote *models.Vote) error {
	query := `
		INSERT INTO votes (id, infrastructure_id, voter_name, voter_email, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		vote.ID,
		vote.InfrastructureID,
		vote.VoterName,
		vote.VoterEmail,
		vote.IPAddress,
		vote.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create vote: %w", err)
	}

	r.logger.Debug("vote created",
		zap.String("id", vote.ID.String()),
		zap.String("infrastructure_id", vote.InfrastructureID.String()),
	)
	return nil
}

// CountByInfrastructure counts the votes cast for an infrastructure
func (r *VoteRepository) CountByInfrastructure(ctx context.Context, infrastructureID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM votes WHERE infrastructure_id = $1`

	executor := GetExecutor(ctx, r.db)
	var count int
	if err := executor.QueryRowContext(ctx, query, infrastructureID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}
