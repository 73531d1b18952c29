package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anhkhoa289/vote-anti-trick/models"
	"github.com/anhkhoa289/vote-anti-trick/repositories"
)

// InfrastructureRepository implements the repositories.InfrastructureRepository interface
type InfrastructureRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewInfrastructureRepository creates a new infrastructure repository
func NewInfrastructureRepository(db *DB, logger *zap.Logger) repositories.InfrastructureRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InfrastructureRepository{
		db:     db,
		logger: logger,
	}
}

const selectWithVoteCount = `
	SELECT i.id, i.name, i.description, i.image_url, i.created_at, i.updated_at,
		COUNT(v.id) AS vote_count
	FROM infrastructures i
	LEFT JOIN votes v ON v.infrastructure_id = i.id
`

// Create creates a new infrastructure
func (r *InfrastructureRepository) Create(ctx context.Context, infra *models.Infrastructure) error {
	query := `
		INSERT INTO infrastructures (id, name, description, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		infra.ID,
		infra.Name,
		infra.Description,
		infra.ImageURL,
		infra.CreatedAt,
		infra.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create infrastructure: %w", err)
	}

	r.logger.Debug("infrastructure created", zap.String("id", infra.ID.String()))
	return nil
}

// GetByID retrieves an infrastructure by ID
func (r *InfrastructureRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Infrastructure, error) {
	query := `
		SELECT id, name, description, image_url, created_at, updated_at
		FROM infrastructures
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	infra := &models.Infrastructure{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&infra.ID,
		&infra.Name,
		&infra.Description,
		&infra.ImageURL,
		&infra.CreatedAt,
		&infra.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("infrastructure %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get infrastructure: %w", err)
	}

	return infra, nil
}

// GetWithVoteCount retrieves an infrastructure with its vote count
func (r *InfrastructureRepository) GetWithVoteCount(ctx context.Context, id uuid.UUID) (*models.InfrastructureWithVotes, error) {
	query := selectWithVoteCount + `
	WHERE i.id = $1
	GROUP BY i.id
	`

	executor := GetExecutor(ctx, r.db)
	infra, err := scanWithVotes(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("infrastructure %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get infrastructure: %w", err)
	}

	return infra, nil
}

// ListWithVoteCounts retrieves all infrastructures with vote counts, newest first
func (r *InfrastructureRepository) ListWithVoteCounts(ctx context.Context) ([]*models.InfrastructureWithVotes, error) {
	query := selectWithVoteCount + `
	GROUP BY i.id
	ORDER BY i.created_at DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list infrastructures: %w", err)
	}
	defer rows.Close()

	infras := make([]*models.InfrastructureWithVotes, 0)
	for rows.Next() {
		infra, err := scanWithVotes(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan infrastructure: %w", err)
		}
		infras = append(infras, infra)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating infrastructures: %w", err)
	}

	return infras, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWithVotes(row rowScanner) (*models.InfrastructureWithVotes, error) {
	infra := &models.InfrastructureWithVotes{}
	err := row.Scan(
		&infra.ID,
		&infra.Name,
		&infra.Description,
		&infra.ImageURL,
		&infra.CreatedAt,
		&infra.UpdatedAt,
		&infra.Count.Votes,
	)
	if err != nil {
		return nil, err
	}
	return infra, nil
}
