package services

import (
	"context"
	"errors"

	"github.com/anhkhoa289/vote-anti-trick/internal/apperrors"
	"github.com/anhkhoa289/vote-anti-trick/internal/observability"
	"github.com/anhkhoa289/vote-anti-trick/models"
	"github.com/anhkhoa289/vote-anti-trick/repositories"
	"github.com/anhkhoa289/vote-anti-trick/utils"
)

// Error messages reported to clients
const (
	MsgInfrastructureNotFound     = "Infrastructure not found"
	MsgFetchInfrastructuresFailed = "Failed to fetch infrastructures"
	MsgFetchInfrastructureFailed  = "Failed to fetch infrastructure"
	MsgCreateInfrastructureFailed = "Failed to create infrastructure"
	MsgCreateVoteFailed           = "Failed to create vote"
)

// CreateInfrastructureInput holds the fields of a new infrastructure
type CreateInfrastructureInput struct {
	Name        string
	Description string
	ImageURL    *string
}

// CastVoteInput holds the fields of a new vote
type CastVoteInput struct {
	InfrastructureID string
	VoterName        string
	VoterEmail       string
	IPAddress        string
}

// VotingService lists infrastructures and records votes
type VotingService struct {
	infrastructures repositories.InfrastructureRepository
	votes           repositories.VoteRepository
	txMgr           repositories.TransactionManager
}

// NewVotingService creates a new VotingService
func NewVotingService(repos *repositories.Repositories, txMgr repositories.TransactionManager) *VotingService {
	return &VotingService{
		infrastructures: repos.Infrastructures,
		votes:           repos.Votes,
		txMgr:           txMgr,
	}
}

// ListInfrastructures returns all infrastructures with vote counts, newest first
func (s *VotingService) ListInfrastructures(ctx context.Context) ([]*models.InfrastructureWithVotes, error) {
	infras, err := observability.Measure(ctx, "db.infrastructure.findMany", nil, s.infrastructures.ListWithVoteCounts)
	if err != nil {
		return nil, apperrors.WrapInternal(MsgFetchInfrastructuresFailed, err, nil)
	}
	return infras, nil
}

// GetInfrastructure returns one infrastructure with its vote count
func (s *VotingService) GetInfrastructure(ctx context.Context, id string) (*models.InfrastructureWithVotes, error) {
	infraID, err := utils.ParseUUID(id)
	if err != nil {
		return nil, notFound(id)
	}

	infra, err := observability.Measure(ctx, "db.infrastructure.findUnique", observability.Fields{"id": id},
		func(ctx context.Context) (*models.InfrastructureWithVotes, error) {
			return s.infrastructures.GetWithVoteCount(ctx, infraID)
		})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound(id)
		}
		return nil, apperrors.WrapInternal(MsgFetchInfrastructureFailed, err, apperrors.Context{"id": id})
	}
	return infra, nil
}

// CreateInfrastructure stores a new infrastructure
func (s *VotingService) CreateInfrastructure(ctx context.Context, input CreateInfrastructureInput) (*models.Infrastructure, error) {
	infra := models.NewInfrastructure(input.Name, input.Description, input.ImageURL)

	err := observability.MeasureErr(ctx, "db.infrastructure.create", observability.Fields{"name": input.Name},
		func(ctx context.Context) error {
			return s.infrastructures.Create(ctx, infra)
		})
	if err != nil {
		return nil, apperrors.WrapInternal(MsgCreateInfrastructureFailed, err, nil)
	}
	return infra, nil
}

// CastVote records a vote and returns it with the updated total.
// The vote insert and the count run in one transaction.
func (s *VotingService) CastVote(ctx context.Context, input CastVoteInput) (*models.VoteResult, error) {
	infraID, err := utils.ParseUUID(input.InfrastructureID)
	if err != nil {
		return nil, notFound(input.InfrastructureID)
	}

	_, err = observability.Measure(ctx, "db.infrastructure.findUnique", observability.Fields{"id": input.InfrastructureID},
		func(ctx context.Context) (*models.Infrastructure, error) {
			return s.infrastructures.GetByID(ctx, infraID)
		})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound(input.InfrastructureID)
		}
		return nil, apperrors.WrapInternal(MsgCreateVoteFailed, err, apperrors.Context{"infrastructureId": input.InfrastructureID})
	}

	result, err := WithTransactionResult(ctx, s.txMgr, func(ctx context.Context) (*models.VoteResult, error) {
		vote := models.NewVote(infraID, input.VoterName, input.VoterEmail, input.IPAddress)

		err := observability.MeasureErr(ctx, "db.vote.create", observability.Fields{"infrastructureId": input.InfrastructureID},
			func(ctx context.Context) error {
				return s.votes.Create(ctx, vote)
			})
		if err != nil {
			return nil, err
		}

		total, err := observability.Measure(ctx, "db.vote.count", observability.Fields{"infrastructureId": input.InfrastructureID},
			func(ctx context.Context) (int, error) {
				return s.votes.CountByInfrastructure(ctx, infraID)
			})
		if err != nil {
			return nil, err
		}

		return &models.VoteResult{Vote: vote, TotalVotes: total}, nil
	})
	if err != nil {
		return nil, apperrors.WrapInternal(MsgCreateVoteFailed, err, apperrors.Context{"infrastructureId": input.InfrastructureID})
	}

	observability.LoggerFromContext(ctx).Info("Vote recorded", observability.Fields{
		"infrastructureId": input.InfrastructureID,
		"totalVotes":       result.TotalVotes,
	})
	return result, nil
}

func notFound(id string) *apperrors.AppError {
	return apperrors.NotFound(MsgInfrastructureNotFound, apperrors.Context{"id": id})
}
