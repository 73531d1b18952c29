package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/anhkhoa289/vote-anti-trick/models"
	"github.com/anhkhoa289/vote-anti-trick/repositories"
)

// MockTransactionManager runs fn inline unless InTransaction is stubbed to fail
type MockTransactionManager struct {
	mock.Mock
	tx *MockTransaction
}

func (m *MockTransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(repositories.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	if m.tx == nil {
		m.tx = &MockTransaction{}
	}
	if err := fn(ctx, m.tx); err != nil {
		m.tx.rolledback = true
		return err
	}
	m.tx.committed = true
	return nil
}

// MockTransaction is a mock implementation of Transaction
type MockTransaction struct {
	mock.Mock
	committed  bool
	rolledback bool
}

func (m *MockTransaction) Commit() error {
	m.committed = true
	return nil
}

func (m *MockTransaction) Rollback() error {
	m.rolledback = true
	return nil
}

func (m *MockTransaction) Context() context.Context {
	return context.Background()
}

// MockInfrastructureRepository is a mock implementation of InfrastructureRepository
type MockInfrastructureRepository struct {
	mock.Mock
}

func (m *MockInfrastructureRepository) Create(ctx context.Context, infra *models.Infrastructure) error {
	return m.Called(ctx, infra).Error(0)
}

func (m *MockInfrastructureRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Infrastructure, error) {
	args := m.Called(ctx, id)
	if infra := args.Get(0); infra != nil {
		return infra.(*models.Infrastructure), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInfrastructureRepository) GetWithVoteCount(ctx context.Context, id uuid.UUID) (*models.InfrastructureWithVotes, error) {
	args := m.Called(ctx, id)
	if infra := args.Get(0); infra != nil {
		return infra.(*models.InfrastructureWithVotes), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInfrastructureRepository) ListWithVoteCounts(ctx context.Context) ([]*models.InfrastructureWithVotes, error) {
	args := m.Called(ctx)
	if infras := args.Get(0); infras != nil {
		return infras.([]*models.InfrastructureWithVotes), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockVoteRepository is a mock implementation of VoteRepository
type MockVoteRepository struct {
	mock.Mock
}

func (m *MockVoteRepository) Create(ctx context.Context, vote *models.Vote) error {
	return m.Called(ctx, vote).Error(0)
}

func (m *MockVoteRepository) CountByInfrastructure(ctx context.Context, infrastructureID uuid.UUID) (int, error) {
	args := m.Called(ctx, infrastructureID)
	return args.Int(0), args.Error(1)
}
