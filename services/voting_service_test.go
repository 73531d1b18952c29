package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/anhkhoa289/vote-anti-trick/internal/apperrors"
	"github.com/anhkhoa289/vote-anti-trick/internal/observability"
	"github.com/anhkhoa289/vote-anti-trick/models"
	"github.com/anhkhoa289/vote-anti-trick/repositories"
)

type serviceFixture struct {
	infras  *MockInfrastructureRepository
	votes   *MockVoteRepository
	txMgr   *MockTransactionManager
	service *VotingService
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		infras: new(MockInfrastructureRepository),
		votes:  new(MockVoteRepository),
		txMgr:  new(MockTransactionManager),
	}
	f.service = NewVotingService(&repositories.Repositories{
		Infrastructures: f.infras,
		Votes:           f.votes,
	}, f.txMgr)
	return f
}

func assertAppError(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	details := apperrors.Classify(err)
	assert.Equal(t, status, details.StatusCode)
	assert.Equal(t, message, details.Message)
}

func TestListInfrastructures(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newServiceFixture()
		list := []*models.InfrastructureWithVotes{{Count: models.VoteCount{Votes: 1}}}
		f.infras.On("ListWithVoteCounts", mock.Anything).Return(list, nil)

		got, err := f.service.ListInfrastructures(context.Background())

		require.NoError(t, err)
		assert.Equal(t, list, got)
	})

	t.Run("repository failure", func(t *testing.T) {
		f := newServiceFixture()
		cause := errors.New("connection refused")
		f.infras.On("ListWithVoteCounts", mock.Anything).Return(nil, cause)

		_, err := f.service.ListInfrastructures(context.Background())

		assertAppError(t, err, http.StatusInternalServerError, MsgFetchInfrastructuresFailed)
		assert.ErrorIs(t, err, cause)
	})
}

func TestGetInfrastructure(t *testing.T) {
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		f := newServiceFixture()
		infra := &models.InfrastructureWithVotes{Infrastructure: models.Infrastructure{ID: id, Name: "Docker"}}
		f.infras.On("GetWithVoteCount", mock.Anything, id).Return(infra, nil)

		got, err := f.service.GetInfrastructure(context.Background(), id.String())

		require.NoError(t, err)
		assert.Equal(t, "Docker", got.Name)
	})

	t.Run("not found", func(t *testing.T) {
		f := newServiceFixture()
		f.infras.On("GetWithVoteCount", mock.Anything, id).Return(nil, repositories.ErrNotFound)

		_, err := f.service.GetInfrastructure(context.Background(), id.String())

		assertAppError(t, err, http.StatusNotFound, MsgInfrastructureNotFound)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("invalid id is not found", func(t *testing.T) {
		f := newServiceFixture()

		_, err := f.service.GetInfrastructure(context.Background(), "not-a-uuid")

		assertAppError(t, err, http.StatusNotFound, MsgInfrastructureNotFound)
		f.infras.AssertNotCalled(t, "GetWithVoteCount", mock.Anything, mock.Anything)
	})

	t.Run("repository failure", func(t *testing.T) {
		f := newServiceFixture()
		f.infras.On("GetWithVoteCount", mock.Anything, id).Return(nil, errors.New("timeout"))

		_, err := f.service.GetInfrastructure(context.Background(), id.String())

		assertAppError(t, err, http.StatusInternalServerError, MsgFetchInfrastructureFailed)
	})
}

func TestCreateInfrastructure(t *testing.T) {
	img := "https://example.com/k8s.png"

	t.Run("success", func(t *testing.T) {
		f := newServiceFixture()
		f.infras.On("Create", mock.Anything, mock.MatchedBy(func(i *models.Infrastructure) bool {
			return i.Name == "Kubernetes" && i.Description == "Orchestration" && *i.ImageURL == img
		})).Return(nil)

		got, err := f.service.CreateInfrastructure(context.Background(), CreateInfrastructureInput{
			Name:        "Kubernetes",
			Description: "Orchestration",
			ImageURL:    &img,
		})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, got.ID)
		f.infras.AssertExpectations(t)
	})

	t.Run("repository failure", func(t *testing.T) {
		f := newServiceFixture()
		f.infras.On("Create", mock.Anything, mock.Anything).Return(errors.New("duplicate"))

		_, err := f.service.CreateInfrastructure(context.Background(), CreateInfrastructureInput{Name: "a", Description: "b"})

		assertAppError(t, err, http.StatusInternalServerError, MsgCreateInfrastructureFailed)
	})
}

func TestCastVote(t *testing.T) {
	id := uuid.New()
	infra := &models.Infrastructure{ID: id, Name: "Docker"}

	t.Run("success", func(t *testing.T) {
		f := newServiceFixture()
		f.infras.On("GetByID", mock.Anything, id).Return(infra, nil)
		f.txMgr.On("InTransaction", mock.Anything).Return(nil)
		f.votes.On("Create", mock.Anything, mock.MatchedBy(func(v *models.Vote) bool {
			return v.InfrastructureID == id && *v.VoterName == "Ann" && v.VoterEmail == nil && *v.IPAddress == "1.2.3.4"
		})).Return(nil)
		f.votes.On("CountByInfrastructure", mock.Anything, id).Return(6, nil)

		core, logs := observer.New(zapcore.InfoLevel)
		ctx := observability.ContextWithLogger(context.Background(), observability.FromZap(zap.New(core)))

		result, err := f.service.CastVote(ctx, CastVoteInput{
			InfrastructureID: id.String(),
			VoterName:        "Ann",
			IPAddress:        "1.2.3.4",
		})

		require.NoError(t, err)
		assert.Equal(t, 6, result.TotalVotes)
		assert.Equal(t, id, result.Vote.InfrastructureID)
		assert.True(t, f.txMgr.tx.committed)
		assert.Equal(t, 1, logs.FilterMessage("Vote recorded").Len())
		assert.Equal(t, 1, logs.FilterMessage("Operation completed: db.vote.create").Len())
		assert.Equal(t, 1, logs.FilterMessage("Operation completed: db.vote.count").Len())
	})

	t.Run("infrastructure not found", func(t *testing.T) {
		f := newServiceFixture()
		f.infras.On("GetByID", mock.Anything, id).Return(nil, repositories.ErrNotFound)

		_, err := f.service.CastVote(context.Background(), CastVoteInput{InfrastructureID: id.String()})

		assertAppError(t, err, http.StatusNotFound, MsgInfrastructureNotFound)
		f.txMgr.AssertNotCalled(t, "InTransaction", mock.Anything)
	})

	t.Run("invalid id", func(t *testing.T) {
		f := newServiceFixture()

		_, err := f.service.CastVote(context.Background(), CastVoteInput{InfrastructureID: "abc"})

		assertAppError(t, err, http.StatusNotFound, MsgInfrastructureNotFound)
	})

	t.Run("lookup failure", func(t *testing.T) {
		f := newServiceFixture()
		f.infras.On("GetByID", mock.Anything, id).Return(nil, errors.New("timeout"))

		_, err := f.service.CastVote(context.Background(), CastVoteInput{InfrastructureID: id.String()})

		assertAppError(t, err, http.StatusInternalServerError, MsgCreateVoteFailed)
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		f := newServiceFixture()
		cause := errors.New("fk violation")
		f.infras.On("GetByID", mock.Anything, id).Return(infra, nil)
		f.txMgr.On("InTransaction", mock.Anything).Return(nil)
		f.votes.On("Create", mock.Anything, mock.Anything).Return(cause)

		_, err := f.service.CastVote(context.Background(), CastVoteInput{InfrastructureID: id.String()})

		assertAppError(t, err, http.StatusInternalServerError, MsgCreateVoteFailed)
		assert.ErrorIs(t, err, cause)
		assert.True(t, f.txMgr.tx.rolledback)
		f.votes.AssertNotCalled(t, "CountByInfrastructure", mock.Anything, mock.Anything)
	})

	t.Run("count failure rolls back", func(t *testing.T) {
		f := newServiceFixture()
		f.infras.On("GetByID", mock.Anything, id).Return(infra, nil)
		f.txMgr.On("InTransaction", mock.Anything).Return(nil)
		f.votes.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.votes.On("CountByInfrastructure", mock.Anything, id).Return(0, errors.New("timeout"))

		_, err := f.service.CastVote(context.Background(), CastVoteInput{InfrastructureID: id.String()})

		assertAppError(t, err, http.StatusInternalServerError, MsgCreateVoteFailed)
		assert.True(t, f.txMgr.tx.rolledback)
	})
}
