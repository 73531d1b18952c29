package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/anhkhoa289/vote-anti-trick/internal/apperrors"
	"github.com/anhkhoa289/vote-anti-trick/internal/observability"
	"github.com/anhkhoa289/vote-anti-trick/models"
	"github.com/anhkhoa289/vote-anti-trick/services"
	"github.com/anhkhoa289/vote-anti-trick/utils"
)

type MockVotingService struct {
	mock.Mock
}

func (m *MockVotingService) ListInfrastructures(ctx context.Context) ([]*models.InfrastructureWithVotes, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*models.InfrastructureWithVotes), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVotingService) GetInfrastructure(ctx context.Context, id string) (*models.InfrastructureWithVotes, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.InfrastructureWithVotes), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVotingService) CreateInfrastructure(ctx context.Context, input services.CreateInfrastructureInput) (*models.Infrastructure, error) {
	args := m.Called(ctx, input)
	if v := args.Get(0); v != nil {
		return v.(*models.Infrastructure), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVotingService) CastVote(ctx context.Context, input services.CastVoteInput) (*models.VoteResult, error) {
	args := m.Called(ctx, input)
	if v := args.Get(0); v != nil {
		return v.(*models.VoteResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestRouter(svc VotingService) http.Handler {
	obs := observability.NewObserver(observability.NewNopLogger(), noop.NewTracerProvider())
	infra := NewInfrastructureHandler(svc)
	votes := NewVoteHandler(svc)

	r := chi.NewRouter()
	r.Get("/api/infrastructures", obs.Wrap(infra.List, "GET /api/infrastructures"))
	r.Post("/api/infrastructures", obs.Wrap(infra.Create, "POST /api/infrastructures"))
	r.Get("/api/infrastructures/{id}", obs.Wrap(infra.Get, "GET /api/infrastructures/:id"))
	r.Post("/api/infrastructures/{id}/vote", obs.Wrap(votes.Cast, "POST /api/infrastructures/:id/vote"))
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) utils.ErrorResponse {
	t.Helper()
	var resp utils.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func sampleInfrastructure() *models.Infrastructure {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.Infrastructure{
		ID:          uuid.New(),
		Name:        "Bridge",
		Description: "A new bridge",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestInfrastructureHandler_List(t *testing.T) {
	t.Run("returns infrastructures with counts", func(t *testing.T) {
		svc := new(MockVotingService)
		infra := sampleInfrastructure()
		svc.On("ListInfrastructures", mock.Anything).Return([]*models.InfrastructureWithVotes{
			{Infrastructure: *infra, Count: models.VoteCount{Votes: 3}},
		}, nil)

		w := do(t, newTestRouter(svc), http.MethodGet, "/api/infrastructures", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var body []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body, 1)
		assert.Equal(t, "Bridge", body[0]["name"])
		assert.Equal(t, float64(3), body[0]["_count"].(map[string]interface{})["votes"])
		svc.AssertExpectations(t)
	})

	t.Run("service failure becomes 500 envelope", func(t *testing.T) {
		svc := new(MockVotingService)
		svc.On("ListInfrastructures", mock.Anything).
			Return(nil, apperrors.WrapInternal(services.MsgFetchInfrastructuresFailed, errors.New("db down"), nil))

		w := do(t, newTestRouter(svc), http.MethodGet, "/api/infrastructures", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := errorBody(t, w)
		assert.Equal(t, services.MsgFetchInfrastructuresFailed, resp.Error)
		assert.Equal(t, w.Header().Get(observability.RequestIDHeader), resp.RequestID)
	})
}

func TestInfrastructureHandler_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := new(MockVotingService)
		infra := sampleInfrastructure()
		id := infra.ID.String()
		svc.On("GetInfrastructure", mock.Anything, id).
			Return(&models.InfrastructureWithVotes{Infrastructure: *infra}, nil)

		w := do(t, newTestRouter(svc), http.MethodGet, "/api/infrastructures/"+id, "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), id)
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockVotingService)
		svc.On("GetInfrastructure", mock.Anything, "missing").
			Return(nil, apperrors.NotFound(services.MsgInfrastructureNotFound, apperrors.Context{"id": "missing"}))

		w := do(t, newTestRouter(svc), http.MethodGet, "/api/infrastructures/missing", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, services.MsgInfrastructureNotFound, errorBody(t, w).Error)
		assert.NotContains(t, w.Body.String(), "missing\"")
	})
}

func TestInfrastructureHandler_Create(t *testing.T) {
	t.Run("creates infrastructure", func(t *testing.T) {
		svc := new(MockVotingService)
		infra := sampleInfrastructure()
		image := "https://example.com/bridge.png"
		svc.On("CreateInfrastructure", mock.Anything, services.CreateInfrastructureInput{
			Name:        "Bridge",
			Description: "A new bridge",
			ImageURL:    &image,
		}).Return(infra, nil)

		w := do(t, newTestRouter(svc), http.MethodPost, "/api/infrastructures",
			`{"name":"Bridge","description":"A new bridge","imageUrl":"https://example.com/bridge.png"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"name":"Bridge"`)
		svc.AssertExpectations(t)
	})

	t.Run("converts non-string fields to text", func(t *testing.T) {
		svc := new(MockVotingService)
		svc.On("CreateInfrastructure", mock.Anything, services.CreateInfrastructureInput{
			Name:        "5",
			Description: "true",
		}).Return(sampleInfrastructure(), nil)

		w := do(t, newTestRouter(svc), http.MethodPost, "/api/infrastructures",
			`{"name":5,"description":true,"imageUrl":0}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing name", `{"description":"d"}`, "name is required"},
		{"blank name", `{"name":"   ","description":"d"}`, "name is required"},
		{"missing description", `{"name":"n"}`, "description is required"},
		{"array body", `[1,2]`, MsgInvalidRequestBody},
		{"malformed json", `{"name":`, MsgInvalidRequestBody},
		{"zero name", `{"name":0,"description":"d"}`, "name is required"},
		{"false description", `{"name":"n","description":false}`, "description is required"},
		{"null name", `{"name":null,"description":"d"}`, "name is required"},
		{"empty body", ``, MsgInvalidRequestBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockVotingService)

			w := do(t, newTestRouter(svc), http.MethodPost, "/api/infrastructures", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantMsg, errorBody(t, w).Error)
			svc.AssertNotCalled(t, "CreateInfrastructure", mock.Anything, mock.Anything)
		})
	}
}

func TestVoteHandler_Cast(t *testing.T) {
	t.Run("records vote with client ip", func(t *testing.T) {
		svc := new(MockVotingService)
		infraID := uuid.New()
		vote := models.NewVote(infraID, "Ann", "ann@example.com", "1.2.3.4")
		svc.On("CastVote", mock.Anything, services.CastVoteInput{
			InfrastructureID: infraID.String(),
			VoterName:        "Ann",
			VoterEmail:       "ann@example.com",
			IPAddress:        "1.2.3.4",
		}).Return(&models.VoteResult{Vote: vote, TotalVotes: 7}, nil)

		r := httptest.NewRequest(http.MethodPost, "/api/infrastructures/"+infraID.String()+"/vote",
			strings.NewReader(`{"voterName":"Ann","voterEmail":"ann@example.com"}`))
		r.Header.Set("X-Forwarded-For", " 1.2.3.4 , 10.0.0.1")
		w := httptest.NewRecorder()
		newTestRouter(svc).ServeHTTP(w, r)

		assert.Equal(t, http.StatusCreated, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, float64(7), body["totalVotes"])
		svc.AssertExpectations(t)
	})

	t.Run("anonymous vote", func(t *testing.T) {
		svc := new(MockVotingService)
		svc.On("CastVote", mock.Anything, mock.MatchedBy(func(in services.CastVoteInput) bool {
			return in.InfrastructureID == "abc" && in.VoterName == "" && in.IPAddress == observability.UnknownValue
		})).Return(&models.VoteResult{TotalVotes: 1}, nil)

		w := do(t, newTestRouter(svc), http.MethodPost, "/api/infrastructures/abc/vote", `{}`)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("converts non-string voter fields", func(t *testing.T) {
		svc := new(MockVotingService)
		svc.On("CastVote", mock.Anything, mock.MatchedBy(func(in services.CastVoteInput) bool {
			return in.VoterName == "5" && in.VoterEmail == ""
		})).Return(&models.VoteResult{TotalVotes: 1}, nil)

		w := do(t, newTestRouter(svc), http.MethodPost, "/api/infrastructures/abc/vote",
			`{"voterName":5,"voterEmail":false}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("unknown infrastructure", func(t *testing.T) {
		svc := new(MockVotingService)
		svc.On("CastVote", mock.Anything, mock.Anything).
			Return(nil, apperrors.NotFound(services.MsgInfrastructureNotFound, nil))

		w := do(t, newTestRouter(svc), http.MethodPost, "/api/infrastructures/abc/vote", `{}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, services.MsgInfrastructureNotFound, errorBody(t, w).Error)
	})

	t.Run("invalid body", func(t *testing.T) {
		svc := new(MockVotingService)

		w := do(t, newTestRouter(svc), http.MethodPost, "/api/infrastructures/abc/vote", `"text"`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, MsgInvalidRequestBody, errorBody(t, w).Error)
		svc.AssertNotCalled(t, "CastVote", mock.Anything, mock.Anything)
	})
}
