package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anhkhoa289/vote-anti-trick/internal/apperrors"
	"github.com/anhkhoa289/vote-anti-trick/internal/observability"
	"github.com/anhkhoa289/vote-anti-trick/models"
	"github.com/anhkhoa289/vote-anti-trick/services"
	"github.com/anhkhoa289/vote-anti-trick/utils"
)

// MsgInvalidRequestBody is reported when a body is not a JSON object
const MsgInvalidRequestBody = "Invalid request body"

// VotingService is the business API the handlers depend on
type VotingService interface {
	ListInfrastructures(ctx context.Context) ([]*models.InfrastructureWithVotes, error)
	GetInfrastructure(ctx context.Context, id string) (*models.InfrastructureWithVotes, error)
	CreateInfrastructure(ctx context.Context, input services.CreateInfrastructureInput) (*models.Infrastructure, error)
	CastVote(ctx context.Context, input services.CastVoteInput) (*models.VoteResult, error)
}

// CreateInfrastructureRequest is the body of POST /api/infrastructures
type CreateInfrastructureRequest struct {
	Name        utils.LooseString `json:"name" validate:"required,notblank"`
	Description utils.LooseString `json:"description" validate:"required,notblank"`
	ImageURL    utils.LooseString `json:"imageUrl"`
}

// InfrastructureHandler serves the infrastructure endpoints
type InfrastructureHandler struct {
	service VotingService
}

// NewInfrastructureHandler creates a new InfrastructureHandler
func NewInfrastructureHandler(service VotingService) *InfrastructureHandler {
	return &InfrastructureHandler{service: service}
}

// List handles GET /api/infrastructures
func (h *InfrastructureHandler) List(req *observability.Request) (*observability.Response, error) {
	infras, err := h.service.ListInfrastructures(req.Context())
	if err != nil {
		return nil, err
	}
	return observability.JSON(http.StatusOK, infras), nil
}

// Get handles GET /api/infrastructures/{id}
func (h *InfrastructureHandler) Get(req *observability.Request) (*observability.Response, error) {
	infra, err := h.service.GetInfrastructure(req.Context(), chi.URLParam(req.Request, "id"))
	if err != nil {
		return nil, err
	}
	return observability.JSON(http.StatusOK, infra), nil
}

// Create handles POST /api/infrastructures
func (h *InfrastructureHandler) Create(req *observability.Request) (*observability.Response, error) {
	var body CreateInfrastructureRequest
	if err := decodeBody(req, &body); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(body); err != nil {
		return nil, validationError(err)
	}

	infra, err := h.service.CreateInfrastructure(req.Context(), services.CreateInfrastructureInput{
		Name:        body.Name.String(),
		Description: body.Description.String(),
		ImageURL:    body.ImageURL.Ptr(),
	})
	if err != nil {
		return nil, err
	}
	return observability.JSON(http.StatusCreated, infra), nil
}

func decodeBody(req *observability.Request, dst interface{}) error {
	if req.Body == nil {
		return apperrors.BadRequest(MsgInvalidRequestBody, nil)
	}
	if err := utils.DecodeJSONObject(req.Body, dst); err != nil {
		return apperrors.BadRequest(MsgInvalidRequestBody, apperrors.Context{"cause": err.Error()})
	}
	return nil
}

func validationError(err error) error {
	ctx := apperrors.Context{}
	for field, msg := range utils.GetValidationFields(err) {
		ctx[field] = msg
	}
	return apperrors.BadRequest(err.Error(), ctx)
}
