package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anhkhoa289/vote-anti-trick/internal/observability"
	"github.com/anhkhoa289/vote-anti-trick/services"
	"github.com/anhkhoa289/vote-anti-trick/utils"
)

// CastVoteRequest is the body of POST /api/infrastructures/{id}/vote
type CastVoteRequest struct {
	VoterName  utils.LooseString `json:"voterName"`
	VoterEmail utils.LooseString `json:"voterEmail"`
}

// VoteHandler serves the vote endpoint
type VoteHandler struct {
	service VotingService
}

// NewVoteHandler creates a new VoteHandler
func NewVoteHandler(service VotingService) *VoteHandler {
	return &VoteHandler{service: service}
}

// Cast handles POST /api/infrastructures/{id}/vote
func (h *VoteHandler) Cast(req *observability.Request) (*observability.Response, error) {
	var body CastVoteRequest
	if err := decodeBody(req, &body); err != nil {
		return nil, err
	}

	result, err := h.service.CastVote(req.Context(), services.CastVoteInput{
		InfrastructureID: chi.URLParam(req.Request, "id"),
		VoterName:        body.VoterName.String(),
		VoterEmail:       body.VoterEmail.String(),
		IPAddress:        req.Info.ClientIP,
	})
	if err != nil {
		return nil, err
	}
	return observability.JSON(http.StatusCreated, result), nil
}
