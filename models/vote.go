package models

import (
	"time"

	"github.com/google/uuid"
)

// Vote is a single vote cast for an infrastructure
type Vote struct {
	ID               uuid.UUID `json:"id" db:"id"`
	InfrastructureID uuid.UUID `json:"infrastructureId" db:"infrastructure_id"`
	VoterName        *string   `json:"voterName" db:"voter_name"`
	VoterEmail       *string   `json:"voterEmail" db:"voter_email"`
	IPAddress        *string   `json:"ipAddress" db:"ip_address"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}

// TableName returns the table name for the Vote model
func (Vote) TableName() string {
	return "votes"
}

// NewVote creates a new Vote instance. Empty optional values are stored as null.
func NewVote(infrastructureID uuid.UUID, voterName, voterEmail, ipAddress string) *Vote {
	return &Vote{
		ID:               uuid.New(),
		InfrastructureID: infrastructureID,
		VoterName:        optional(voterName),
		VoterEmail:       optional(voterEmail),
		IPAddress:        optional(ipAddress),
		CreatedAt:        time.Now().UTC(),
	}
}

// VoteResult is returned after a vote has been recorded
type VoteResult struct {
	Vote       *Vote `json:"vote"`
	TotalVotes int   `json:"totalVotes"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
