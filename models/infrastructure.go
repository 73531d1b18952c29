package models

import (
	"time"

	"github.com/google/uuid"
)

// Infrastructure is a tool or platform that can be voted for
type Infrastructure struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	ImageURL    *string   `json:"imageUrl" db:"image_url"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// TableName returns the table name for the Infrastructure model
func (Infrastructure) TableName() string {
	return "infrastructures"
}

// NewInfrastructure creates a new Infrastructure instance.
// An empty image URL is stored as null.
func NewInfrastructure(name, description string, imageURL *string) *Infrastructure {
	now := time.Now().UTC()
	if imageURL != nil && *imageURL == "" {
		imageURL = nil
	}
	return &Infrastructure{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		ImageURL:    imageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// VoteCount holds aggregate counts for an infrastructure
type VoteCount struct {
	Votes int `json:"votes"`
}

// InfrastructureWithVotes is an infrastructure with its vote count
type InfrastructureWithVotes struct {
	Infrastructure
	Count VoteCount `json:"_count"`
}
