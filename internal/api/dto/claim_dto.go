package dto

import (
	"time"

	"github.com/spec-kit/claims-service/internal/domain"
)

// CreateClaimRequest is the payload for opening a dispute claim.
type CreateClaimRequest struct {
	Carrier        string               `json:"carrier"`
	TrackingNumber string               `json:"trackingNumber"`
	CustomerName   string               `json:"customerName"`
	Description    string               `json:"description"`
	Priority       domain.ClaimPriority `json:"priority"`
	ClaimedAmount  float64              `json:"claimedAmount"`
	Tags           []string             `json:"tags"`
}

// UpdateClaimRequest is a partial claim update; omitted fields are untouched.
type UpdateClaimRequest struct {
	Carrier        *string               `json:"carrier"`
	TrackingNumber *string               `json:"trackingNumber"`
	CustomerName   *string               `json:"customerName"`
	Status         *domain.ClaimStatus   `json:"status"`
	Priority       *domain.ClaimPriority `json:"priority"`
	ClaimedAmount  *float64              `json:"claimedAmount"`
	ApprovedAmount *float64              `json:"approvedAmount"`
	Description    *string               `json:"description"`
	Tags           []string              `json:"tags"`
	Comment        *string               `json:"comment"`
	VersionTags    []string              `json:"versionTags"`
}

// ClaimResponse is the wire form of a claim case.
type ClaimResponse struct {
	ID             int64                `json:"id"`
	ClaimNumber    string               `json:"claimNumber"`
	Carrier        string               `json:"carrier"`
	TrackingNumber string               `json:"trackingNumber"`
	CustomerName   string               `json:"customerName"`
	Status         domain.ClaimStatus   `json:"status"`
	Priority       domain.ClaimPriority `json:"priority"`
	ClaimedAmount  float64              `json:"claimedAmount"`
	ApprovedAmount *float64             `json:"approvedAmount,omitempty"`
	Description    string               `json:"description"`
	Tags           []string             `json:"tags"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
	ClosedAt       *time.Time           `json:"closedAt,omitempty"`
}
