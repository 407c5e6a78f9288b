package domain

import "time"

// ClaimStatus enumerates lifecycle states for carrier dispute claims.
type ClaimStatus string

const (
	ClaimStatusDraft          ClaimStatus = "DRAFT"
	ClaimStatusSubmitted      ClaimStatus = "SUBMITTED"
	ClaimStatusUnderReview    ClaimStatus = "UNDER_REVIEW"
	ClaimStatusPendingCarrier ClaimStatus = "PENDING_CARRIER"
	ClaimStatusApproved       ClaimStatus = "APPROVED"
	ClaimStatusDenied         ClaimStatus = "DENIED"
	ClaimStatusClosed         ClaimStatus = "CLOSED"
)

// ClaimPriority enumerates SLA urgency.
type ClaimPriority string

const (
	ClaimPriorityLow    ClaimPriority = "LOW"
	ClaimPriorityMedium ClaimPriority = "MEDIUM"
	ClaimPriorityHigh   ClaimPriority = "HIGH"
	ClaimPriorityUrgent ClaimPriority = "URGENT"
)

// ClaimCase is the aggregate for a carrier shipping dispute.
type ClaimCase struct {
	ID             int64
	ClaimNumber    string
	Carrier        string
	TrackingNumber string
	CustomerName   string
	Status         ClaimStatus
	Priority       ClaimPriority
	ClaimedAmount  float64
	ApprovedAmount *float64
	Description    string
	Tags           []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ClosedAt       *time.Time
}
