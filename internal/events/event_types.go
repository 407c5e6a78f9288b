package events

import (
	"time"

	"github.com/spec-kit/claims-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventClaimCreated    EventType = "claim_created"
	EventClaimUpdated    EventType = "claim_updated"
	EventClaimRolledBack EventType = "claim_rolled_back"
	EventCaseAssigned    EventType = "case_assigned"
	EventCaseReassigned  EventType = "case_reassigned"
	EventCaseEscalated   EventType = "case_escalated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	CaseID    int64       `json:"case_id"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ClaimCreatedPayload payload.
type ClaimCreatedPayload struct {
	ClaimNumber string               `json:"claim_number"`
	Carrier     string               `json:"carrier"`
	Priority    domain.ClaimPriority `json:"priority"`
}

// ClaimUpdatedPayload payload.
type ClaimUpdatedPayload struct {
	Version int `json:"version"`
	Changes int `json:"changes"`
}

// ClaimRolledBackPayload payload.
type ClaimRolledBackPayload struct {
	FromVersion int `json:"from_version"`
	ToVersion   int `json:"to_version"`
}

// CaseAssignedPayload payload.
type CaseAssignedPayload struct {
	AssignmentID   string               `json:"assignment_id"`
	AssignedTo     int64                `json:"assigned_to"`
	Priority       domain.ClaimPriority `json:"priority"`
	NotifyAssignee bool                 `json:"notify_assignee"`
}

// CaseReassignedPayload payload.
type CaseReassignedPayload struct {
	AssignmentID string `json:"assignment_id"`
	PreviousUser int64  `json:"previous_user"`
	AssignedTo   int64  `json:"assigned_to"`
	Reason       string `json:"reason,omitempty"`
}

// CaseEscalatedPayload payload.
type CaseEscalatedPayload struct {
	AssignmentID string `json:"assignment_id"`
	EscalatedTo  int64  `json:"escalated_to"`
	Reason       string `json:"reason"`
}
