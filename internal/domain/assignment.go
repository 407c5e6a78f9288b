package domain

import "time"

// AssignmentStatus tracks the lifecycle of a case assignment.
// pending -> accepted -> in_progress -> completed. Escalation overwrites
// whatever status the current assignment holds; it only requires that the
// case has a current assignment.
type AssignmentStatus string

const (
	AssignmentStatusPending    AssignmentStatus = "pending"
	AssignmentStatusAccepted   AssignmentStatus = "accepted"
	AssignmentStatusInProgress AssignmentStatus = "in_progress"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
	AssignmentStatusEscalated  AssignmentStatus = "escalated"
)

// Assignment records who is working a case. Reassignment creates a fresh
// record; the superseded record stays in the history log untouched.
type Assignment struct {
	ID          string
	CaseID      int64
	AssignedTo  int64
	AssignedBy  int64
	AssignedAt  time.Time
	DueDate     *time.Time
	Priority    ClaimPriority
	Status      AssignmentStatus
	Notes       string
	EscalatedTo *int64
	EscalatedAt *time.Time
}
