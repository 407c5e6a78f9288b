package dto

import (
	"time"

	"github.com/spec-kit/claims-service/internal/domain"
)

// AssignCaseRequest manually assigns a case.
type AssignCaseRequest struct {
	CaseID     int64                `json:"caseId"`
	AssignedTo int64                `json:"assignedTo"`
	Priority   domain.ClaimPriority `json:"priority"`
	DueDate    *time.Time           `json:"dueDate"`
	Notes      string               `json:"notes"`
}

// ReassignCaseRequest moves a case to a new assignee.
type ReassignCaseRequest struct {
	NewAssignee int64  `json:"newAssignee"`
	Reason      string `json:"reason"`
}

// EscalateCaseRequest escalates a case's current assignment.
type EscalateCaseRequest struct {
	EscalatedTo int64  `json:"escalatedTo"`
	Reason      string `json:"reason"`
}

// AssignmentResponse is the wire form of an assignment.
type AssignmentResponse struct {
	ID          string                  `json:"id"`
	CaseID      int64                   `json:"caseId"`
	AssignedTo  int64                   `json:"assignedTo"`
	AssignedBy  int64                   `json:"assignedBy"`
	AssignedAt  time.Time               `json:"assignedAt"`
	DueDate     *time.Time              `json:"dueDate,omitempty"`
	Priority    domain.ClaimPriority    `json:"priority"`
	Status      domain.AssignmentStatus `json:"status"`
	Notes       string                  `json:"notes"`
	EscalatedTo *int64                  `json:"escalatedTo,omitempty"`
	EscalatedAt *time.Time              `json:"escalatedAt,omitempty"`
}

// TeamMemberRequest registers or updates a team member.
type TeamMemberRequest struct {
	ID                 int64               `json:"id"`
	Name               string              `json:"name"`
	Email              string              `json:"email"`
	Role               domain.MemberRole   `json:"role"`
	Skills             []string            `json:"skills"`
	MaxCaseload        int                 `json:"maxCaseload"`
	CurrentCaseload    int                 `json:"currentCaseload"`
	Availability       domain.Availability `json:"availability"`
	AvgResolutionHours float64             `json:"avgResolutionHours"`
	SuccessRate        float64             `json:"successRate"`
}

// TeamMemberResponse is the wire form of a team member.
type TeamMemberResponse struct {
	ID                 int64               `json:"id"`
	Name               string              `json:"name"`
	Email              string              `json:"email"`
	Role               domain.MemberRole   `json:"role"`
	Skills             []string            `json:"skills"`
	MaxCaseload        int                 `json:"maxCaseload"`
	CurrentCaseload    int                 `json:"currentCaseload"`
	Availability       domain.Availability `json:"availability"`
	AvgResolutionHours float64             `json:"avgResolutionHours"`
	SuccessRate        float64             `json:"successRate"`
}

// RuleConditionsPayload mirrors rule conditions on the wire.
type RuleConditionsPayload struct {
	Carriers   []string               `json:"carriers"`
	Priorities []domain.ClaimPriority `json:"priorities"`
	MinAmount  *float64               `json:"minAmount"`
	MaxAmount  *float64               `json:"maxAmount"`
	Statuses   []domain.ClaimStatus   `json:"statuses"`
	Tags       []string               `json:"tags"`
}

// AssignmentRuleRequest registers a routing rule.
type AssignmentRuleRequest struct {
	Name               string                    `json:"name"`
	Priority           int                       `json:"priority"`
	Conditions         RuleConditionsPayload     `json:"conditions"`
	AssignTo           domain.AssignmentStrategy `json:"assignTo"`
	TargetUserID       *int64                    `json:"targetUserId"`
	AutoAssign         bool                      `json:"autoAssign"`
	NotifyAssignee     bool                      `json:"notifyAssignee"`
	EscalateAfterHours *int                      `json:"escalateAfterHours"`
}

// AssignmentRuleResponse is the wire form of a routing rule.
type AssignmentRuleResponse struct {
	ID                 string                    `json:"id"`
	Name               string                    `json:"name"`
	Priority           int                       `json:"priority"`
	Conditions         RuleConditionsPayload     `json:"conditions"`
	AssignTo           domain.AssignmentStrategy `json:"assignTo"`
	TargetUserID       *int64                    `json:"targetUserId,omitempty"`
	AutoAssign         bool                      `json:"autoAssign"`
	NotifyAssignee     bool                      `json:"notifyAssignee"`
	EscalateAfterHours *int                      `json:"escalateAfterHours,omitempty"`
}
