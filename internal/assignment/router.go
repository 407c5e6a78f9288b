package assignment

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/claims-service/internal/domain"
	"github.com/spec-kit/claims-service/internal/events"
)

// Router holds the team-member registry, the prioritized rule list, and all
// assignment state, and routes cases to assignees. All state is in-memory and
// guarded by one mutex; every public method hands out copies, never pointers
// into the guarded state. Nothing here is durable across restarts.
type Router struct {
	mu          sync.RWMutex
	members     map[int64]*domain.TeamMember
	memberOrder []int64
	rules       []*domain.AssignmentRule
	current     map[int64]*domain.Assignment
	history     []*domain.Assignment
	logger      *zap.Logger
	dispatcher  events.Dispatcher
}

// WorkloadStats summarizes team capacity.
type WorkloadStats struct {
	TotalMembers  int     `json:"totalMembers"`
	Available     int     `json:"available"`
	Busy          int     `json:"busy"`
	Away          int     `json:"away"`
	TotalCaseload int     `json:"totalCaseload"`
	AvgCaseload   float64 `json:"avgCaseload"`
	Overloaded    int     `json:"overloaded"`
}

// AssignCaseInput describes a manual assignment.
type AssignCaseInput struct {
	CaseID     int64
	AssignedTo int64
	AssignedBy int64
	Priority   domain.ClaimPriority
	DueDate    *time.Time
	Notes      string
}

// AutoAssignInput describes a rule-driven assignment request.
type AutoAssignInput struct {
	CaseID     int64
	Attributes CaseAttributes
	AssignedBy int64
}

// ReassignInput moves a case to a new assignee.
type ReassignInput struct {
	CaseID       int64
	NewAssignee  int64
	ReassignedBy int64
	Reason       string
}

// EscalateInput escalates the current assignment of a case.
type EscalateInput struct {
	CaseID      int64
	EscalatedTo int64
	EscalatedBy int64
	Reason      string
}

// TeamMemberFilter narrows ListTeamMembers results.
type TeamMemberFilter struct {
	Role         *domain.MemberRole
	Availability *domain.Availability
	// Skills is an any-match filter: a member qualifies when it has at
	// least one of the requested skills.
	Skills []string
}

// NewRouter creates an empty router. The dispatcher may be nil.
func NewRouter(logger *zap.Logger, dispatcher events.Dispatcher) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		members:    make(map[int64]*domain.TeamMember),
		current:    make(map[int64]*domain.Assignment),
		logger:     logger,
		dispatcher: dispatcher,
	}
}

// AddTeamMember upserts a member by id. Re-registering keeps the member's
// original position in the selection order. The router stores its own copy,
// so later mutations of the argument do not reach router state.
func (r *Router) AddTeamMember(member *domain.TeamMember) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.members[member.ID]; !exists {
		r.memberOrder = append(r.memberOrder, member.ID)
	}
	r.members[member.ID] = cloneMember(member)
}

// GetTeamMember returns a copy of the member with the given id, or nil.
func (r *Router) GetTeamMember(userID int64) *domain.TeamMember {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneMember(r.members[userID])
}

// ListTeamMembers returns members matching the filter, in registration order.
func (r *Router) ListTeamMembers(filter TeamMemberFilter) []*domain.TeamMember {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.TeamMember, 0, len(r.memberOrder))
	for _, id := range r.memberOrder {
		m := r.members[id]
		if m == nil {
			continue
		}
		if filter.Role != nil && m.Role != *filter.Role {
			continue
		}
		if filter.Availability != nil && m.Availability != *filter.Availability {
			continue
		}
		if len(filter.Skills) > 0 && !hasAnySkill(m, filter.Skills) {
			continue
		}
		result = append(result, cloneMember(m))
	}
	return result
}

// AssignCase creates a pending assignment and makes it the case's current
// one. Manual assignment applies no capacity check; capacity only filters
// candidates during auto-assignment.
func (r *Router) AssignCase(input AssignCaseInput) *domain.Assignment {
	r.mu.Lock()
	a := cloneAssignment(r.assignLocked(input))
	r.mu.Unlock()

	r.publishAssigned(a, false)
	return a
}

// AutoAssignCase finds the highest-priority matching rule and selects an
// assignee via its strategy. Returns nil when no rule matches, the matching
// rule is not flagged for auto-assignment, or no eligible assignee exists.
func (r *Router) AutoAssignCase(input AutoAssignInput) *domain.Assignment {
	r.mu.Lock()

	rule := r.matchRuleLocked(input.Attributes)
	if rule == nil || !rule.AutoAssign {
		r.mu.Unlock()
		return nil
	}
	assignee := r.findBestAssignee(rule, input.Attributes)
	if assignee == nil {
		r.mu.Unlock()
		r.logger.Debug("no eligible assignee",
			zap.Int64("case_id", input.CaseID),
			zap.String("rule", rule.Name))
		return nil
	}

	a := cloneAssignment(r.assignLocked(AssignCaseInput{
		CaseID:     input.CaseID,
		AssignedTo: assignee.ID,
		AssignedBy: input.AssignedBy,
		Priority:   input.Attributes.Priority,
	}))
	notify := rule.NotifyAssignee
	r.mu.Unlock()

	r.logger.Info("auto-assigned case",
		zap.Int64("case_id", input.CaseID),
		zap.Int64("assigned_to", assignee.ID),
		zap.String("rule", rule.Name),
		zap.String("strategy", string(rule.AssignTo)))
	r.publishAssigned(a, notify)
	return a
}

// ReassignCase rewinds the previous assignee's caseload and registers a fresh
// assignment record. Returns nil when the case has no current assignment.
func (r *Router) ReassignCase(input ReassignInput) *domain.Assignment {
	r.mu.Lock()

	old := r.current[input.CaseID]
	if old == nil {
		r.mu.Unlock()
		return nil
	}
	if prev := r.members[old.AssignedTo]; prev != nil && prev.CurrentCaseload > 0 {
		prev.CurrentCaseload--
	}

	a := &domain.Assignment{
		ID:         uuid.NewString(),
		CaseID:     input.CaseID,
		AssignedTo: input.NewAssignee,
		AssignedBy: input.ReassignedBy,
		AssignedAt: time.Now().UTC(),
		DueDate:    old.DueDate,
		Priority:   old.Priority,
		Status:     domain.AssignmentStatusPending,
		Notes:      input.Reason,
	}
	r.current[input.CaseID] = a
	r.history = append(r.history, a)
	if next := r.members[input.NewAssignee]; next != nil {
		next.CurrentCaseload++
	}
	previousUser := old.AssignedTo
	a = cloneAssignment(a)
	r.mu.Unlock()

	r.logger.Info("reassigned case",
		zap.Int64("case_id", input.CaseID),
		zap.Int64("from", previousUser),
		zap.Int64("to", input.NewAssignee))
	r.publish(events.EventCaseReassigned, a.CaseID, input.ReassignedBy, events.CaseReassignedPayload{
		AssignmentID: a.ID,
		PreviousUser: previousUser,
		AssignedTo:   a.AssignedTo,
		Reason:       input.Reason,
	})
	return a
}

// EscalateCase marks the current assignment escalated in place and appends
// the reason to its notes. Returns nil when the case has no assignment.
func (r *Router) EscalateCase(input EscalateInput) *domain.Assignment {
	r.mu.Lock()

	a := r.current[input.CaseID]
	if a == nil {
		r.mu.Unlock()
		return nil
	}
	now := time.Now().UTC()
	a.Status = domain.AssignmentStatusEscalated
	a.EscalatedTo = &input.EscalatedTo
	a.EscalatedAt = &now
	a.Notes += fmt.Sprintf("\nEscalated: %s", input.Reason)
	a = cloneAssignment(a)
	r.mu.Unlock()

	r.logger.Warn("escalated case",
		zap.Int64("case_id", input.CaseID),
		zap.Int64("escalated_to", input.EscalatedTo))
	r.publish(events.EventCaseEscalated, a.CaseID, input.EscalatedBy, events.CaseEscalatedPayload{
		AssignmentID: a.ID,
		EscalatedTo:  input.EscalatedTo,
		Reason:       input.Reason,
	})
	return a
}

// GetAssignment returns a copy of the case's current assignment, or nil.
func (r *Router) GetAssignment(caseID int64) *domain.Assignment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAssignment(r.current[caseID])
}

// GetUserAssignments returns the user's current assignments, optionally
// narrowed by status, ordered by assignment time.
func (r *Router) GetUserAssignments(userID int64, status *domain.AssignmentStatus) []*domain.Assignment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Assignment, 0)
	for _, a := range r.current {
		if a.AssignedTo != userID {
			continue
		}
		if status != nil && a.Status != *status {
			continue
		}
		result = append(result, cloneAssignment(a))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].AssignedAt.Equal(result[j].AssignedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].AssignedAt.Before(result[j].AssignedAt)
	})
	return result
}

// GetAssignmentHistory returns every assignment ever created for the case, in
// creation order.
func (r *Router) GetAssignmentHistory(caseID int64) []*domain.Assignment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Assignment, 0)
	for _, a := range r.history {
		if a.CaseID == caseID {
			result = append(result, cloneAssignment(a))
		}
	}
	return result
}

// AddRule registers a rule and keeps the list sorted by descending priority.
// Equal priorities preserve insertion order.
func (r *Router) AddRule(rule *domain.AssignmentRule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule)
	sort.SliceStable(r.rules, func(i, j int) bool {
		return r.rules[i].Priority > r.rules[j].Priority
	})
}

// GetRules returns the prioritized rule list.
func (r *Router) GetRules() []*domain.AssignmentRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*domain.AssignmentRule{}, r.rules...)
}

// GetWorkloadStats summarizes team availability and caseload.
func (r *Router) GetWorkloadStats() WorkloadStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := WorkloadStats{TotalMembers: len(r.members)}
	for _, m := range r.members {
		switch m.Availability {
		case domain.AvailabilityAvailable:
			stats.Available++
		case domain.AvailabilityBusy:
			stats.Busy++
		case domain.AvailabilityAway:
			stats.Away++
		}
		stats.TotalCaseload += m.CurrentCaseload
		if m.CurrentCaseload >= m.MaxCaseload {
			stats.Overloaded++
		}
	}
	if stats.TotalMembers > 0 {
		stats.AvgCaseload = float64(stats.TotalCaseload) / float64(stats.TotalMembers)
	}
	return stats
}

func (r *Router) assignLocked(input AssignCaseInput) *domain.Assignment {
	priority := input.Priority
	if priority == "" {
		priority = domain.ClaimPriorityMedium
	}
	a := &domain.Assignment{
		ID:         uuid.NewString(),
		CaseID:     input.CaseID,
		AssignedTo: input.AssignedTo,
		AssignedBy: input.AssignedBy,
		AssignedAt: time.Now().UTC(),
		DueDate:    input.DueDate,
		Priority:   priority,
		Status:     domain.AssignmentStatusPending,
		Notes:      input.Notes,
	}
	r.current[input.CaseID] = a
	r.history = append(r.history, a)
	if m := r.members[input.AssignedTo]; m != nil {
		m.CurrentCaseload++
	}
	return a
}

// matchRuleLocked returns the first matching rule; rules are kept sorted
// descending by priority, so the first match is the highest-priority one.
func (r *Router) matchRuleLocked(attrs CaseAttributes) *domain.AssignmentRule {
	for _, rule := range r.rules {
		if ruleMatches(rule, attrs) {
			return rule
		}
	}
	return nil
}

func (r *Router) publishAssigned(a *domain.Assignment, notify bool) {
	r.publish(events.EventCaseAssigned, a.CaseID, a.AssignedBy, events.CaseAssignedPayload{
		AssignmentID:   a.ID,
		AssignedTo:     a.AssignedTo,
		Priority:       a.Priority,
		NotifyAssignee: notify,
	})
}

func (r *Router) publish(eventType events.EventType, caseID, actorID int64, payload any) {
	if r.dispatcher == nil {
		return
	}
	_ = r.dispatcher.Publish(context.Background(), events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		CaseID:    caseID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

// cloneAssignment copies an assignment so router state never escapes the
// lock. Returned copies are safe to read and mutate without it.
func cloneAssignment(a *domain.Assignment) *domain.Assignment {
	if a == nil {
		return nil
	}
	cp := *a
	if a.DueDate != nil {
		due := *a.DueDate
		cp.DueDate = &due
	}
	if a.EscalatedTo != nil {
		to := *a.EscalatedTo
		cp.EscalatedTo = &to
	}
	if a.EscalatedAt != nil {
		at := *a.EscalatedAt
		cp.EscalatedAt = &at
	}
	return &cp
}

func cloneMember(m *domain.TeamMember) *domain.TeamMember {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Skills = append([]string(nil), m.Skills...)
	return &cp
}

func hasAnySkill(m *domain.TeamMember, skills []string) bool {
	for _, skill := range skills {
		if m.HasSkill(skill) {
			return true
		}
	}
	return false
}
