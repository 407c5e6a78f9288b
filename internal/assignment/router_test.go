package assignment

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/claims-service/internal/domain"
)

func member(id int64, name string, opts ...func(*domain.TeamMember)) *domain.TeamMember {
	m := &domain.TeamMember{
		ID:           id,
		Name:         name,
		Role:         domain.MemberRoleAgent,
		MaxCaseload:  5,
		Availability: domain.AvailabilityAvailable,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func withCaseload(n int) func(*domain.TeamMember) {
	return func(m *domain.TeamMember) { m.CurrentCaseload = n }
}

func withAvailability(a domain.Availability) func(*domain.TeamMember) {
	return func(m *domain.TeamMember) { m.Availability = a }
}

func withSkills(skills ...string) func(*domain.TeamMember) {
	return func(m *domain.TeamMember) { m.Skills = skills }
}

func withSuccessRate(rate float64) func(*domain.TeamMember) {
	return func(m *domain.TeamMember) { m.SuccessRate = rate }
}

func rule(name string, priority int, strategy domain.AssignmentStrategy, opts ...func(*domain.AssignmentRule)) *domain.AssignmentRule {
	r := &domain.AssignmentRule{
		ID:         name,
		Name:       name,
		Priority:   priority,
		AssignTo:   strategy,
		AutoAssign: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func TestAddTeamMemberUpsert(t *testing.T) {
	r := NewRouter(nil, nil)
	r.AddTeamMember(member(1, "Alice"))
	r.AddTeamMember(member(2, "Bob"))
	r.AddTeamMember(member(1, "Alice Updated", withCaseload(3)))

	got := r.GetTeamMember(1)
	require.NotNil(t, got)
	assert.Equal(t, "Alice Updated", got.Name)
	assert.Equal(t, 3, got.CurrentCaseload)

	members := r.ListTeamMembers(TeamMemberFilter{})
	require.Len(t, members, 2)
	// Re-registering keeps the original position.
	assert.Equal(t, int64(1), members[0].ID)
	assert.Equal(t, int64(2), members[1].ID)
}

func TestListTeamMembersFilters(t *testing.T) {
	r := NewRouter(nil, nil)
	r.AddTeamMember(member(1, "Alice", withSkills("FedEx")))
	r.AddTeamMember(member(2, "Bob", withAvailability(domain.AvailabilityBusy)))
	supervisor := member(3, "Carol", withSkills("UPS", "DHL"))
	supervisor.Role = domain.MemberRoleSupervisor
	r.AddTeamMember(supervisor)

	role := domain.MemberRoleSupervisor
	byRole := r.ListTeamMembers(TeamMemberFilter{Role: &role})
	require.Len(t, byRole, 1)
	assert.Equal(t, int64(3), byRole[0].ID)

	avail := domain.AvailabilityBusy
	byAvail := r.ListTeamMembers(TeamMemberFilter{Availability: &avail})
	require.Len(t, byAvail, 1)
	assert.Equal(t, int64(2), byAvail[0].ID)

	bySkill := r.ListTeamMembers(TeamMemberFilter{Skills: []string{"DHL", "FedEx"}})
	require.Len(t, bySkill, 2)
	assert.Equal(t, int64(1), bySkill[0].ID)
	assert.Equal(t, int64(3), bySkill[1].ID)
}

func TestAssignCase(t *testing.T) {
	r := NewRouter(nil, nil)
	r.AddTeamMember(member(1, "Alice"))

	a := r.AssignCase(AssignCaseInput{CaseID: 10, AssignedTo: 1, AssignedBy: 99, Notes: "manual"})
	require.NotNil(t, a)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, domain.AssignmentStatusPending, a.Status)
	assert.Equal(t, domain.ClaimPriorityMedium, a.Priority)
	assert.Equal(t, 1, r.GetTeamMember(1).CurrentCaseload)
	assert.Equal(t, a, r.GetAssignment(10))
}

func TestAutoAssignNoMatchingRule(t *testing.T) {
	r := NewRouter(nil, nil)
	r.AddTeamMember(member(1, "Alice"))

	assert.Nil(t, r.AutoAssignCase(AutoAssignInput{CaseID: 10}))
}

func TestAutoAssignRuleNotFlaggedForAutoAssign(t *testing.T) {
	r := NewRouter(nil, nil)
	r.AddTeamMember(member(1, "Alice"))
	manual := rule("manual-only", 10, domain.StrategyRoundRobin)
	manual.AutoAssign = false
	r.AddRule(manual)

	assert.Nil(t, r.AutoAssignCase(AutoAssignInput{CaseID: 10}))
}

func TestAutoAssignRoundRobinRotates(t *testing.T) {
	r := NewRouter(nil, nil)
	r.AddTeamMember(member(1, "Alice"))
	r.AddTeamMember(member(2, "Bob"))
	r.AddTeamMember(member(3, "Carol"))
	r.AddRule(rule("rr", 10, domain.StrategyRoundRobin))

	seen := make(map[int64]bool)
	for caseID := int64(1); caseID <= 3; caseID++ {
		a := r.AutoAssignCase(AutoAssignInput{CaseID: caseID, AssignedBy: 99})
		require.NotNil(t, a)
		seen[a.AssignedTo] = true
	}
	assert.Len(t, seen, 3)
}

func TestAutoAssignLeastLoaded(t *testing.T) {
	r := NewRouter(nil, nil)
	r.AddTeamMember(member(1, "Alice", withCaseload(4)))
	r.AddTeamMember(member(2, "Bob", withCaseload(1)))
	r.AddTeamMember(member(3, "Carol", withCaseload(2)))
	r.AddRule(rule("ll", 10, domain.StrategyLeastLoaded))

	a := r.AutoAssignCase(AutoAssignInput{CaseID: 10, AssignedBy: 99})
	require.NotNil(t, a)
	assert.Equal(t, int64(2), a.AssignedTo)
}

func TestAutoAssignMostSkilled(t *testing.T) {
	r := NewRouter(nil, nil)
	r.AddTeamMember(member(1, "Alice", withSkills("FedEx"), withSuccessRate(0.7)))
	r.AddTeamMember(member(2, "Bob", withSkills("FedEx"), withSuccessRate(0.9)))
	r.AddTeamMember(member(3, "Carol", withSkills("UPS"), withSuccessRate(0.95)))
	r.AddRule(rule("ms", 10, domain.StrategyMostSkilled))

	a := r.AutoAssignCase(AutoAssignInput{
		CaseID:     10,
		AssignedBy: 99,
		Attributes: CaseAttributes{Carrier: "FedEx"},
	})
	require.NotNil(t, a)
	assert.Equal(t, int64(2), a.AssignedTo)
}

func TestAutoAssignMostSkilledNoCandidate(t *testing.T) {
	r := NewRouter(nil, nil)
	r.AddTeamMember(member(1, "Alice", withSkills("UPS")))
	r.AddRule(rule("ms", 10, domain.StrategyMostSkilled))

	a := r.AutoAssignCase(AutoAssignInput{
		CaseID:     10,
		Attributes: CaseAttributes{Carrier: "FedEx"},
	})
	assert.Nil(t, a)
}

func TestAutoAssignSpecificUserBypassesEligibility(t *testing.T) {
	r := NewRouter(nil, nil)
	// Offline and at capacity, yet still targeted directly.
	r.AddTeamMember(member(1, "Alice", withAvailability(domain.AvailabilityOffline), withCaseload(5)))
	target := int64(1)
	r.AddRule(rule("su", 10, domain.StrategySpecificUser, func(ar *domain.AssignmentRule) {
		ar.TargetUserID = &target
	}))

	a := r.AutoAssignCase(AutoAssignInput{CaseID: 10, AssignedBy: 99})
	require.NotNil(t, a)
	assert.Equal(t, int64(1), a.AssignedTo)
}

func TestAutoAssignSpecificUserUnknownTarget(t *testing.T) {
	r := NewRouter(nil, nil)
	target := int64(404)
	r.AddRule(rule("su", 10, domain.StrategySpecificUser, func(ar *domain.AssignmentRule) {
		ar.TargetUserID = &target
	}))

	assert.Nil(t, r.AutoAssignCase(AutoAssignInput{CaseID: 10}))
}

func TestAutoAssignExhaustedCapacity(t *testing.T) {
	r := NewRouter(nil, nil)
	m := member(1, "Alice")
	m.MaxCaseload = 2
	r.AddTeamMember(m)
	r.AddRule(rule("ll", 10, domain.StrategyLeastLoaded))

	require.NotNil(t, r.AutoAssignCase(AutoAssignInput{CaseID: 1}))
	require.NotNil(t, r.AutoAssignCase(AutoAssignInput{CaseID: 2}))
	assert.Nil(t, r.AutoAssignCase(AutoAssignInput{CaseID: 3}))
	assert.Equal(t, 2, r.GetTeamMember(1).CurrentCaseload)
}

func TestRuleOrderingHighestPriorityWins(t *testing.T) {
	r := NewRouter(nil, nil)
	r.AddTeamMember(member(1, "Alice"))
	low := int64(1)
	r.AddRule(rule("low", 1, domain.StrategySpecificUser, func(ar *domain.AssignmentRule) {
		ar.TargetUserID = &low
	}))
	r.AddTeamMember(member(2, "Bob"))
	high := int64(2)
	r.AddRule(rule("high", 100, domain.StrategySpecificUser, func(ar *domain.AssignmentRule) {
		ar.TargetUserID = &high
	}))

	rules := r.GetRules()
	require.Len(t, rules, 2)
	assert.Equal(t, "high", rules[0].Name)

	a := r.AutoAssignCase(AutoAssignInput{CaseID: 10})
	require.NotNil(t, a)
	assert.Equal(t, int64(2), a.AssignedTo)
}

func TestRuleConditionsMatching(t *testing.T) {
	amount := func(v float64) *float64 { return &v }

	tests := []struct {
		name  string
		cond  domain.RuleConditions
		attrs CaseAttributes
		want  bool
	}{
		{
			name:  "no conditions always match",
			attrs: CaseAttributes{Carrier: "FedEx"},
			want:  true,
		},
		{
			name:  "carrier match",
			cond:  domain.RuleConditions{Carriers: []string{"FedEx", "UPS"}},
			attrs: CaseAttributes{Carrier: "UPS"},
			want:  true,
		},
		{
			name:  "carrier mismatch",
			cond:  domain.RuleConditions{Carriers: []string{"FedEx"}},
			attrs: CaseAttributes{Carrier: "DHL"},
			want:  false,
		},
		{
			name: "missing carrier satisfies carrier condition",
			cond: domain.RuleConditions{Carriers: []string{"FedEx"}},
			want: true,
		},
		{
			name:  "amount within range",
			cond:  domain.RuleConditions{MinAmount: amount(100), MaxAmount: amount(500)},
			attrs: CaseAttributes{ClaimedAmount: amount(250)},
			want:  true,
		},
		{
			name:  "amount below min",
			cond:  domain.RuleConditions{MinAmount: amount(100)},
			attrs: CaseAttributes{ClaimedAmount: amount(50)},
			want:  false,
		},
		{
			name:  "amount above max",
			cond:  domain.RuleConditions{MaxAmount: amount(500)},
			attrs: CaseAttributes{ClaimedAmount: amount(501)},
			want:  false,
		},
		{
			name: "missing amount satisfies amount condition",
			cond: domain.RuleConditions{MinAmount: amount(100)},
			want: true,
		},
		{
			name:  "priority mismatch",
			cond:  domain.RuleConditions{Priorities: []domain.ClaimPriority{domain.ClaimPriorityUrgent}},
			attrs: CaseAttributes{Priority: domain.ClaimPriorityLow},
			want:  false,
		},
		{
			name:  "status match",
			cond:  domain.RuleConditions{Statuses: []domain.ClaimStatus{domain.ClaimStatusSubmitted}},
			attrs: CaseAttributes{Status: domain.ClaimStatusSubmitted},
			want:  true,
		},
		{
			name:  "tag overlap",
			cond:  domain.RuleConditions{Tags: []string{"fragile", "vip"}},
			attrs: CaseAttributes{Tags: []string{"vip"}},
			want:  true,
		},
		{
			name:  "no tag overlap",
			cond:  domain.RuleConditions{Tags: []string{"fragile"}},
			attrs: CaseAttributes{Tags: []string{"standard"}},
			want:  false,
		},
		{
			name: "missing tags satisfy tag condition",
			cond: domain.RuleConditions{Tags: []string{"fragile"}},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ruleMatches(&domain.AssignmentRule{Conditions: tt.cond}, tt.attrs)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReassignCase(t *testing.T) {
	r := NewRouter(nil, nil)
	r.AddTeamMember(member(1, "Alice"))
	r.AddTeamMember(member(2, "Bob"))

	first := r.AssignCase(AssignCaseInput{CaseID: 10, AssignedTo: 1, AssignedBy: 99})
	second := r.ReassignCase(ReassignInput{CaseID: 10, NewAssignee: 2, ReassignedBy: 99, Reason: "vacation"})
	require.NotNil(t, second)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, int64(2), second.AssignedTo)
	assert.Equal(t, "vacation", second.Notes)
	assert.Equal(t, 0, r.GetTeamMember(1).CurrentCaseload)
	assert.Equal(t, 1, r.GetTeamMember(2).CurrentCaseload)
	assert.Equal(t, second, r.GetAssignment(10))

	history := r.GetAssignmentHistory(10)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].ID)
	assert.Equal(t, second.ID, history[1].ID)
}

func TestReassignCaseWithoutAssignment(t *testing.T) {
	r := NewRouter(nil, nil)
	assert.Nil(t, r.ReassignCase(ReassignInput{CaseID: 10, NewAssignee: 2}))
}

func TestEscalateCase(t *testing.T) {
	r := NewRouter(nil, nil)
	r.AddTeamMember(member(1, "Alice"))
	a := r.AssignCase(AssignCaseInput{CaseID: 10, AssignedTo: 1, AssignedBy: 99, Notes: "needs review"})

	escalated := r.EscalateCase(EscalateInput{CaseID: 10, EscalatedTo: 7, EscalatedBy: 99, Reason: "SLA breach"})
	require.NotNil(t, escalated)
	assert.Equal(t, a.ID, escalated.ID)
	assert.Equal(t, domain.AssignmentStatusEscalated, escalated.Status)
	require.NotNil(t, escalated.EscalatedTo)
	assert.Equal(t, int64(7), *escalated.EscalatedTo)
	assert.NotNil(t, escalated.EscalatedAt)
	assert.Equal(t, "needs review\nEscalated: SLA breach", escalated.Notes)
}

func TestEscalateCaseWithoutAssignment(t *testing.T) {
	r := NewRouter(nil, nil)
	assert.Nil(t, r.EscalateCase(EscalateInput{CaseID: 10, EscalatedTo: 7}))
}

func TestGetUserAssignments(t *testing.T) {
	r := NewRouter(nil, nil)
	r.AddTeamMember(member(1, "Alice"))

	a1 := r.AssignCase(AssignCaseInput{CaseID: 10, AssignedTo: 1})
	a2 := r.AssignCase(AssignCaseInput{CaseID: 11, AssignedTo: 1})
	r.AssignCase(AssignCaseInput{CaseID: 12, AssignedTo: 2})
	r.EscalateCase(EscalateInput{CaseID: 11, EscalatedTo: 7, Reason: "stuck"})

	all := r.GetUserAssignments(1, nil)
	require.Len(t, all, 2)
	assert.Equal(t, a1.ID, all[0].ID)
	assert.Equal(t, a2.ID, all[1].ID)

	pending := domain.AssignmentStatusPending
	onlyPending := r.GetUserAssignments(1, &pending)
	require.Len(t, onlyPending, 1)
	assert.Equal(t, a1.ID, onlyPending[0].ID)
}

func TestAccessorsReturnDetachedCopies(t *testing.T) {
	r := NewRouter(nil, nil)
	r.AddTeamMember(member(1, "Alice", withSkills("FedEx")))
	a := r.AssignCase(AssignCaseInput{CaseID: 10, AssignedTo: 1, Notes: "original"})

	// Scribbling on returned values must not reach router state.
	a.Notes = "scribbled"
	a.Status = domain.AssignmentStatusCompleted
	got := r.GetAssignment(10)
	assert.Equal(t, "original", got.Notes)
	assert.Equal(t, domain.AssignmentStatusPending, got.Status)

	m := r.GetTeamMember(1)
	m.CurrentCaseload = 99
	m.Skills[0] = "DHL"
	assert.Equal(t, 1, r.GetTeamMember(1).CurrentCaseload)
	assert.Equal(t, []string{"FedEx"}, r.GetTeamMember(1).Skills)

	listed := r.ListTeamMembers(TeamMemberFilter{})
	listed[0].Availability = domain.AvailabilityOffline
	assert.Equal(t, domain.AvailabilityAvailable, r.GetTeamMember(1).Availability)

	history := r.GetAssignmentHistory(10)
	history[0].Notes = "rewritten"
	assert.Equal(t, "original", r.GetAssignment(10).Notes)
}

func TestConcurrentEscalationAndReads(t *testing.T) {
	r := NewRouter(nil, nil)
	r.AddTeamMember(member(1, "Alice"))
	r.AssignCase(AssignCaseInput{CaseID: 7, AssignedTo: 1})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			r.EscalateCase(EscalateInput{CaseID: 7, EscalatedTo: 2, EscalatedBy: 99, Reason: "slow"})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if a := r.GetAssignment(7); a != nil {
				_ = a.Notes
				_ = a.Status
			}
			r.GetTeamMember(1)
			r.GetUserAssignments(1, nil)
		}
	}()
	wg.Wait()

	final := r.GetAssignment(7)
	require.NotNil(t, final)
	assert.Equal(t, domain.AssignmentStatusEscalated, final.Status)
	require.NotNil(t, final.EscalatedTo)
	assert.Equal(t, int64(2), *final.EscalatedTo)
}

func TestGetWorkloadStats(t *testing.T) {
	r := NewRouter(nil, nil)
	r.AddTeamMember(member(1, "Alice", withCaseload(5))) // at max, overloaded
	r.AddTeamMember(member(2, "Bob", withCaseload(1), withAvailability(domain.AvailabilityBusy)))
	r.AddTeamMember(member(3, "Carol", withAvailability(domain.AvailabilityAway)))

	stats := r.GetWorkloadStats()
	assert.Equal(t, 3, stats.TotalMembers)
	assert.Equal(t, 1, stats.Available)
	assert.Equal(t, 1, stats.Busy)
	assert.Equal(t, 1, stats.Away)
	assert.Equal(t, 6, stats.TotalCaseload)
	assert.Equal(t, 1, stats.Overloaded)
	assert.InDelta(t, 2.0, stats.AvgCaseload, 1e-9)
}
