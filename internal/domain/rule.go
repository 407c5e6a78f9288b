package domain

// AssignmentStrategy selects how an assignee is chosen once a rule fires.
type AssignmentStrategy string

const (
	StrategyRoundRobin   AssignmentStrategy = "round_robin"
	StrategyLeastLoaded  AssignmentStrategy = "least_loaded"
	StrategyMostSkilled  AssignmentStrategy = "most_skilled"
	StrategySpecificUser AssignmentStrategy = "specific_user"
)

// RuleConditions filters which cases a rule applies to. Empty fields do not
// constrain the match.
type RuleConditions struct {
	Carriers   []string
	Priorities []ClaimPriority
	MinAmount  *float64
	MaxAmount  *float64
	Statuses   []ClaimStatus
	// Tags matches when the case carries at least one of these.
	Tags []string
}

// AssignmentRule routes matching cases to an assignee. Rules are evaluated in
// descending Priority order; the first match wins.
type AssignmentRule struct {
	ID         string
	Name       string
	Priority   int
	Conditions RuleConditions
	AssignTo   AssignmentStrategy
	// TargetUserID is consulted only for StrategySpecificUser.
	TargetUserID   *int64
	AutoAssign     bool
	NotifyAssignee bool
	// EscalateAfterHours is an SLA hint consumed by an external scheduler.
	EscalateAfterHours *int
}
