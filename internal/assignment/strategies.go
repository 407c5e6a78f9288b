package assignment

import (
	"sort"
	"time"

	"github.com/spec-kit/claims-service/internal/domain"
)

// specificUserBypassesEligibility preserves a long-standing quirk: the
// specific_user strategy returns its target member without the availability
// and capacity checks every other strategy applies.
const specificUserBypassesEligibility = true

// findBestAssignee selects an assignee for the rule's strategy from the pool
// of available members with spare capacity. Returns nil when no candidate
// qualifies. Callers must hold the router lock.
func (r *Router) findBestAssignee(rule *domain.AssignmentRule, attrs CaseAttributes) *domain.TeamMember {
	if rule.AssignTo == domain.StrategySpecificUser && specificUserBypassesEligibility {
		if rule.TargetUserID == nil {
			return nil
		}
		return r.members[*rule.TargetUserID]
	}

	pool := r.eligibleMembersLocked()
	if len(pool) == 0 {
		return nil
	}

	switch rule.AssignTo {
	case domain.StrategyRoundRobin:
		last := r.lastAssignedAtLocked()
		sort.SliceStable(pool, func(i, j int) bool {
			return last[pool[i].ID].Before(last[pool[j].ID])
		})
		return pool[0]

	case domain.StrategyLeastLoaded:
		sort.SliceStable(pool, func(i, j int) bool {
			return pool[i].CurrentCaseload < pool[j].CurrentCaseload
		})
		return pool[0]

	case domain.StrategyMostSkilled:
		candidates := pool
		if attrs.Carrier != "" {
			candidates = make([]*domain.TeamMember, 0, len(pool))
			for _, m := range pool {
				if m.HasSkill(attrs.Carrier) {
					candidates = append(candidates, m)
				}
			}
			if len(candidates) == 0 {
				return nil
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].SuccessRate > candidates[j].SuccessRate
		})
		return candidates[0]

	default:
		return pool[0]
	}
}

// eligibleMembersLocked returns available members with spare capacity in
// registration order, so stable sorts downstream stay deterministic.
func (r *Router) eligibleMembersLocked() []*domain.TeamMember {
	pool := make([]*domain.TeamMember, 0, len(r.memberOrder))
	for _, id := range r.memberOrder {
		m := r.members[id]
		if m == nil {
			continue
		}
		if m.Availability == domain.AvailabilityAvailable && m.HasSpareCapacity() {
			pool = append(pool, m)
		}
	}
	return pool
}

// lastAssignedAtLocked maps each member to the timestamp of their most recent
// assignment. Members never assigned map to the zero time and so sort first.
func (r *Router) lastAssignedAtLocked() map[int64]time.Time {
	last := make(map[int64]time.Time, len(r.members))
	for _, a := range r.history {
		if a.AssignedAt.After(last[a.AssignedTo]) {
			last[a.AssignedTo] = a.AssignedAt
		}
	}
	return last
}
