package assignment

import (
	"github.com/spec-kit/claims-service/internal/domain"
)

// MissingFieldPolicy controls how a rule condition is treated when the
// incoming case data does not carry the conditioned field.
type MissingFieldPolicy string

// MissingFieldPolicyIgnore treats absent case fields as vacuously satisfying
// any condition on them. This preserves the historical (permissive) matching
// behavior; a rule conditioned on carrier still fires for a case that never
// reported its carrier.
const MissingFieldPolicyIgnore MissingFieldPolicy = "ignore"

// CaseAttributes is the explicit record of case fields the router consults.
// Zero values (empty string, nil pointer, empty slice) mean "not provided".
type CaseAttributes struct {
	Carrier       string
	Priority      domain.ClaimPriority
	ClaimedAmount *float64
	Status        domain.ClaimStatus
	Tags          []string
}

// ruleMatches reports whether every condition present on the rule is
// satisfied by the case data, under MissingFieldPolicyIgnore.
func ruleMatches(rule *domain.AssignmentRule, attrs CaseAttributes) bool {
	cond := rule.Conditions

	if len(cond.Carriers) > 0 && attrs.Carrier != "" {
		if !containsString(cond.Carriers, attrs.Carrier) {
			return false
		}
	}
	if len(cond.Priorities) > 0 && attrs.Priority != "" {
		if !containsPriority(cond.Priorities, attrs.Priority) {
			return false
		}
	}
	if attrs.ClaimedAmount != nil {
		if cond.MinAmount != nil && *attrs.ClaimedAmount < *cond.MinAmount {
			return false
		}
		if cond.MaxAmount != nil && *attrs.ClaimedAmount > *cond.MaxAmount {
			return false
		}
	}
	if len(cond.Statuses) > 0 && attrs.Status != "" {
		if !containsStatus(cond.Statuses, attrs.Status) {
			return false
		}
	}
	if len(cond.Tags) > 0 && len(attrs.Tags) > 0 {
		if !anyTagMatch(cond.Tags, attrs.Tags) {
			return false
		}
	}
	return true
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsPriority(values []domain.ClaimPriority, v domain.ClaimPriority) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsStatus(values []domain.ClaimStatus, v domain.ClaimStatus) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func anyTagMatch(ruleTags, caseTags []string) bool {
	for _, t := range caseTags {
		if containsString(ruleTags, t) {
			return true
		}
	}
	return false
}
