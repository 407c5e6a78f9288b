package domain

// MemberRole enumerates internal operator roles.
type MemberRole string

const (
	MemberRoleAgent       MemberRole = "AGENT"
	MemberRoleSeniorAgent MemberRole = "SENIOR_AGENT"
	MemberRoleSupervisor  MemberRole = "SUPERVISOR"
	MemberRoleManager     MemberRole = "MANAGER"
)

// Availability enumerates whether a member can take new cases.
type Availability string

const (
	AvailabilityAvailable Availability = "AVAILABLE"
	AvailabilityBusy      Availability = "BUSY"
	AvailabilityAway      Availability = "AWAY"
	AvailabilityOffline   Availability = "OFFLINE"
)

// TeamMember models a claims agent eligible for case routing.
type TeamMember struct {
	ID              int64
	Name            string
	Email           string
	Role            MemberRole
	Skills          []string
	MaxCaseload     int
	CurrentCaseload int
	Availability    Availability
	// Routing statistics, maintained by an external reporting job.
	AvgResolutionHours float64
	SuccessRate        float64
}

// HasSpareCapacity reports whether the member can take another case.
func (m *TeamMember) HasSpareCapacity() bool {
	return m.CurrentCaseload < m.MaxCaseload
}

// HasSkill reports whether the member carries the given capability tag.
func (m *TeamMember) HasSkill(skill string) bool {
	for _, s := range m.Skills {
		if s == skill {
			return true
		}
	}
	return false
}
