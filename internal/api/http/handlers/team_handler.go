package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/claims-service/internal/api/dto"
	"github.com/spec-kit/claims-service/internal/assignment"
	"github.com/spec-kit/claims-service/internal/domain"
	apperrors "github.com/spec-kit/claims-service/pkg/util"
)

// TeamHandler manages team-member and routing-rule endpoints.
type TeamHandler struct {
	router *assignment.Router
}

// NewTeamHandler constructs handler.
func NewTeamHandler(router *assignment.Router) *TeamHandler {
	return &TeamHandler{router: router}
}

// AddMember POST /team/members (upsert by id).
func (h *TeamHandler) AddMember(c *fiber.Ctx) error {
	var req dto.TeamMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ID <= 0 || req.Name == "" {
		return apperrors.NewValidationError("id and name required", nil)
	}
	if req.Availability == "" {
		req.Availability = domain.AvailabilityAvailable
	}

	member := &domain.TeamMember{
		ID:                 req.ID,
		Name:               req.Name,
		Email:              req.Email,
		Role:               req.Role,
		Skills:             req.Skills,
		MaxCaseload:        req.MaxCaseload,
		CurrentCaseload:    req.CurrentCaseload,
		Availability:       req.Availability,
		AvgResolutionHours: req.AvgResolutionHours,
		SuccessRate:        req.SuccessRate,
	}
	h.router.AddTeamMember(member)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": memberResponse(member)})
}

// GetMember GET /team/members/:id.
func (h *TeamHandler) GetMember(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return apperrors.NewValidationError("invalid member id", nil)
	}
	member := h.router.GetTeamMember(id)
	if member == nil {
		return apperrors.NewNotFound("team member", map[string]any{"user_id": id})
	}
	return c.JSON(fiber.Map{"data": memberResponse(member)})
}

// ListMembers GET /team/members.
func (h *TeamHandler) ListMembers(c *fiber.Ctx) error {
	filter := assignment.TeamMemberFilter{}
	if roleStr := c.Query("role"); roleStr != "" {
		role := domain.MemberRole(roleStr)
		filter.Role = &role
	}
	if availStr := c.Query("availability"); availStr != "" {
		avail := domain.Availability(availStr)
		filter.Availability = &avail
	}
	if skillsStr := c.Query("skills"); skillsStr != "" {
		for _, part := range strings.Split(skillsStr, ",") {
			filter.Skills = append(filter.Skills, strings.TrimSpace(part))
		}
	}

	members := h.router.ListTeamMembers(filter)
	items := make([]dto.TeamMemberResponse, 0, len(members))
	for _, m := range members {
		items = append(items, memberResponse(m))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddRule POST /team/rules.
func (h *TeamHandler) AddRule(c *fiber.Ctx) error {
	var req dto.AssignmentRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.AssignTo == "" {
		return apperrors.NewValidationError("name and assignTo required", nil)
	}
	if req.AssignTo == domain.StrategySpecificUser && req.TargetUserID == nil {
		return apperrors.NewValidationError("targetUserId required for specific_user", nil)
	}

	rule := &domain.AssignmentRule{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Priority: req.Priority,
		Conditions: domain.RuleConditions{
			Carriers:   req.Conditions.Carriers,
			Priorities: req.Conditions.Priorities,
			MinAmount:  req.Conditions.MinAmount,
			MaxAmount:  req.Conditions.MaxAmount,
			Statuses:   req.Conditions.Statuses,
			Tags:       req.Conditions.Tags,
		},
		AssignTo:           req.AssignTo,
		TargetUserID:       req.TargetUserID,
		AutoAssign:         req.AutoAssign,
		NotifyAssignee:     req.NotifyAssignee,
		EscalateAfterHours: req.EscalateAfterHours,
	}
	h.router.AddRule(rule)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ruleResponse(rule)})
}

// ListRules GET /team/rules.
func (h *TeamHandler) ListRules(c *fiber.Ctx) error {
	rules := h.router.GetRules()
	items := make([]dto.AssignmentRuleResponse, 0, len(rules))
	for _, rule := range rules {
		items = append(items, ruleResponse(rule))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetWorkloadStats GET /team/workload.
func (h *TeamHandler) GetWorkloadStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.router.GetWorkloadStats()})
}

func memberResponse(m *domain.TeamMember) dto.TeamMemberResponse {
	return dto.TeamMemberResponse{
		ID:                 m.ID,
		Name:               m.Name,
		Email:              m.Email,
		Role:               m.Role,
		Skills:             m.Skills,
		MaxCaseload:        m.MaxCaseload,
		CurrentCaseload:    m.CurrentCaseload,
		Availability:       m.Availability,
		AvgResolutionHours: m.AvgResolutionHours,
		SuccessRate:        m.SuccessRate,
	}
}

func ruleResponse(rule *domain.AssignmentRule) dto.AssignmentRuleResponse {
	return dto.AssignmentRuleResponse{
		ID:       rule.ID,
		Name:     rule.Name,
		Priority: rule.Priority,
		Conditions: dto.RuleConditionsPayload{
			Carriers:   rule.Conditions.Carriers,
			Priorities: rule.Conditions.Priorities,
			MinAmount:  rule.Conditions.MinAmount,
			MaxAmount:  rule.Conditions.MaxAmount,
			Statuses:   rule.Conditions.Statuses,
			Tags:       rule.Conditions.Tags,
		},
		AssignTo:           rule.AssignTo,
		TargetUserID:       rule.TargetUserID,
		AutoAssign:         rule.AutoAssign,
		NotifyAssignee:     rule.NotifyAssignee,
		EscalateAfterHours: rule.EscalateAfterHours,
	}
}
