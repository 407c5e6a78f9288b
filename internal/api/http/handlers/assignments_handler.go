package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/claims-service/internal/api/dto"
	"github.com/spec-kit/claims-service/internal/assignment"
	"github.com/spec-kit/claims-service/internal/domain"
	"github.com/spec-kit/claims-service/internal/service"
	apperrors "github.com/spec-kit/claims-service/pkg/util"
)

// AssignmentsHandler manages case assignment endpoints.
type AssignmentsHandler struct {
	router  *assignment.Router
	service *service.ClaimService
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(router *assignment.Router, claimService *service.ClaimService) *AssignmentsHandler {
	return &AssignmentsHandler{router: router, service: claimService}
}

// AssignCase POST /assignments.
func (h *AssignmentsHandler) AssignCase(c *fiber.Ctx) error {
	var req dto.AssignCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CaseID <= 0 || req.AssignedTo <= 0 {
		return apperrors.NewValidationError("caseId and assignedTo required", nil)
	}

	actor := actorFromRequest(c)
	a := h.router.AssignCase(assignment.AssignCaseInput{
		CaseID:     req.CaseID,
		AssignedTo: req.AssignedTo,
		AssignedBy: actor.UserID,
		Priority:   req.Priority,
		DueDate:    req.DueDate,
		Notes:      req.Notes,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": assignmentResponse(a)})
}

// AutoAssignCase POST /claims/:id/assignments/auto.
func (h *AssignmentsHandler) AutoAssignCase(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return err
	}
	actor := actorFromRequest(c)
	a, err := h.service.AutoAssignClaim(c.Context(), id, actor.UserID)
	if err != nil {
		return err
	}
	if a == nil {
		return apperrors.NewConflict("no matching rule or eligible assignee", map[string]any{"case_id": id})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": assignmentResponse(a)})
}

// ReassignCase POST /claims/:id/assignments/reassign.
func (h *AssignmentsHandler) ReassignCase(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return err
	}
	var req dto.ReassignCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.NewAssignee <= 0 {
		return apperrors.NewValidationError("newAssignee required", nil)
	}

	actor := actorFromRequest(c)
	a := h.router.ReassignCase(assignment.ReassignInput{
		CaseID:       id,
		NewAssignee:  req.NewAssignee,
		ReassignedBy: actor.UserID,
		Reason:       req.Reason,
	})
	if a == nil {
		return apperrors.NewNotFound("assignment", map[string]any{"case_id": id})
	}
	return c.JSON(fiber.Map{"data": assignmentResponse(a)})
}

// EscalateCase POST /claims/:id/assignments/escalate.
func (h *AssignmentsHandler) EscalateCase(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return err
	}
	var req dto.EscalateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.EscalatedTo <= 0 || req.Reason == "" {
		return apperrors.NewValidationError("escalatedTo and reason required", nil)
	}

	actor := actorFromRequest(c)
	a := h.router.EscalateCase(assignment.EscalateInput{
		CaseID:      id,
		EscalatedTo: req.EscalatedTo,
		EscalatedBy: actor.UserID,
		Reason:      req.Reason,
	})
	if a == nil {
		return apperrors.NewNotFound("assignment", map[string]any{"case_id": id})
	}
	return c.JSON(fiber.Map{"data": assignmentResponse(a)})
}

// GetAssignment GET /claims/:id/assignments/current.
func (h *AssignmentsHandler) GetAssignment(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return err
	}
	a := h.router.GetAssignment(id)
	if a == nil {
		return apperrors.NewNotFound("assignment", map[string]any{"case_id": id})
	}
	return c.JSON(fiber.Map{"data": assignmentResponse(a)})
}

// GetAssignmentHistory GET /claims/:id/assignments.
func (h *AssignmentsHandler) GetAssignmentHistory(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return err
	}
	history := h.router.GetAssignmentHistory(id)
	items := make([]dto.AssignmentResponse, 0, len(history))
	for _, a := range history {
		items = append(items, assignmentResponse(a))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetUserAssignments GET /team/members/:id/assignments.
func (h *AssignmentsHandler) GetUserAssignments(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || userID <= 0 {
		return apperrors.NewValidationError("invalid user id", nil)
	}
	var status *domain.AssignmentStatus
	if statusStr := c.Query("status"); statusStr != "" {
		s := domain.AssignmentStatus(statusStr)
		status = &s
	}
	assignments := h.router.GetUserAssignments(userID, status)
	items := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		items = append(items, assignmentResponse(a))
	}
	return c.JSON(fiber.Map{"data": items})
}

func assignmentResponse(a *domain.Assignment) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		ID:          a.ID,
		CaseID:      a.CaseID,
		AssignedTo:  a.AssignedTo,
		AssignedBy:  a.AssignedBy,
		AssignedAt:  a.AssignedAt,
		DueDate:     a.DueDate,
		Priority:    a.Priority,
		Status:      a.Status,
		Notes:       a.Notes,
		EscalatedTo: a.EscalatedTo,
		EscalatedAt: a.EscalatedAt,
	}
}
