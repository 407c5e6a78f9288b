package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/claims-service/internal/api/dto"
	"github.com/spec-kit/claims-service/internal/domain"
	"github.com/spec-kit/claims-service/internal/repository"
	"github.com/spec-kit/claims-service/internal/service"
	apperrors "github.com/spec-kit/claims-service/pkg/util"
)

// ClaimsHandler manages claim CRUD and rollback endpoints.
type ClaimsHandler struct {
	service *service.ClaimService
}

// NewClaimsHandler constructs handler.
func NewClaimsHandler(claimService *service.ClaimService) *ClaimsHandler {
	return &ClaimsHandler{service: claimService}
}

// CreateClaim POST /claims.
func (h *ClaimsHandler) CreateClaim(c *fiber.Ctx) error {
	var req dto.CreateClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Carrier == "" {
		return apperrors.NewValidationError("carrier required", nil)
	}

	claim, err := h.service.CreateClaim(c.Context(), actorFromRequest(c), service.ClaimCreateInput{
		Carrier:        req.Carrier,
		TrackingNumber: req.TrackingNumber,
		CustomerName:   req.CustomerName,
		Description:    req.Description,
		Priority:       req.Priority,
		ClaimedAmount:  req.ClaimedAmount,
		Tags:           req.Tags,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": claimResponse(claim)})
}

// ListClaims GET /claims.
func (h *ClaimsHandler) ListClaims(c *fiber.Ctx) error {
	claims, err := h.service.ListClaims(c.Context(), parseClaimQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.ClaimResponse, 0, len(claims))
	for i := range claims {
		items = append(items, claimResponse(&claims[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetClaim GET /claims/:id.
func (h *ClaimsHandler) GetClaim(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return err
	}
	claim, err := h.service.GetClaim(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": claimResponse(claim)})
}

// UpdateClaim PATCH /claims/:id.
func (h *ClaimsHandler) UpdateClaim(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	claim, version, err := h.service.UpdateClaim(c.Context(), id, actorFromRequest(c), service.ClaimUpdateInput{
		Carrier:        req.Carrier,
		TrackingNumber: req.TrackingNumber,
		CustomerName:   req.CustomerName,
		Status:         req.Status,
		Priority:       req.Priority,
		ClaimedAmount:  req.ClaimedAmount,
		ApprovedAmount: req.ApprovedAmount,
		Description:    req.Description,
		Tags:           req.Tags,
		Comment:        req.Comment,
		VersionTags:    req.VersionTags,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"claim":   claimResponse(claim),
		"version": version,
	}})
}

// RollbackClaim POST /claims/:id/rollback.
func (h *ClaimsHandler) RollbackClaim(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return err
	}
	var req dto.RollbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TargetVersion <= 0 {
		return apperrors.NewValidationError("targetVersion required", nil)
	}

	claim, version, err := h.service.RollbackClaim(c.Context(), id, req.TargetVersion, actorFromRequest(c), req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"claim":    claimResponse(claim),
		"version":  version,
		"snapshot": version.Snapshot,
	}})
}

// GetSnapshot GET /claims/:id/snapshot.
func (h *ClaimsHandler) GetSnapshot(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return err
	}
	snapshot, err := h.service.CurrentSnapshot(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": snapshot})
}

func parseClaimQuery(c *fiber.Ctx) repository.ClaimFilter {
	filter := repository.ClaimFilter{}
	if carrier := c.Query("carrier"); carrier != "" {
		filter.Carrier = &carrier
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.ClaimStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.ClaimPriority(strings.TrimSpace(part)))
		}
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	page := parseIntQuery(c.Query("page"), 1)
	pageSize := parseIntQuery(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func claimResponse(claim *domain.ClaimCase) dto.ClaimResponse {
	return dto.ClaimResponse{
		ID:             claim.ID,
		ClaimNumber:    claim.ClaimNumber,
		Carrier:        claim.Carrier,
		TrackingNumber: claim.TrackingNumber,
		CustomerName:   claim.CustomerName,
		Status:         claim.Status,
		Priority:       claim.Priority,
		ClaimedAmount:  claim.ClaimedAmount,
		ApprovedAmount: claim.ApprovedAmount,
		Description:    claim.Description,
		Tags:           claim.Tags,
		CreatedAt:      claim.CreatedAt,
		UpdatedAt:      claim.UpdatedAt,
		ClosedAt:       claim.ClosedAt,
	}
}

func parseCaseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid case id", nil)
	}
	return id, nil
}

func parseIntQuery(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

// actorFromRequest resolves the acting user. Authentication lives upstream;
// the gateway forwards the identity via headers.
func actorFromRequest(c *fiber.Ctx) service.Actor {
	actor := service.Actor{UserName: "system"}
	if id, err := strconv.ParseInt(c.Get("X-Actor-Id"), 10, 64); err == nil {
		actor.UserID = id
	}
	if name := c.Get("X-Actor-Name"); name != "" {
		actor.UserName = name
	}
	return actor
}
