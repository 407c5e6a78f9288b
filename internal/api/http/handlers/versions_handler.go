package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/claims-service/internal/api/dto"
	"github.com/spec-kit/claims-service/internal/service"
	apperrors "github.com/spec-kit/claims-service/pkg/util"
)

// VersionsHandler exposes a case's version history.
type VersionsHandler struct {
	service *service.ClaimService
}

// NewVersionsHandler constructs handler.
func NewVersionsHandler(claimService *service.ClaimService) *VersionsHandler {
	return &VersionsHandler{service: claimService}
}

// ListVersions GET /claims/:id/versions.
func (h *VersionsHandler) ListVersions(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.service.Versions().History(id)})
}

// GetVersion GET /claims/:id/versions/:version.
func (h *VersionsHandler) GetVersion(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return err
	}
	versionNum, err := strconv.Atoi(c.Params("version"))
	if err != nil || versionNum <= 0 {
		return apperrors.NewValidationError("invalid version number", nil)
	}
	version := h.service.Versions().Version(id, versionNum)
	if version == nil {
		return apperrors.NewNotFound("version", map[string]any{
			"case_id": id,
			"version": versionNum,
		})
	}
	return c.JSON(fiber.Map{"data": version})
}

// CompareVersions GET /claims/:id/versions/compare?from=&to=.
func (h *VersionsHandler) CompareVersions(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return err
	}
	from, errFrom := strconv.Atoi(c.Query("from"))
	to, errTo := strconv.Atoi(c.Query("to"))
	if errFrom != nil || errTo != nil {
		return apperrors.NewValidationError("from and to version numbers required", nil)
	}
	return c.JSON(fiber.Map{"data": h.service.Versions().Compare(id, from, to)})
}

// ChangesSince GET /claims/:id/versions/changes?since=.
func (h *VersionsHandler) ChangesSince(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return err
	}
	since, err := strconv.Atoi(c.Query("since"))
	if err != nil {
		return apperrors.NewValidationError("since version number required", nil)
	}
	return c.JSON(fiber.Map{"data": h.service.Versions().ChangesSince(id, since)})
}

// SearchByTag GET /claims/:id/versions/search?tag=.
func (h *VersionsHandler) SearchByTag(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return err
	}
	tag := c.Query("tag")
	if tag == "" {
		return apperrors.NewValidationError("tag required", nil)
	}
	return c.JSON(fiber.Map{"data": h.service.Versions().SearchByTag(id, tag)})
}

// GetStats GET /claims/:id/versions/stats.
func (h *VersionsHandler) GetStats(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.service.Versions().GetStats(id)})
}

// ExportHistory GET /claims/:id/versions/export.
func (h *VersionsHandler) ExportHistory(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return err
	}
	history, err := h.service.Versions().ExportHistory(id)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"history": history}})
}

// ImportHistory POST /claims/:id/versions/import.
func (h *VersionsHandler) ImportHistory(c *fiber.Ctx) error {
	id, err := parseCaseID(c)
	if err != nil {
		return err
	}
	var req dto.ImportHistoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !h.service.ImportHistory(c.Context(), id, req.History) {
		return apperrors.NewValidationError("could not parse version history", nil)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"imported": true}})
}
