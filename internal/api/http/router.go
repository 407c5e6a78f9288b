package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/claims-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Claims      *handlers.ClaimsHandler
	Versions    *handlers.VersionsHandler
	Assignments *handlers.AssignmentsHandler
	Team        *handlers.TeamHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	claims := app.Group("/claims")
	claims.Post("/", cfg.Claims.CreateClaim)
	claims.Get("/", cfg.Claims.ListClaims)
	claims.Get("/:id", cfg.Claims.GetClaim)
	claims.Patch("/:id", cfg.Claims.UpdateClaim)
	claims.Post("/:id/rollback", cfg.Claims.RollbackClaim)
	claims.Get("/:id/snapshot", cfg.Claims.GetSnapshot)

	// Static version paths must be registered before /:version.
	versions := claims.Group("/:id/versions")
	versions.Get("/", cfg.Versions.ListVersions)
	versions.Get("/compare", cfg.Versions.CompareVersions)
	versions.Get("/changes", cfg.Versions.ChangesSince)
	versions.Get("/search", cfg.Versions.SearchByTag)
	versions.Get("/stats", cfg.Versions.GetStats)
	versions.Get("/export", cfg.Versions.ExportHistory)
	versions.Post("/import", cfg.Versions.ImportHistory)
	versions.Get("/:version", cfg.Versions.GetVersion)

	claims.Post("/:id/assignments/auto", cfg.Assignments.AutoAssignCase)
	claims.Post("/:id/assignments/reassign", cfg.Assignments.ReassignCase)
	claims.Post("/:id/assignments/escalate", cfg.Assignments.EscalateCase)
	claims.Get("/:id/assignments/current", cfg.Assignments.GetAssignment)
	claims.Get("/:id/assignments", cfg.Assignments.GetAssignmentHistory)

	app.Post("/assignments", cfg.Assignments.AssignCase)

	team := app.Group("/team")
	team.Post("/members", cfg.Team.AddMember)
	team.Get("/members", cfg.Team.ListMembers)
	team.Get("/members/:id", cfg.Team.GetMember)
	team.Get("/members/:id/assignments", cfg.Assignments.GetUserAssignments)
	team.Post("/rules", cfg.Team.AddRule)
	team.Get("/rules", cfg.Team.ListRules)
	team.Get("/workload", cfg.Team.GetWorkloadStats)
}
