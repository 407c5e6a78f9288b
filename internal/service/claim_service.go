package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/claims-service/internal/assignment"
	"github.com/spec-kit/claims-service/internal/domain"
	"github.com/spec-kit/claims-service/internal/events"
	"github.com/spec-kit/claims-service/internal/repository"
	"github.com/spec-kit/claims-service/internal/versionstore"
	apperrors "github.com/spec-kit/claims-service/pkg/util"
)

// SnapshotCache caches the current snapshot per case. Implemented by
// persistence.Redis; a nil cache disables caching.
type SnapshotCache interface {
	SetSnapshot(ctx context.Context, caseID int64, snapshot domain.Snapshot) error
	GetSnapshot(ctx context.Context, caseID int64) (domain.Snapshot, error)
}

// ClaimService coordinates claim workflows: every create/update/rollback
// writes the claim row and appends to the case's version history.
type ClaimService struct {
	claims     repository.ClaimRepository
	versions   *versionstore.Store
	router     *assignment.Router
	cache      SnapshotCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ClaimDependencies bundles collaborators for the claim service.
type ClaimDependencies struct {
	ClaimRepo  repository.ClaimRepository
	Versions   *versionstore.Store
	Router     *assignment.Router
	Cache      SnapshotCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// Actor identifies who performed an operation.
type Actor struct {
	UserID   int64
	UserName string
}

// ClaimCreateInput describes claim creation payload.
type ClaimCreateInput struct {
	Carrier        string
	TrackingNumber string
	CustomerName   string
	Description    string
	Priority       domain.ClaimPriority
	ClaimedAmount  float64
	Tags           []string
}

// ClaimUpdateInput describes a partial claim update. Nil fields are left
// untouched; Comment and VersionTags annotate the resulting version.
type ClaimUpdateInput struct {
	Carrier        *string
	TrackingNumber *string
	CustomerName   *string
	Status         *domain.ClaimStatus
	Priority       *domain.ClaimPriority
	ClaimedAmount  *float64
	ApprovedAmount *float64
	Description    *string
	Tags           []string
	Comment        *string
	VersionTags    []string
}

// NewClaimService constructs the service.
func NewClaimService(deps ClaimDependencies) *ClaimService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClaimService{
		claims:     deps.ClaimRepo,
		versions:   deps.Versions,
		router:     deps.Router,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateClaim persists a new claim and records version 1 of its history.
func (s *ClaimService) CreateClaim(ctx context.Context, actor Actor, input ClaimCreateInput) (*domain.ClaimCase, error) {
	if strings.TrimSpace(input.Carrier) == "" {
		return nil, apperrors.NewValidationError("carrier required", nil)
	}

	claim := &domain.ClaimCase{
		ClaimNumber:    generateClaimNumber(),
		Carrier:        strings.TrimSpace(input.Carrier),
		TrackingNumber: strings.TrimSpace(input.TrackingNumber),
		CustomerName:   strings.TrimSpace(input.CustomerName),
		Status:         domain.ClaimStatusSubmitted,
		Priority:       input.Priority,
		ClaimedAmount:  input.ClaimedAmount,
		Description:    strings.TrimSpace(input.Description),
		Tags:           input.Tags,
	}
	if claim.Priority == "" {
		claim.Priority = domain.ClaimPriorityMedium
	}

	if err := s.claims.Create(ctx, claim); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.versions.CreateInitialVersion(claim.ID, snapshotOf(claim), actor.UserID, actor.UserName)
	s.cacheSnapshot(ctx, claim)
	s.publish(ctx, events.EventClaimCreated, claim.ID, actor.UserID, events.ClaimCreatedPayload{
		ClaimNumber: claim.ClaimNumber,
		Carrier:     claim.Carrier,
		Priority:    claim.Priority,
	})
	return claim, nil
}

// GetClaim fetches a claim by id.
func (s *ClaimService) GetClaim(ctx context.Context, id int64) (*domain.ClaimCase, error) {
	claim, err := s.claims.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("claim", map[string]any{"case_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return claim, nil
}

// ListClaims returns claims matching the filter.
func (s *ClaimService) ListClaims(ctx context.Context, filter repository.ClaimFilter) ([]domain.ClaimCase, error) {
	claims, err := s.claims.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return claims, nil
}

// UpdateClaim applies a partial update and appends a diffed version.
func (s *ClaimService) UpdateClaim(ctx context.Context, id int64, actor Actor, input ClaimUpdateInput) (*domain.ClaimCase, *domain.CaseVersion, error) {
	claim, err := s.GetClaim(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	previous := snapshotOf(claim)

	if input.Carrier != nil {
		claim.Carrier = *input.Carrier
	}
	if input.TrackingNumber != nil {
		claim.TrackingNumber = *input.TrackingNumber
	}
	if input.CustomerName != nil {
		claim.CustomerName = *input.CustomerName
	}
	if input.Status != nil {
		claim.Status = *input.Status
		if claim.Status == domain.ClaimStatusClosed {
			now := time.Now().UTC()
			claim.ClosedAt = &now
		} else {
			claim.ClosedAt = nil
		}
	}
	if input.Priority != nil {
		claim.Priority = *input.Priority
	}
	if input.ClaimedAmount != nil {
		claim.ClaimedAmount = *input.ClaimedAmount
	}
	if input.ApprovedAmount != nil {
		claim.ApprovedAmount = input.ApprovedAmount
	}
	if input.Description != nil {
		claim.Description = *input.Description
	}
	if input.Tags != nil {
		claim.Tags = input.Tags
	}

	if err := s.claims.Update(ctx, claim); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	version := s.versions.CreateVersion(claim.ID, snapshotOf(claim), previous, actor.UserID, actor.UserName, input.Comment, input.VersionTags)
	s.cacheSnapshot(ctx, claim)
	s.publish(ctx, events.EventClaimUpdated, claim.ID, actor.UserID, events.ClaimUpdatedPayload{
		Version: version.Version,
		Changes: len(version.Changes),
	})
	return claim, version, nil
}

// RollbackClaim restores a prior version's snapshot, writes it back to the
// claim row, and appends the rollback as a new version.
func (s *ClaimService) RollbackClaim(ctx context.Context, id int64, targetVersion int, actor Actor, comment *string) (*domain.ClaimCase, *domain.CaseVersion, error) {
	claim, err := s.GetClaim(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	fromVersion := s.versions.CurrentVersion(id)
	version, err := s.versions.Rollback(id, targetVersion, actor.UserID, actor.UserName, comment)
	if err != nil {
		return nil, nil, apperrors.NewNotFound("version", map[string]any{
			"case_id": id,
			"version": targetVersion,
		})
	}

	applySnapshot(claim, version.Snapshot)
	if err := s.claims.Update(ctx, claim); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	s.cacheSnapshot(ctx, claim)
	s.publish(ctx, events.EventClaimRolledBack, claim.ID, actor.UserID, events.ClaimRolledBackPayload{
		FromVersion: fromVersion,
		ToVersion:   targetVersion,
	})
	return claim, version, nil
}

// AutoAssignClaim routes a claim through the assignment rules. A nil
// assignment (with nil error) means no rule matched or nobody was eligible.
func (s *ClaimService) AutoAssignClaim(ctx context.Context, id int64, assignedBy int64) (*domain.Assignment, error) {
	claim, err := s.GetClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	amount := claim.ClaimedAmount
	return s.router.AutoAssignCase(assignment.AutoAssignInput{
		CaseID:     claim.ID,
		AssignedBy: assignedBy,
		Attributes: assignment.CaseAttributes{
			Carrier:       claim.Carrier,
			Priority:      claim.Priority,
			ClaimedAmount: &amount,
			Status:        claim.Status,
			Tags:          claim.Tags,
		},
	}), nil
}

// CurrentSnapshot returns the case's current snapshot, read through the
// cache and falling back to the version store.
func (s *ClaimService) CurrentSnapshot(ctx context.Context, id int64) (domain.Snapshot, error) {
	if s.cache != nil {
		if snapshot, err := s.cache.GetSnapshot(ctx, id); err == nil {
			return snapshot, nil
		}
	}

	current := s.versions.CurrentVersion(id)
	version := s.versions.Version(id, current)
	if version == nil {
		return nil, apperrors.NewNotFound("case history", map[string]any{"case_id": id})
	}
	if s.cache != nil {
		if err := s.cache.SetSnapshot(ctx, id, version.Snapshot); err != nil {
			s.logger.Warn("failed to cache snapshot", zap.Int64("case_id", id), zap.Error(err))
		}
	}
	return version.Snapshot, nil
}

// ImportHistory replaces a case's version history from a serialized export
// and refreshes the snapshot cache from the new current version.
func (s *ClaimService) ImportHistory(ctx context.Context, id int64, serialized string) bool {
	if !s.versions.ImportHistory(id, serialized) {
		return false
	}
	if current := s.versions.Version(id, s.versions.CurrentVersion(id)); current != nil && s.cache != nil {
		if err := s.cache.SetSnapshot(ctx, id, current.Snapshot); err != nil {
			s.logger.Warn("failed to refresh snapshot cache", zap.Int64("case_id", id), zap.Error(err))
		}
	}
	return true
}

// Versions exposes the version store for read-only history endpoints.
func (s *ClaimService) Versions() *versionstore.Store {
	return s.versions
}

func (s *ClaimService) cacheSnapshot(ctx context.Context, claim *domain.ClaimCase) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetSnapshot(ctx, claim.ID, snapshotOf(claim)); err != nil {
		s.logger.Warn("failed to cache snapshot", zap.Int64("case_id", claim.ID), zap.Error(err))
	}
}

func (s *ClaimService) publish(ctx context.Context, eventType events.EventType, caseID, actorID int64, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		CaseID:    caseID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

// snapshotOf flattens the versioned fields of a claim into a snapshot.
func snapshotOf(claim *domain.ClaimCase) domain.Snapshot {
	var approved any
	if claim.ApprovedAmount != nil {
		approved = *claim.ApprovedAmount
	}
	return domain.Snapshot{
		"carrier":        claim.Carrier,
		"trackingNumber": claim.TrackingNumber,
		"customerName":   claim.CustomerName,
		"status":         string(claim.Status),
		"priority":       string(claim.Priority),
		"claimedAmount":  claim.ClaimedAmount,
		"approvedAmount": approved,
		"description":    claim.Description,
		"tags":           claim.Tags,
	}
}

// applySnapshot writes a restored snapshot back onto the claim. Values may
// arrive as native Go types or as their JSON-decoded equivalents.
func applySnapshot(claim *domain.ClaimCase, snapshot domain.Snapshot) {
	if v, ok := snapshot["carrier"].(string); ok {
		claim.Carrier = v
	}
	if v, ok := snapshot["trackingNumber"].(string); ok {
		claim.TrackingNumber = v
	}
	if v, ok := snapshot["customerName"].(string); ok {
		claim.CustomerName = v
	}
	if v, ok := snapshot["status"].(string); ok {
		claim.Status = domain.ClaimStatus(v)
	}
	if v, ok := snapshot["priority"].(string); ok {
		claim.Priority = domain.ClaimPriority(v)
	}
	if v, ok := asFloat(snapshot["claimedAmount"]); ok {
		claim.ClaimedAmount = v
	}
	if v, ok := asFloat(snapshot["approvedAmount"]); ok {
		claim.ApprovedAmount = &v
	} else {
		claim.ApprovedAmount = nil
	}
	if tags, ok := asStringSlice(snapshot["tags"]); ok {
		claim.Tags = tags
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func asStringSlice(v any) ([]string, bool) {
	switch vals := v.(type) {
	case []string:
		return vals, true
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func generateClaimNumber() string {
	return "CLM-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
