package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/claims-service/internal/assignment"
	"github.com/spec-kit/claims-service/internal/domain"
	"github.com/spec-kit/claims-service/internal/events"
	"github.com/spec-kit/claims-service/internal/repository"
	"github.com/spec-kit/claims-service/internal/versionstore"
	apperrors "github.com/spec-kit/claims-service/pkg/util"
)

// fakeClaimRepository keeps claims in a map, standing in for postgres.
type fakeClaimRepository struct {
	nextID int64
	claims map[int64]domain.ClaimCase
}

func newFakeClaimRepository() *fakeClaimRepository {
	return &fakeClaimRepository{claims: make(map[int64]domain.ClaimCase)}
}

func (f *fakeClaimRepository) Create(_ context.Context, claim *domain.ClaimCase) error {
	f.nextID++
	claim.ID = f.nextID
	f.claims[claim.ID] = *claim
	return nil
}

func (f *fakeClaimRepository) Update(_ context.Context, claim *domain.ClaimCase) error {
	if _, ok := f.claims[claim.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.claims[claim.ID] = *claim
	return nil
}

func (f *fakeClaimRepository) GetByID(_ context.Context, id int64) (*domain.ClaimCase, error) {
	claim, ok := f.claims[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &claim, nil
}

func (f *fakeClaimRepository) List(_ context.Context, _ repository.ClaimFilter) ([]domain.ClaimCase, error) {
	result := make([]domain.ClaimCase, 0, len(f.claims))
	for _, claim := range f.claims {
		result = append(result, claim)
	}
	return result, nil
}

func newTestService() (*ClaimService, *assignment.Router) {
	router := assignment.NewRouter(nil, nil)
	return NewClaimService(ClaimDependencies{
		ClaimRepo:  newFakeClaimRepository(),
		Versions:   versionstore.New(nil),
		Router:     router,
		Dispatcher: events.NewInMemoryDispatcher(),
	}), router
}

var actor = Actor{UserID: 1, UserName: "alice"}

func TestCreateClaimRecordsInitialVersion(t *testing.T) {
	svc, _ := newTestService()

	claim, err := svc.CreateClaim(context.Background(), actor, ClaimCreateInput{
		Carrier:       "FedEx",
		CustomerName:  "Acme Corp",
		ClaimedAmount: 250,
	})
	require.NoError(t, err)
	assert.NotZero(t, claim.ID)
	assert.Contains(t, claim.ClaimNumber, "CLM-")
	assert.Equal(t, domain.ClaimStatusSubmitted, claim.Status)
	assert.Equal(t, domain.ClaimPriorityMedium, claim.Priority)

	assert.Equal(t, 1, svc.Versions().CurrentVersion(claim.ID))
	v1 := svc.Versions().Version(claim.ID, 1)
	require.NotNil(t, v1)
	assert.Equal(t, "FedEx", v1.Snapshot["carrier"])
	assert.Equal(t, "alice", v1.UserName)
	assert.Empty(t, v1.Changes)
}

func TestCreateClaimRequiresCarrier(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateClaim(context.Background(), actor, ClaimCreateInput{Carrier: "  "})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestGetClaimNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetClaim(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestUpdateClaimAppendsDiffedVersion(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	claim, err := svc.CreateClaim(ctx, actor, ClaimCreateInput{Carrier: "FedEx", ClaimedAmount: 100})
	require.NoError(t, err)

	status := domain.ClaimStatusUnderReview
	comment := "escalating review"
	updated, version, err := svc.UpdateClaim(ctx, claim.ID, actor, ClaimUpdateInput{
		Status:  &status,
		Comment: &comment,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusUnderReview, updated.Status)

	require.NotNil(t, version)
	assert.Equal(t, 2, version.Version)
	require.NotNil(t, version.Comment)
	assert.Equal(t, comment, *version.Comment)
	require.Len(t, version.Changes, 1)
	assert.Equal(t, "status", version.Changes[0].Field)
	assert.Equal(t, string(domain.ClaimStatusSubmitted), version.Changes[0].OldValue)
	assert.Equal(t, string(domain.ClaimStatusUnderReview), version.Changes[0].NewValue)
}

func TestUpdateClaimClosedSetsClosedAt(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	claim, err := svc.CreateClaim(ctx, actor, ClaimCreateInput{Carrier: "UPS"})
	require.NoError(t, err)

	closed := domain.ClaimStatusClosed
	updated, _, err := svc.UpdateClaim(ctx, claim.ID, actor, ClaimUpdateInput{Status: &closed})
	require.NoError(t, err)
	assert.NotNil(t, updated.ClosedAt)

	reopened := domain.ClaimStatusUnderReview
	updated, _, err = svc.UpdateClaim(ctx, claim.ID, actor, ClaimUpdateInput{Status: &reopened})
	require.NoError(t, err)
	assert.Nil(t, updated.ClosedAt)
}

func TestRollbackClaimRestoresFields(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	claim, err := svc.CreateClaim(ctx, actor, ClaimCreateInput{
		Carrier:       "FedEx",
		ClaimedAmount: 100,
		Tags:          []string{"fragile"},
	})
	require.NoError(t, err)

	status := domain.ClaimStatusApproved
	amount := 80.0
	_, _, err = svc.UpdateClaim(ctx, claim.ID, actor, ClaimUpdateInput{
		Status:         &status,
		ApprovedAmount: &amount,
	})
	require.NoError(t, err)

	restored, version, err := svc.RollbackClaim(ctx, claim.ID, 1, actor, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusSubmitted, restored.Status)
	assert.Nil(t, restored.ApprovedAmount)
	assert.Equal(t, 100.0, restored.ClaimedAmount)
	assert.Equal(t, []string{"fragile"}, restored.Tags)

	assert.Equal(t, 3, version.Version)
	assert.Contains(t, version.Tags, "rollback")
	assert.Equal(t, 3, svc.Versions().CurrentVersion(claim.ID))
}

func TestRollbackClaimUnknownVersion(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	claim, err := svc.CreateClaim(ctx, actor, ClaimCreateInput{Carrier: "FedEx"})
	require.NoError(t, err)

	_, _, err = svc.RollbackClaim(ctx, claim.ID, 42, actor, nil)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestAutoAssignClaimRoutesThroughRules(t *testing.T) {
	svc, router := newTestService()
	ctx := context.Background()

	router.AddTeamMember(&domain.TeamMember{
		ID:           7,
		Name:         "Bob",
		MaxCaseload:  5,
		Availability: domain.AvailabilityAvailable,
	})
	router.AddRule(&domain.AssignmentRule{
		ID:         "fedex-rule",
		Name:       "fedex-rule",
		Priority:   10,
		Conditions: domain.RuleConditions{Carriers: []string{"FedEx"}},
		AssignTo:   domain.StrategyLeastLoaded,
		AutoAssign: true,
	})

	claim, err := svc.CreateClaim(ctx, actor, ClaimCreateInput{Carrier: "FedEx", ClaimedAmount: 100})
	require.NoError(t, err)

	a, err := svc.AutoAssignClaim(ctx, claim.ID, actor.UserID)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, int64(7), a.AssignedTo)
	assert.Equal(t, claim.ID, a.CaseID)
}

func TestAutoAssignClaimNoRuleMatch(t *testing.T) {
	svc, router := newTestService()
	ctx := context.Background()

	router.AddRule(&domain.AssignmentRule{
		ID:         "ups-only",
		Name:       "ups-only",
		Priority:   10,
		Conditions: domain.RuleConditions{Carriers: []string{"UPS"}},
		AssignTo:   domain.StrategyLeastLoaded,
		AutoAssign: true,
	})

	claim, err := svc.CreateClaim(ctx, actor, ClaimCreateInput{Carrier: "FedEx"})
	require.NoError(t, err)

	a, err := svc.AutoAssignClaim(ctx, claim.ID, actor.UserID)
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestCurrentSnapshotFallsBackToVersionStore(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	claim, err := svc.CreateClaim(ctx, actor, ClaimCreateInput{Carrier: "DHL", CustomerName: "Acme"})
	require.NoError(t, err)

	snapshot, err := svc.CurrentSnapshot(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, "DHL", snapshot["carrier"])
	assert.Equal(t, "Acme", snapshot["customerName"])

	_, err = svc.CurrentSnapshot(ctx, 404)
	require.Error(t, err)
}

func TestImportHistoryRefreshesState(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	claim, err := svc.CreateClaim(ctx, actor, ClaimCreateInput{Carrier: "FedEx"})
	require.NoError(t, err)
	status := domain.ClaimStatusApproved
	_, _, err = svc.UpdateClaim(ctx, claim.ID, actor, ClaimUpdateInput{Status: &status})
	require.NoError(t, err)

	exported, err := svc.Versions().ExportHistory(claim.ID)
	require.NoError(t, err)

	other, _ := newTestService()
	require.True(t, other.ImportHistory(ctx, claim.ID, exported))
	assert.Equal(t, 2, other.Versions().CurrentVersion(claim.ID))

	assert.False(t, other.ImportHistory(ctx, claim.ID, "{broken"))
}
