package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/claims-service/internal/domain"
)

// ClaimRepository handles persistence for claim cases. It is the case-data
// provider feeding the assignment router.
type ClaimRepository interface {
	Create(ctx context.Context, claim *domain.ClaimCase) error
	Update(ctx context.Context, claim *domain.ClaimCase) error
	GetByID(ctx context.Context, id int64) (*domain.ClaimCase, error)
	List(ctx context.Context, filter ClaimFilter) ([]domain.ClaimCase, error)
}

// ClaimFilter defines query params for claim listing.
type ClaimFilter struct {
	Carrier    *string
	Statuses   []domain.ClaimStatus
	Priorities []domain.ClaimPriority
	SearchTerm *string
	Limit      int
	Offset     int
}

type claimRepository struct {
	pool *pgxpool.Pool
}

// NewClaimRepository instantiates the repository.
func NewClaimRepository(pool *pgxpool.Pool) ClaimRepository {
	return &claimRepository{pool: pool}
}

func (r *claimRepository) Create(ctx context.Context, claim *domain.ClaimCase) error {
	const query = `
        INSERT INTO claim_cases (claim_number, carrier, tracking_number, customer_name, status, priority, claimed_amount, approved_amount, description, tags)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		claim.ClaimNumber,
		claim.Carrier,
		claim.TrackingNumber,
		claim.CustomerName,
		claim.Status,
		claim.Priority,
		claim.ClaimedAmount,
		claim.ApprovedAmount,
		claim.Description,
		claim.Tags,
	).Scan(&claim.ID, &claim.CreatedAt, &claim.UpdatedAt)
}

func (r *claimRepository) Update(ctx context.Context, claim *domain.ClaimCase) error {
	const query = `
        UPDATE claim_cases
        SET carrier=$1, tracking_number=$2, customer_name=$3, status=$4, priority=$5, claimed_amount=$6, approved_amount=$7, description=$8, tags=$9, closed_at=$10, updated_at=NOW()
        WHERE id=$11`

	cmd, err := r.pool.Exec(ctx, query,
		claim.Carrier,
		claim.TrackingNumber,
		claim.CustomerName,
		claim.Status,
		claim.Priority,
		claim.ClaimedAmount,
		claim.ApprovedAmount,
		claim.Description,
		claim.Tags,
		claim.ClosedAt,
		claim.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *claimRepository) GetByID(ctx context.Context, id int64) (*domain.ClaimCase, error) {
	const query = `
        SELECT id, claim_number, carrier, tracking_number, customer_name, status, priority, claimed_amount, approved_amount, description, tags, created_at, updated_at, closed_at
        FROM claim_cases WHERE id=$1`

	var claim domain.ClaimCase
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&claim.ID,
		&claim.ClaimNumber,
		&claim.Carrier,
		&claim.TrackingNumber,
		&claim.CustomerName,
		&claim.Status,
		&claim.Priority,
		&claim.ClaimedAmount,
		&claim.ApprovedAmount,
		&claim.Description,
		&claim.Tags,
		&claim.CreatedAt,
		&claim.UpdatedAt,
		&claim.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *claimRepository) List(ctx context.Context, filter ClaimFilter) ([]domain.ClaimCase, error) {
	query := `
        SELECT id, claim_number, carrier, tracking_number, customer_name, status, priority, claimed_amount, approved_amount, description, tags, created_at, updated_at, closed_at
        FROM claim_cases`
	args := []any{}
	clauses := []string{}

	if filter.Carrier != nil {
		args = append(args, *filter.Carrier)
		clauses = append(clauses, fmt.Sprintf("carrier=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		args = append(args, statusStrings(filter.Statuses))
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if len(filter.Priorities) > 0 {
		args = append(args, priorityStrings(filter.Priorities))
		clauses = append(clauses, fmt.Sprintf("priority = ANY($%d)", len(args)))
	}
	if filter.SearchTerm != nil {
		args = append(args, "%"+*filter.SearchTerm+"%")
		clauses = append(clauses, fmt.Sprintf("(claim_number ILIKE $%d OR tracking_number ILIKE $%d OR customer_name ILIKE $%d)", len(args), len(args), len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ClaimCase
	for rows.Next() {
		var claim domain.ClaimCase
		if err := rows.Scan(
			&claim.ID,
			&claim.ClaimNumber,
			&claim.Carrier,
			&claim.TrackingNumber,
			&claim.CustomerName,
			&claim.Status,
			&claim.Priority,
			&claim.ClaimedAmount,
			&claim.ApprovedAmount,
			&claim.Description,
			&claim.Tags,
			&claim.CreatedAt,
			&claim.UpdatedAt,
			&claim.ClosedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, claim)
	}
	return result, rows.Err()
}

func statusStrings(statuses []domain.ClaimStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func priorityStrings(priorities []domain.ClaimPriority) []string {
	out := make([]string, 0, len(priorities))
	for _, p := range priorities {
		out = append(out, string(p))
	}
	return out
}
