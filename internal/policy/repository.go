package policy

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrNoPolicy means the owner never configured one. Callers treat this
// the same as an inactive policy.
var ErrNoPolicy = errors.New("no cancellation policy configured")

type Repository interface {
	GetByOwner(ctx context.Context, ownerID string) (*Policy, error)
	Upsert(ctx context.Context, p *Policy) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const policyColumns = `id, owner_id, active, min_advance_hours, allow_late_cancellation,
	apply_late_fee, fee_percentage, fee_fixed_amount, apply_pack_penalty,
	notify_client, custom_message, created_at, updated_at`

func (r *repository) GetByOwner(ctx context.Context, ownerID string) (*Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM cancellation_policies WHERE owner_id = $1`

	var p Policy
	err := r.db.GetContext(ctx, &p, query, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoPolicy
		}
		return nil, err
	}

	return &p, nil
}

// Upsert keeps a single policy row per owner.
func (r *repository) Upsert(ctx context.Context, p *Policy) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	query := `
		INSERT INTO cancellation_policies (id, owner_id, active, min_advance_hours,
			allow_late_cancellation, apply_late_fee, fee_percentage, fee_fixed_amount,
			apply_pack_penalty, notify_client, custom_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (owner_id) DO UPDATE SET
			active = EXCLUDED.active,
			min_advance_hours = EXCLUDED.min_advance_hours,
			allow_late_cancellation = EXCLUDED.allow_late_cancellation,
			apply_late_fee = EXCLUDED.apply_late_fee,
			fee_percentage = EXCLUDED.fee_percentage,
			fee_fixed_amount = EXCLUDED.fee_fixed_amount,
			apply_pack_penalty = EXCLUDED.apply_pack_penalty,
			notify_client = EXCLUDED.notify_client,
			custom_message = EXCLUDED.custom_message,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRowxContext(ctx, query,
		p.ID, p.OwnerID, p.Active, p.MinAdvanceHours,
		p.AllowLateCancellation, p.ApplyLateFee, p.FeePercentage, p.FeeFixedAmount,
		p.ApplyPackPenalty, p.NotifyClient, p.CustomMessage,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}
