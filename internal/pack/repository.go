package pack

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrPackNotFound  = errors.New("pack not found")
	ErrPackExhausted = errors.New("pack has no remaining sessions")
	ErrPackExpired   = errors.New("pack has expired")
	ErrPackSuspended = errors.New("pack is suspended")
)

const packColumns = `id, definition_id, name, client_id, client_name, total_sessions,
	used_sessions, purchase_date, expiry_date, suspended, price, price_per_session,
	created_at, updated_at`

type repository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db, now: time.Now}
}

func (r *repository) Create(ctx context.Context, p *Pack) error {
	query := `
		INSERT INTO session_packs (id, definition_id, name, client_id, client_name,
			total_sessions, used_sessions, purchase_date, expiry_date, suspended,
			price, price_per_session)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	return r.db.QueryRowxContext(ctx, query,
		p.ID, p.DefinitionID, p.Name, p.ClientID, p.ClientName,
		p.TotalSessions, p.UsedSessions, p.PurchaseDate, p.ExpiryDate, p.Suspended,
		p.Price, p.PricePerSession,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *repository) GetByID(ctx context.Context, id string) (*Pack, error) {
	query := `SELECT ` + packColumns + ` FROM session_packs WHERE id = $1`

	var p Pack
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPackNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) ListByClient(ctx context.Context, clientID string) ([]Pack, error) {
	query := `SELECT ` + packColumns + ` FROM session_packs
		WHERE client_id = $1
		ORDER BY purchase_date DESC`

	var packs []Pack
	if err := r.db.SelectContext(ctx, &packs, query, clientID); err != nil {
		return nil, err
	}

	return packs, nil
}

// DebitSession increments used_sessions inside a row-locked transaction so
// two concurrent debits of the same pack can never overshoot total_sessions.
func (r *repository) DebitSession(ctx context.Context, id string) (*Pack, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := lockPack(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := CheckDebitable(p, r.now()); err != nil {
		return nil, err
	}

	err = tx.QueryRowxContext(ctx,
		`UPDATE session_packs
		 SET used_sessions = used_sessions + 1, updated_at = NOW()
		 WHERE id = $1
		 RETURNING used_sessions, updated_at`,
		id,
	).Scan(&p.UsedSessions, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return p, nil
}

func lockPack(ctx context.Context, tx *sqlx.Tx, id string) (*Pack, error) {
	var p Pack
	err := tx.QueryRowxContext(ctx,
		`SELECT `+packColumns+` FROM session_packs WHERE id = $1 FOR UPDATE`,
		id,
	).StructScan(&p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPackNotFound
		}
		return nil, err
	}
	return &p, nil
}

// CheckDebitable reports why a debit must be refused, if it must.
func CheckDebitable(p *Pack, now time.Time) error {
	switch p.Status(now) {
	case StatusSuspended:
		return ErrPackSuspended
	case StatusExhausted:
		return ErrPackExhausted
	case StatusExpired:
		return ErrPackExpired
	}
	return nil
}
