package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"fitbook/internal/pack"
)

const reservationColumns = `id, owner_id, client_id, client_name, session_type, delivery_mode,
	start_at, end_at, state, price, paid, pack_id, notes, created_at, updated_at`

type store struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewStore(db *sqlx.DB) Store {
	return &store{db: db, now: time.Now}
}

func (s *store) Create(ctx context.Context, r *Reservation) error {
	query := `
		INSERT INTO reservations (id, owner_id, client_id, client_name, session_type,
			delivery_mode, start_at, end_at, state, price, paid, pack_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	return s.db.QueryRowxContext(ctx, query,
		r.ID, r.OwnerID, r.ClientID, r.ClientName, r.SessionType,
		r.DeliveryMode, r.StartAt, r.EndAt, r.State, r.Price, r.Paid, r.PackID, r.Notes,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
}

func (s *store) GetByID(ctx context.Context, id string) (*Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	var r Reservation
	err := s.db.GetContext(ctx, &r, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &r, nil
}

func (s *store) Query(ctx context.Context, f Filter) ([]Reservation, error) {
	var (
		conds []string
		args  []interface{}
	)

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.OwnerID != "" {
		add("owner_id = $%d", f.OwnerID)
	}
	if f.ClientID != "" {
		add("client_id = $%d", f.ClientID)
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, st := range f.States {
			states[i] = string(st)
		}
		add("state = ANY($%d)", pq.Array(states))
	}
	if f.SessionType != "" {
		add("session_type = $%d", f.SessionType)
	}
	if f.From != nil {
		add("start_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("start_at < $%d", *f.To)
	}
	if f.Paid != nil {
		add("paid = $%d", *f.Paid)
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY start_at ASC"

	var out []Reservation
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *store) CountOverlapping(ctx context.Context, ownerID string, startAt, endAt time.Time, excludeID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM reservations
		WHERE owner_id = $1
		  AND id <> $2
		  AND state IN ('pending', 'confirmed')
		  AND start_at < $4
		  AND end_at > $3
	`

	var count int
	if err := s.db.GetContext(ctx, &count, query, ownerID, excludeID, startAt, endAt); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *store) UpdateSchedule(ctx context.Context, id string, startAt, endAt time.Time, note string) (*Reservation, error) {
	query := `
		UPDATE reservations
		SET start_at = $2,
		    end_at = $3,
		    notes = CASE WHEN $4 = '' THEN notes
		                 WHEN notes = '' THEN $4
		                 ELSE notes || E'\n' || $4 END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + reservationColumns

	var r Reservation
	err := s.db.QueryRowxContext(ctx, query, id, startAt, endAt, note).StructScan(&r)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &r, nil
}

// Transition serializes per reservation id through a row lock. Locks are
// always taken reservation first, pack second, so this cannot deadlock
// against a concurrent transition touching the same pair.
func (s *store) Transition(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	r, err := lockReservation(ctx, tx, req.ID)
	if err != nil {
		return nil, err
	}

	if !stateIn(r.State, req.From) {
		return &TransitionResult{Reservation: r}, ErrStateConflict
	}

	debited := false
	if req.DebitPack && r.PackID != nil {
		debited, err = debitPackInTx(ctx, tx, *r.PackID, req.CapDebit, s.now())
		if err != nil {
			return nil, err
		}
	}

	query := `
		UPDATE reservations
		SET state = $2,
		    notes = CASE WHEN $3 = '' THEN notes
		                 WHEN notes = '' THEN $3
		                 ELSE notes || E'\n' || $3 END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + reservationColumns

	var updated Reservation
	if err := tx.QueryRowxContext(ctx, query, req.ID, req.To, req.AppendNote).StructScan(&updated); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &TransitionResult{Reservation: &updated, PackDebited: debited}, nil
}

func (s *store) MarkPaid(ctx context.Context, id string, note string) (*Reservation, error) {
	query := `
		UPDATE reservations
		SET paid = TRUE,
		    notes = CASE WHEN $2 = '' THEN notes
		                 WHEN notes = '' THEN $2
		                 ELSE notes || E'\n' || $2 END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + reservationColumns

	var r Reservation
	err := s.db.QueryRowxContext(ctx, query, id, note).StructScan(&r)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &r, nil
}

func lockReservation(ctx context.Context, tx *sqlx.Tx, id string) (*Reservation, error) {
	var r Reservation
	err := tx.QueryRowxContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`,
		id,
	).StructScan(&r)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// debitPackInTx consumes one session from the pack inside the caller's
// transaction. With capped=true an undebitable pack skips the debit instead
// of failing the transition.
func debitPackInTx(ctx context.Context, tx *sqlx.Tx, packID string, capped bool, now time.Time) (bool, error) {
	var p pack.Pack
	err := tx.QueryRowxContext(ctx,
		`SELECT id, definition_id, name, client_id, client_name, total_sessions,
			used_sessions, purchase_date, expiry_date, suspended, price, price_per_session,
			created_at, updated_at
		 FROM session_packs WHERE id = $1 FOR UPDATE`,
		packID,
	).StructScan(&p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, pack.ErrPackNotFound
		}
		return false, err
	}

	if err := pack.CheckDebitable(&p, now); err != nil {
		if capped {
			return false, nil
		}
		return false, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE session_packs
		 SET used_sessions = used_sessions + 1, updated_at = NOW()
		 WHERE id = $1`,
		packID,
	)
	if err != nil {
		return false, err
	}

	return true, nil
}

func stateIn(s State, set []State) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}
