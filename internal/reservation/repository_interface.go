package reservation

import (
	"context"
	"time"
)

// Filter narrows a reservation query. Zero values mean "no constraint".
type Filter struct {
	OwnerID     string
	ClientID    string
	States      []State
	SessionType SessionType
	From        *time.Time
	To          *time.Time
	Paid        *bool
}

// TransitionRequest is an atomic state change. The store re-reads the row
// under lock, refuses it unless the current state is in From, and when
// DebitPack is set consumes one pack session in the same transaction so a
// failed debit aborts the whole transition.
type TransitionRequest struct {
	ID   string
	From []State
	To   State

	// AppendNote is added to the record's notes, newline separated.
	AppendNote string

	// DebitPack consumes one session from the linked pack. With CapDebit
	// the debit is skipped when the pack cannot be charged; without it the
	// pack error aborts the transition.
	DebitPack bool
	CapDebit  bool
}

// TransitionResult reports whether the pack was actually debited, which
// CapDebit can make differ from what was requested.
type TransitionResult struct {
	Reservation *Reservation
	PackDebited bool
}

type Store interface {
	Create(ctx context.Context, r *Reservation) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	Query(ctx context.Context, f Filter) ([]Reservation, error)
	// CountOverlapping counts the owner's pending or confirmed reservations
	// that intersect [startAt, endAt). excludeID leaves one reservation out
	// of the count, for rescheduling against itself.
	CountOverlapping(ctx context.Context, ownerID string, startAt, endAt time.Time, excludeID string) (int, error)
	// Transition applies req atomically. On a state mismatch it returns the
	// current record together with ErrStateConflict.
	Transition(ctx context.Context, req TransitionRequest) (*TransitionResult, error)
	UpdateSchedule(ctx context.Context, id string, startAt, endAt time.Time, note string) (*Reservation, error)
	MarkPaid(ctx context.Context, id string, note string) (*Reservation, error)
}
