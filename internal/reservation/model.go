package reservation

import (
	"errors"
	"fmt"
	"time"
)

type State string

const (
	StatePending           State = "pending"
	StateConfirmed         State = "confirmed"
	StateCompleted         State = "completed"
	StateNoShow            State = "no-show"
	StateCancelledByClient State = "cancelled-by-client"
	StateCancelledByCenter State = "cancelled-by-center"
)

func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StateNoShow, StateCancelledByClient, StateCancelledByCenter:
		return true
	}
	return false
}

func (s State) IsCancelled() bool {
	return s == StateCancelledByClient || s == StateCancelledByCenter
}

type SessionType string

const (
	TypeOneOnOne   SessionType = "one-on-one"
	TypeGroupClass SessionType = "group-class"
	TypePhysio     SessionType = "physio"
	TypeNutrition  SessionType = "nutrition"
	TypeMassage    SessionType = "massage"
)

func ValidSessionType(t SessionType) bool {
	switch t {
	case TypeOneOnOne, TypeGroupClass, TypePhysio, TypeNutrition, TypeMassage:
		return true
	}
	return false
}

type DeliveryMode string

const (
	ModeInPerson  DeliveryMode = "in-person"
	ModeVideoCall DeliveryMode = "video-call"
)

var (
	ErrNotFound               = errors.New("reservation not found")
	ErrInvalidTransition      = errors.New("invalid reservation transition")
	ErrAlreadyCancelled       = errors.New("reservation already cancelled")
	ErrCancellationNotAllowed = errors.New("cancellation not allowed")
	ErrSessionNotFinished     = errors.New("session has not finished yet")
	ErrPastDate               = errors.New("reservation date is in the past")
	ErrInvalidTimeRange       = errors.New("end time must be after start time")
	ErrInvalidSessionType     = errors.New("unknown session type")
	ErrPackClientMismatch     = errors.New("pack belongs to a different client")
	ErrSlotUnavailable        = errors.New("time slot is not available")

	// ErrStateConflict is a store-level signal that the row was not in any of
	// the expected source states. The service layer turns it into the
	// idempotence contract or ErrInvalidTransition.
	ErrStateConflict = errors.New("reservation state conflict")
)

type Reservation struct {
	ID         string `db:"id" json:"id"`
	OwnerID    string `db:"owner_id" json:"owner_id"`
	ClientID   string `db:"client_id" json:"client_id"`
	ClientName string `db:"client_name" json:"client_name"`

	SessionType  SessionType  `db:"session_type" json:"session_type"`
	DeliveryMode DeliveryMode `db:"delivery_mode" json:"delivery_mode,omitempty"`

	StartAt time.Time `db:"start_at" json:"start_at"`
	EndAt   time.Time `db:"end_at" json:"end_at"`

	State State   `db:"state" json:"state"`
	Price float64 `db:"price" json:"price"`
	Paid  bool    `db:"paid" json:"paid"`

	// PackID links the reservation to the prepaid session pack funding it.
	PackID *string `db:"pack_id" json:"pack_id,omitempty"`

	Notes string `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CreateReservationRequest accepts either start_at/end_at or the legacy
// date + HH:MM pair still sent by older clients. Normalization happens once
// at this boundary; everything past it sees start_at/end_at only.
type CreateReservationRequest struct {
	ClientID   string `json:"client_id" binding:"required"`
	ClientName string `json:"client_name"`

	SessionType  SessionType  `json:"session_type" binding:"required"`
	DeliveryMode DeliveryMode `json:"delivery_mode"`

	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`

	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`

	Price  float64 `json:"price" binding:"gte=0"`
	PackID *string `json:"pack_id"`
	Notes  string  `json:"notes"`
}

// Normalize resolves the legacy date/time triple into StartAt/EndAt.
func (r *CreateReservationRequest) Normalize() error {
	start, end, err := resolveTimeRange(r.StartAt, r.EndAt, r.Date, r.StartTime, r.EndTime)
	if err != nil {
		return err
	}
	r.StartAt = start
	r.EndAt = end
	return nil
}

func resolveTimeRange(startAt, endAt time.Time, date, startTime, endTime string) (time.Time, time.Time, error) {
	if !startAt.IsZero() && !endAt.IsZero() {
		return startAt, endAt, nil
	}
	if date == "" || startTime == "" || endTime == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("either start_at/end_at or date with start_time/end_time is required")
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+startTime, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date or start_time: %w", err)
	}
	end, err := time.ParseInLocation("2006-01-02 15:04", date+" "+endTime, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_time: %w", err)
	}

	return start, end, nil
}

type Initiator string

const (
	InitiatorClient Initiator = "client"
	InitiatorCenter Initiator = "center"
)

type CancelRequest struct {
	Initiator Initiator `json:"initiator" binding:"required,oneof=client center"`
	Reason    string    `json:"reason"`
}

type MarkPaidRequest struct {
	Method string `json:"method" binding:"omitempty,oneof=cash card transfer"`
}

// RescheduleRequest moves a reservation to a new time slot. It accepts the
// same legacy date/time triple as creation.
type RescheduleRequest struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`

	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (r *RescheduleRequest) Normalize() error {
	start, end, err := resolveTimeRange(r.StartAt, r.EndAt, r.Date, r.StartTime, r.EndTime)
	if err != nil {
		return err
	}
	r.StartAt = start
	r.EndAt = end
	return nil
}

// CancelResult is what a successful cancellation surfaces to the caller:
// the updated record plus what the policy decided.
type CancelResult struct {
	Reservation        *Reservation `json:"reservation"`
	FeeAmount          float64      `json:"fee_amount"`
	PackPenaltyApplied bool         `json:"pack_penalty_applied"`
	Message            string       `json:"message"`
}
