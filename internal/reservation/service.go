package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fitbook/internal/logger"
	"fitbook/internal/metrics"
	"fitbook/internal/pack"
	"fitbook/internal/payment"
	"fitbook/internal/policy"
)

type Service interface {
	Create(ctx context.Context, ownerID string, req CreateReservationRequest) (*Reservation, error)
	GetByID(ctx context.Context, id string) (*Reservation, error)
	List(ctx context.Context, f Filter) ([]Reservation, error)
	Confirm(ctx context.Context, id string) (*Reservation, error)
	Reschedule(ctx context.Context, id string, req RescheduleRequest) (*Reservation, error)
	Cancel(ctx context.Context, id string, initiator Initiator, reason string) (*CancelResult, error)
	Complete(ctx context.Context, id string) (*Reservation, error)
	MarkNoShow(ctx context.Context, id string) (*Reservation, error)
	Upcoming(ctx context.Context, ownerID string) ([]Reservation, error)
	Unpaid(ctx context.Context, ownerID string) ([]Reservation, error)
	MarkPaid(ctx context.Context, id, method string) (*Reservation, error)
}

type service struct {
	store    Store
	packs    pack.Repository
	policies policy.Repository
	charger  payment.Charger
	bus      *Bus

	autoConfirm bool
	now         func() time.Time
}

func NewService(store Store, packs pack.Repository, policies policy.Repository,
	charger payment.Charger, bus *Bus, autoConfirm bool) Service {
	return &service{
		store:       store,
		packs:       packs,
		policies:    policies,
		charger:     charger,
		bus:         bus,
		autoConfirm: autoConfirm,
		now:         time.Now,
	}
}

func (s *service) Create(ctx context.Context, ownerID string, req CreateReservationRequest) (*Reservation, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	if !ValidSessionType(req.SessionType) {
		return nil, ErrInvalidSessionType
	}
	if !req.EndAt.After(req.StartAt) {
		return nil, ErrInvalidTimeRange
	}

	now := s.now()
	if req.StartAt.Before(now) {
		return nil, ErrPastDate
	}

	// Double-booking guard: the owner cannot hold two live reservations in
	// the same slot.
	overlapping, err := s.store.CountOverlapping(ctx, ownerID, req.StartAt, req.EndAt, "")
	if err != nil {
		return nil, err
	}
	if overlapping > 0 {
		return nil, ErrSlotUnavailable
	}

	mode := req.DeliveryMode
	if mode == "" {
		mode = ModeInPerson
	}

	price := req.Price
	paid := false

	// A pack-funded reservation must be covered before anything is persisted.
	if req.PackID != nil {
		p, err := s.packs.GetByID(ctx, *req.PackID)
		if err != nil {
			return nil, err
		}
		if p.ClientID != req.ClientID {
			return nil, ErrPackClientMismatch
		}
		if err := pack.CheckDebitable(p, now); err != nil {
			return nil, err
		}
		if price == 0 {
			price = p.PricePerSession
		}
		paid = true
	}

	state := StatePending
	if s.autoConfirm {
		state = StateConfirmed
	}

	r := &Reservation{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		ClientID:     req.ClientID,
		ClientName:   req.ClientName,
		SessionType:  req.SessionType,
		DeliveryMode: mode,
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
		State:        state,
		Price:        price,
		Paid:         paid,
		PackID:       req.PackID,
		Notes:        req.Notes,
	}

	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}

	metrics.RecordReservation(string(r.State))
	logger.Info("Reservation created",
		"reservation_id", r.ID,
		"client_id", r.ClientID,
		"state", string(r.State),
		"start_at", r.StartAt,
	)

	s.bus.Publish(Event{Type: EventCreated, Reservation: *r, NotifyClient: true})
	return r, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Reservation, error) {
	return s.store.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, f Filter) ([]Reservation, error) {
	return s.store.Query(ctx, f)
}

func (s *service) Confirm(ctx context.Context, id string) (*Reservation, error) {
	res, err := s.store.Transition(ctx, TransitionRequest{
		ID:   id,
		From: []State{StatePending},
		To:   StateConfirmed,
	})
	if err != nil {
		if errors.Is(err, ErrStateConflict) {
			// Confirming an already confirmed reservation is a no-op.
			if res.Reservation.State == StateConfirmed {
				return res.Reservation, nil
			}
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	metrics.RecordReservation(string(StateConfirmed))
	s.bus.Publish(Event{Type: EventConfirmed, Reservation: *res.Reservation, NotifyClient: true})
	return res.Reservation, nil
}

func (s *service) Reschedule(ctx context.Context, id string, req RescheduleRequest) (*Reservation, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	if !req.EndAt.After(req.StartAt) {
		return nil, ErrInvalidTimeRange
	}

	now := s.now()
	if req.StartAt.Before(now) {
		return nil, ErrPastDate
	}

	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.State.IsTerminal() {
		return nil, ErrInvalidTransition
	}

	overlapping, err := s.store.CountOverlapping(ctx, r.OwnerID, req.StartAt, req.EndAt, id)
	if err != nil {
		return nil, err
	}
	if overlapping > 0 {
		return nil, ErrSlotUnavailable
	}

	note := fmt.Sprintf("Rescheduled to %s", req.StartAt.Format("2006-01-02 15:04"))
	updated, err := s.store.UpdateSchedule(ctx, id, req.StartAt, req.EndAt, note)
	if err != nil {
		return nil, err
	}

	logger.Info("Reservation rescheduled",
		"reservation_id", id,
		"start_at", updated.StartAt,
		"end_at", updated.EndAt,
	)
	return updated, nil
}

func (s *service) Cancel(ctx context.Context, id string, initiator Initiator, reason string) (*CancelResult, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.State.IsCancelled() {
		return nil, ErrAlreadyCancelled
	}
	if r.State.IsTerminal() {
		return nil, ErrInvalidTransition
	}

	pol, err := s.policies.GetByOwner(ctx, r.OwnerID)
	if err != nil && !errors.Is(err, policy.ErrNoPolicy) {
		return nil, err
	}

	now := s.now()
	ev := policy.Evaluate(pol, r.StartAt, r.Price, now)
	if !ev.CanCancel {
		metrics.RecordCancellationRejection()
		return nil, fmt.Errorf("%w: %s", ErrCancellationNotAllowed, ev.Message)
	}

	target := StateCancelledByClient
	if initiator == InitiatorCenter {
		target = StateCancelledByCenter
	}

	note := fmt.Sprintf("Cancelled by %s", initiator)
	if reason != "" {
		note += ": " + reason
	}
	if ev.FeeAmount > 0 {
		note += fmt.Sprintf(" (fee %.2f)", ev.FeeAmount)
	}

	res, err := s.store.Transition(ctx, TransitionRequest{
		ID:         id,
		From:       []State{StatePending, StateConfirmed},
		To:         target,
		AppendNote: note,
		DebitPack:  ev.ApplyPackPenalty && r.PackID != nil,
		CapDebit:   true,
	})
	if err != nil {
		if errors.Is(err, ErrStateConflict) {
			if res.Reservation.State.IsCancelled() {
				return nil, ErrAlreadyCancelled
			}
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	metrics.RecordReservation(string(target))
	if ev.FeeAmount > 0 {
		metrics.RecordLateCancellationFee()
		// Capture is best-effort. The fee stays in the result either way;
		// collecting it is the payment collaborator's job.
		if err := s.charger.Charge(ctx, r.ClientID, ev.FeeAmount); err != nil {
			logger.Errorf("Failed to charge cancellation fee for reservation %s: %v", id, err)
		}
	}
	if res.PackDebited {
		metrics.RecordPackDebit("penalty")
	}

	logger.Info("Reservation cancelled",
		"reservation_id", id,
		"initiator", string(initiator),
		"late", ev.IsLate,
		"fee", ev.FeeAmount,
		"pack_penalty", res.PackDebited,
	)

	s.bus.Publish(Event{
		Type:               EventCancelled,
		Reservation:        *res.Reservation,
		FeeAmount:          ev.FeeAmount,
		PackPenaltyApplied: res.PackDebited,
		NotifyClient:       ev.NotifyClient,
	})

	return &CancelResult{
		Reservation:        res.Reservation,
		FeeAmount:          ev.FeeAmount,
		PackPenaltyApplied: res.PackDebited,
		Message:            ev.Message,
	}, nil
}

func (s *service) Complete(ctx context.Context, id string) (*Reservation, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.State == StateCompleted {
		return r, nil
	}
	if r.State != StateConfirmed {
		return nil, ErrInvalidTransition
	}
	if s.now().Before(r.EndAt) {
		return nil, ErrSessionNotFinished
	}

	res, err := s.store.Transition(ctx, TransitionRequest{
		ID:        id,
		From:      []State{StateConfirmed},
		To:        StateCompleted,
		DebitPack: r.PackID != nil,
	})
	if err != nil {
		if errors.Is(err, ErrStateConflict) {
			if res.Reservation.State == StateCompleted {
				return res.Reservation, nil
			}
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	metrics.RecordReservation(string(StateCompleted))
	if res.PackDebited {
		metrics.RecordPackDebit("completion")
	}

	s.bus.Publish(Event{Type: EventCompleted, Reservation: *res.Reservation, NotifyClient: true})
	return res.Reservation, nil
}

func (s *service) MarkNoShow(ctx context.Context, id string) (*Reservation, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.State == StateNoShow {
		return r, nil
	}
	if r.State != StateConfirmed {
		return nil, ErrInvalidTransition
	}

	// A no-show still consumes the purchased session.
	res, err := s.store.Transition(ctx, TransitionRequest{
		ID:        id,
		From:      []State{StateConfirmed},
		To:        StateNoShow,
		DebitPack: r.PackID != nil,
	})
	if err != nil {
		if errors.Is(err, ErrStateConflict) {
			if res.Reservation.State == StateNoShow {
				return res.Reservation, nil
			}
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	metrics.RecordReservation(string(StateNoShow))
	if res.PackDebited {
		metrics.RecordPackDebit("no-show")
	}

	s.bus.Publish(Event{Type: EventNoShow, Reservation: *res.Reservation, NotifyClient: true})
	return res.Reservation, nil
}

func (s *service) Upcoming(ctx context.Context, ownerID string) ([]Reservation, error) {
	now := s.now()
	until := now.Add(24 * time.Hour)
	return s.store.Query(ctx, Filter{
		OwnerID: ownerID,
		States:  []State{StatePending, StateConfirmed},
		From:    &now,
		To:      &until,
	})
}

func (s *service) Unpaid(ctx context.Context, ownerID string) ([]Reservation, error) {
	unpaid := false
	return s.store.Query(ctx, Filter{
		OwnerID: ownerID,
		States:  []State{StatePending, StateConfirmed, StateCompleted},
		Paid:    &unpaid,
	})
}

func (s *service) MarkPaid(ctx context.Context, id, method string) (*Reservation, error) {
	note := "Marked as paid"
	if method != "" {
		note = "Marked as paid via " + method
	}

	r, err := s.store.MarkPaid(ctx, id, note)
	if err != nil {
		return nil, err
	}

	logger.Info("Reservation marked as paid", "reservation_id", id, "method", method)
	return r, nil
}
