package reservation

import (
	"time"

	"fitbook/internal/logger"
)

type EventType string

const (
	EventCreated   EventType = "reservation.created"
	EventConfirmed EventType = "reservation.confirmed"
	EventCancelled EventType = "reservation.cancelled"
	EventCompleted EventType = "reservation.completed"
	EventNoShow    EventType = "reservation.no-show"
)

type Event struct {
	Type               EventType
	Reservation        Reservation
	FeeAmount          float64
	PackPenaltyApplied bool
	// NotifyClient is false when the owner's cancellation policy opts out
	// of contacting the client. In-app records are unaffected.
	NotifyClient bool
	OccurredAt   time.Time
}

// Bus carries lifecycle events to the notification dispatcher. Publish must
// never block a lifecycle caller: when the buffer is full the event is
// dropped and logged. Events only drive notifications, so a drop loses a
// message, never state.
type Bus struct {
	ch chan Event
}

func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 64
	}
	return &Bus{ch: make(chan Event, buffer)}
}

func (b *Bus) Publish(ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	select {
	case b.ch <- ev:
	default:
		logger.Error("Event bus buffer full, dropping event",
			"type", string(ev.Type),
			"reservation_id", ev.Reservation.ID,
		)
	}
}

func (b *Bus) Events() <-chan Event {
	return b.ch
}

// Close stops the bus. Callers must stop publishing first; a Publish after
// Close panics on the closed channel.
func (b *Bus) Close() {
	close(b.ch)
}
