package notification

import (
	"context"

	"github.com/google/uuid"

	"fitbook/internal/client"
	"fitbook/internal/logger"
	"fitbook/internal/metrics"
	"fitbook/internal/reservation"
)

// Dispatcher consumes lifecycle events and fans each relevant one out to
// the in-app store and the configured channels, once per event per channel.
// Nothing here ever propagates back to the lifecycle caller.
type Dispatcher struct {
	events    <-chan reservation.Event
	store     Store
	directory client.Directory
	channels  []Channel
}

func NewDispatcher(bus *reservation.Bus, store Store, directory client.Directory, channels ...Channel) *Dispatcher {
	return &Dispatcher{
		events:    bus.Events(),
		store:     store,
		directory: directory,
		channels:  channels,
	}
}

func (d *Dispatcher) Run(ctx context.Context) {
	logger.Info("Notification dispatcher started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification dispatcher stopped")
			return
		case ev, ok := <-d.events:
			if !ok {
				logger.Info("Notification dispatcher stopped: bus closed")
				return
			}
			d.handle(ctx, ev)
		}
	}
}

// Only bookings and cancellations notify the client. Other transitions
// stay internal.
func notifiable(t reservation.EventType) bool {
	return t == reservation.EventCreated || t == reservation.EventCancelled
}

func (d *Dispatcher) handle(ctx context.Context, ev reservation.Event) {
	if !notifiable(ev.Type) {
		return
	}

	msg := Render(ev)

	n := &Notification{
		ID:            uuid.NewString(),
		OwnerID:       ev.Reservation.OwnerID,
		ReservationID: ev.Reservation.ID,
		Type:          string(ev.Type),
		Title:         msg.Subject,
		Message:       msg.Short,
	}
	if err := d.store.Save(ctx, n); err != nil {
		logger.Errorf("Failed to store notification for reservation %s: %v", ev.Reservation.ID, err)
	} else {
		metrics.RecordNotification("in-app", "sent")
	}

	// The owner's policy can opt the client out of cancellation messages.
	// The in-app record above is owner-facing and stays either way.
	if !ev.NotifyClient {
		return
	}

	recipient, err := d.directory.GetClient(ctx, ev.Reservation.ClientID)
	if err != nil {
		logger.Errorf("Failed to resolve client %s for notification: %v", ev.Reservation.ClientID, err)
		return
	}

	for _, ch := range d.channels {
		if err := ch.Send(ctx, *recipient, msg); err != nil {
			metrics.RecordNotification(ch.Name(), "failed")
			logger.Error("Notification channel delivery failed",
				"channel", ch.Name(),
				"reservation_id", ev.Reservation.ID,
				"error", err,
			)
			continue
		}
		metrics.RecordNotification(ch.Name(), "sent")
	}
}
