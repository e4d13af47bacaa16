package notification

import (
	"fmt"

	"fitbook/internal/reservation"
)

const sessionTimeFormat = "Jan 2, 2006 at 15:04"

// Render builds both message variants for a lifecycle event. Channels that
// cannot carry the full text (SMS) use Short.
func Render(ev reservation.Event) Message {
	r := ev.Reservation
	name := r.ClientName
	if name == "" {
		name = "there"
	}
	when := r.StartAt.Format(sessionTimeFormat)

	switch ev.Type {
	case reservation.EventCreated:
		return Message{
			Subject: "New reservation",
			Full: fmt.Sprintf(`Hi %s,

Your %s session is booked for %s.

State: %s

- FitBook`, name, r.SessionType, when, r.State),
			Short: fmt.Sprintf("FitBook: %s session booked for %s", r.SessionType, when),
		}

	case reservation.EventCancelled:
		full := fmt.Sprintf(`Hi %s,

Your %s session on %s has been cancelled.`, name, r.SessionType, when)
		short := fmt.Sprintf("FitBook: %s session on %s cancelled", r.SessionType, when)

		if ev.FeeAmount > 0 {
			full += fmt.Sprintf("\n\nA late cancellation fee of %.2f applies.", ev.FeeAmount)
			short += fmt.Sprintf(", fee %.2f", ev.FeeAmount)
		}
		if ev.PackPenaltyApplied {
			full += "\n\nOne session from your pack has been consumed."
			short += ", 1 pack session used"
		}
		full += "\n\n- FitBook"

		return Message{Subject: "Reservation cancelled", Full: full, Short: short}

	default:
		return Message{
			Subject: "Reservation update",
			Full:    fmt.Sprintf("Hi %s,\n\nYour %s session on %s is now %s.\n\n- FitBook", name, r.SessionType, when, r.State),
			Short:   fmt.Sprintf("FitBook: %s session on %s is now %s", r.SessionType, when, r.State),
		}
	}
}
