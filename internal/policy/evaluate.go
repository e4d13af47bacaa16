package policy

import (
	"fmt"
	"time"
)

// Evaluation is the verdict for one cancellation attempt. It is computed
// from inputs alone so the same attempt always evaluates the same way.
type Evaluation struct {
	CanCancel        bool    `json:"can_cancel"`
	IsLate           bool    `json:"is_late"`
	FeeAmount        float64 `json:"fee_amount"`
	ApplyPackPenalty bool    `json:"apply_pack_penalty"`
	// NotifyClient carries the policy's opt-out: when false the owner does
	// not want the client contacted about this cancellation.
	NotifyClient bool   `json:"notify_client"`
	Message      string `json:"message"`
}

// Evaluate applies a cancellation policy to a session starting at startAt,
// priced at price, as seen at instant now. A nil or inactive policy permits
// everything. A session already underway counts as late; hours until start
// is simply negative then.
func Evaluate(p *Policy, startAt time.Time, price float64, now time.Time) Evaluation {
	if p == nil || !p.Active {
		return Evaluation{CanCancel: true, NotifyClient: true, Message: "Cancellation allowed free of charge"}
	}

	hoursUntil := startAt.Sub(now).Hours()
	if hoursUntil >= p.MinAdvanceHours {
		return Evaluation{CanCancel: true, NotifyClient: p.NotifyClient, Message: "Cancellation allowed free of charge"}
	}

	ev := Evaluation{IsLate: true, NotifyClient: p.NotifyClient}

	if !p.AllowLateCancellation {
		ev.CanCancel = false
		ev.Message = p.CustomMessage
		if ev.Message == "" {
			ev.Message = fmt.Sprintf("Cancellations require at least %g hours notice", p.MinAdvanceHours)
		}
		return ev
	}

	ev.CanCancel = true
	ev.ApplyPackPenalty = p.ApplyPackPenalty

	if p.ApplyLateFee {
		switch {
		case p.FeePercentage != nil:
			ev.FeeAmount = price * *p.FeePercentage / 100
		case p.FeeFixedAmount != nil:
			ev.FeeAmount = *p.FeeFixedAmount
		}
	}

	ev.Message = p.CustomMessage
	if ev.Message == "" {
		switch {
		case ev.FeeAmount > 0 && ev.ApplyPackPenalty:
			ev.Message = fmt.Sprintf("Late cancellation: a fee of %.2f applies and one pack session is consumed", ev.FeeAmount)
		case ev.FeeAmount > 0:
			ev.Message = fmt.Sprintf("Late cancellation: a fee of %.2f applies", ev.FeeAmount)
		case ev.ApplyPackPenalty:
			ev.Message = "Late cancellation: one pack session is consumed"
		default:
			ev.Message = "Late cancellation accepted without charge"
		}
	}

	return ev
}
