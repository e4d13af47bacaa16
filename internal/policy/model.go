package policy

import "time"

// Policy is an owner-level cancellation policy. A single row per owner;
// editing it never rewrites past cancellations, only future evaluations.
type Policy struct {
	ID      string `db:"id" json:"id"`
	OwnerID string `db:"owner_id" json:"owner_id"`
	Active  bool   `db:"active" json:"active"`

	// MinAdvanceHours is the notice window. Cancelling closer to the start
	// than this is a late cancellation.
	MinAdvanceHours       float64 `db:"min_advance_hours" json:"min_advance_hours"`
	AllowLateCancellation bool    `db:"allow_late_cancellation" json:"allow_late_cancellation"`

	ApplyLateFee   bool     `db:"apply_late_fee" json:"apply_late_fee"`
	FeePercentage  *float64 `db:"fee_percentage" json:"fee_percentage,omitempty"`
	FeeFixedAmount *float64 `db:"fee_fixed_amount" json:"fee_fixed_amount,omitempty"`

	// ApplyPackPenalty consumes the reserved pack session on a late cancel.
	ApplyPackPenalty bool `db:"apply_pack_penalty" json:"apply_pack_penalty"`

	NotifyClient  bool   `db:"notify_client" json:"notify_client"`
	CustomMessage string `db:"custom_message" json:"custom_message"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type UpsertPolicyRequest struct {
	Active                bool     `json:"active"`
	MinAdvanceHours       float64  `json:"min_advance_hours" binding:"gte=0"`
	AllowLateCancellation bool     `json:"allow_late_cancellation"`
	ApplyLateFee          bool     `json:"apply_late_fee"`
	FeePercentage         *float64 `json:"fee_percentage" binding:"omitempty,gte=0,lte=100"`
	FeeFixedAmount        *float64 `json:"fee_fixed_amount" binding:"omitempty,gte=0"`
	ApplyPackPenalty      bool     `json:"apply_pack_penalty"`
	NotifyClient          bool     `json:"notify_client"`
	CustomMessage         string   `json:"custom_message"`
}
