package notification

import "time"

type Notification struct {
	ID            string    `db:"id" json:"id"`
	OwnerID       string    `db:"owner_id" json:"owner_id"`
	ReservationID string    `db:"reservation_id" json:"reservation_id"`
	Type          string    `db:"type" json:"type"`
	Title         string    `db:"title" json:"title"`
	Message       string    `db:"message" json:"message"`
	Read          bool      `db:"read" json:"read"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Message is one rendered notification in both lengths. Channels pick the
// variant that fits their medium.
type Message struct {
	Subject string
	Full    string
	Short   string
}
