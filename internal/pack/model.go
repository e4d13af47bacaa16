package pack

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusExhausted Status = "exhausted"
	StatusSuspended Status = "suspended"
)

// Pack is a prepaid bundle of sessions (a "bono") bought once by a client
// and consumed across future reservations.
type Pack struct {
	ID           string    `db:"id" json:"id"`
	DefinitionID string    `db:"definition_id" json:"definition_id"`
	Name         string    `db:"name" json:"name"`
	ClientID     string    `db:"client_id" json:"client_id"`
	ClientName   string    `db:"client_name" json:"client_name"`

	TotalSessions int `db:"total_sessions" json:"total_sessions"`
	UsedSessions  int `db:"used_sessions" json:"used_sessions"`

	PurchaseDate time.Time `db:"purchase_date" json:"purchase_date"`
	ExpiryDate   time.Time `db:"expiry_date" json:"expiry_date"`
	Suspended    bool      `db:"suspended" json:"suspended"`

	// Price is what the client paid for the whole pack, discount included.
	Price           float64 `db:"price" json:"price"`
	PricePerSession float64 `db:"price_per_session" json:"price_per_session"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (p *Pack) RemainingSessions() int {
	return p.TotalSessions - p.UsedSessions
}

// Status derives the pack state. Exhaustion wins over expiry so that a fully
// used pack reads as exhausted even after its expiry date passes.
func (p *Pack) Status(now time.Time) Status {
	if p.Suspended {
		return StatusSuspended
	}
	if p.RemainingSessions() <= 0 {
		return StatusExhausted
	}
	if now.After(p.ExpiryDate) {
		return StatusExpired
	}
	return StatusActive
}

// Definition describes a pack on sale; the computed price is frozen into the
// Pack record at purchase time.
type Definition struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	SessionCount    int     `json:"session_count"`
	PricePerSession float64 `json:"price_per_session"`
	ValidityMonths  int     `json:"validity_months"`
}

type Client struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CreatePackRequest struct {
	DefinitionID    string  `json:"definition_id"`
	Name            string  `json:"name" binding:"required"`
	ClientID        string  `json:"client_id" binding:"required"`
	ClientName      string  `json:"client_name"`
	SessionCount    int     `json:"session_count" binding:"required,min=1"`
	PricePerSession float64 `json:"price_per_session" binding:"required,gte=0"`
	ValidityMonths  int     `json:"validity_months" binding:"min=0"`
}

type PackStatusResponse struct {
	ID                string `json:"id"`
	Status            Status `json:"status"`
	TotalSessions     int    `json:"total_sessions"`
	UsedSessions      int    `json:"used_sessions"`
	RemainingSessions int    `json:"remaining_sessions"`
}
