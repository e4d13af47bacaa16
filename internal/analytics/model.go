package analytics

import "fitbook/internal/reservation"

// Snapshot is a computed projection over a filtered reservation set. It is
// never persisted.
type Snapshot struct {
	TotalCount     int `json:"total_count"`
	PendingCount   int `json:"pending_count"`
	ConfirmedCount int `json:"confirmed_count"`
	CompletedCount int `json:"completed_count"`
	CancelledCount int `json:"cancelled_count"`
	NoShowCount    int `json:"no_show_count"`

	// Revenue counts only paid reservations in completed or confirmed state.
	TotalRevenue float64 `json:"total_revenue"`
	// AvgRevenue divides revenue by the reservations that contributed to it.
	AvgRevenue float64 `json:"avg_revenue_per_reservation"`

	// OccupancyRate is the share of reservations that reached completed,
	// rounded to a whole percentage.
	OccupancyRate float64 `json:"occupancy_rate"`
	// CancellationRate counts both cancellation states; no-shows are
	// deliberately excluded.
	CancellationRate float64 `json:"cancellation_rate"`

	BySessionType   map[reservation.SessionType]int `json:"by_session_type"`
	ByMonth         []MonthBucket                   `json:"by_month"`
	TopHours        []HourBucket                    `json:"top_hours"`
	RevenueByClient []ClientRevenue                 `json:"revenue_by_client"`
}

// MonthBucket keys months as "2006-01" so lexical order is chronological.
type MonthBucket struct {
	Month   string  `json:"month"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type HourBucket struct {
	Hour    int     `json:"hour"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type ClientRevenue struct {
	ClientID   string  `json:"client_id"`
	ClientName string  `json:"client_name"`
	Revenue    float64 `json:"revenue"`
}
