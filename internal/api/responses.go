package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// CancellationResponse reports the outcome of a cancellation, including any
// fee the caller still has to collect through the payment collaborator.
type CancellationResponse struct {
	Message            string  `json:"message" example:"Reservation cancelled"`
	FeeAmount          float64 `json:"fee_amount" example:"25"`
	PackPenaltyApplied bool    `json:"pack_penalty_applied" example:"false"`
}
