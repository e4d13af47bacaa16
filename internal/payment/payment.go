package payment

import (
	"context"

	"fitbook/internal/logger"
)

// Charger is the payment capture boundary. Collecting the money is an
// external collaborator concern; only success or failure comes back.
type Charger interface {
	Charge(ctx context.Context, clientID string, amount float64) error
}

// LogCharger records the charge and reports success. It stands in until a
// real gateway adapter is configured.
type LogCharger struct{}

func (LogCharger) Charge(_ context.Context, clientID string, amount float64) error {
	logger.Info("Charge requested", "client_id", clientID, "amount", amount)
	return nil
}
