package pack

import "context"

type Repository interface {
	Create(ctx context.Context, p *Pack) error
	GetByID(ctx context.Context, id string) (*Pack, error)
	ListByClient(ctx context.Context, clientID string) ([]Pack, error)
	// DebitSession consumes one session, serialized per pack id.
	DebitSession(ctx context.Context, id string) (*Pack, error)
}
