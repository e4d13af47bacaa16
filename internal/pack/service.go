package pack

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fitbook/internal/logger"
	"fitbook/internal/metrics"
)

const defaultValidityMonths = 12

type Service interface {
	CreatePack(ctx context.Context, def Definition, client Client) (*Pack, error)
	GetPack(ctx context.Context, id string) (*Pack, error)
	GetStatus(ctx context.Context, id string) (*PackStatusResponse, error)
	ListByClient(ctx context.Context, clientID string) ([]Pack, error)
	DebitSession(ctx context.Context, id string) (*Pack, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) CreatePack(ctx context.Context, def Definition, client Client) (*Pack, error) {
	validity := def.ValidityMonths
	if validity <= 0 {
		validity = defaultValidityMonths
	}

	purchase := s.now()
	p := &Pack{
		ID:              uuid.NewString(),
		DefinitionID:    def.ID,
		Name:            def.Name,
		ClientID:        client.ID,
		ClientName:      client.Name,
		TotalSessions:   def.SessionCount,
		UsedSessions:    0,
		PurchaseDate:    purchase,
		ExpiryDate:      purchase.AddDate(0, validity, 0),
		Price:           TotalPrice(def.SessionCount, def.PricePerSession),
		PricePerSession: def.PricePerSession,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	metrics.RecordPackCreated()
	logger.Info("Session pack created",
		"pack_id", p.ID,
		"client_id", p.ClientID,
		"sessions", p.TotalSessions,
		"price", p.Price,
	)

	return p, nil
}

func (s *service) GetPack(ctx context.Context, id string) (*Pack, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetStatus(ctx context.Context, id string) (*PackStatusResponse, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &PackStatusResponse{
		ID:                p.ID,
		Status:            p.Status(s.now()),
		TotalSessions:     p.TotalSessions,
		UsedSessions:      p.UsedSessions,
		RemainingSessions: p.RemainingSessions(),
	}, nil
}

func (s *service) ListByClient(ctx context.Context, clientID string) ([]Pack, error) {
	return s.repo.ListByClient(ctx, clientID)
}

func (s *service) DebitSession(ctx context.Context, id string) (*Pack, error) {
	p, err := s.repo.DebitSession(ctx, id)
	if err != nil {
		return nil, err
	}

	metrics.RecordPackDebit("manual")
	return p, nil
}
