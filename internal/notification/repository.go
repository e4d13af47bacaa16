package notification

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type postgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) Save(ctx context.Context, n *Notification) error {
	query := `
		INSERT INTO notifications (id, owner_id, reservation_id, type, title, message, read)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	return s.db.QueryRowxContext(ctx, query,
		n.ID, n.OwnerID, n.ReservationID, n.Type, n.Title, n.Message, n.Read,
	).Scan(&n.CreatedAt)
}

func (s *postgresStore) ListByOwner(ctx context.Context, ownerID string) ([]Notification, error) {
	query := `
		SELECT id, owner_id, reservation_id, type, title, message, read, created_at
		FROM notifications
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	var out []Notification
	if err := s.db.SelectContext(ctx, &out, query, ownerID); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *postgresStore) MarkRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *postgresStore) CountUnread(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE owner_id = $1 AND read = FALSE`, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}
