package client

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("client not found")

type Client struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
	Phone string `db:"phone" json:"phone"`
}

// Directory resolves client contact details, mainly for notification
// rendering and delivery addressing.
type Directory interface {
	GetClient(ctx context.Context, id string) (*Client, error)
}

type directory struct {
	db *sqlx.DB
}

func NewDirectory(db *sqlx.DB) Directory {
	return &directory{db: db}
}

func (d *directory) GetClient(ctx context.Context, id string) (*Client, error) {
	var c Client
	err := d.db.GetContext(ctx, &c,
		`SELECT id, name, email, phone FROM clients WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &c, nil
}
