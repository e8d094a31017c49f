package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/pos-terminal/internal/domain/client"
)

const (
	listClientsSQL = `SELECT id, name, email, phone FROM clients ORDER BY name, id`

	getClientByIDSQL = `SELECT id, name, email, phone FROM clients WHERE id = $1`

	upsertClientSQL = `INSERT INTO clients (id, name, email, phone)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone`
)

var _ client.Directory = (*ClientRepository)(nil)

// ClientRepository implements client.Directory backed by PostgreSQL.
type ClientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository returns a ClientRepository that uses the given pool.
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

func (r *ClientRepository) List(ctx context.Context) ([]client.Client, error) {
	rows, err := r.pool.Query(ctx, listClientsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list clients")
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[client.Client])
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*client.Client, error) {
	rows, err := r.pool.Query(ctx, getClientByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get client %q", id)
	}
	c, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[client.Client])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, client.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get client %q", id)
	}
	return &c, nil
}

// Upsert inserts or updates clients in a single batch.
func (r *ClientRepository) Upsert(ctx context.Context, clients []client.Client) error {
	batch := &pgx.Batch{}
	for _, c := range clients {
		batch.Queue(upsertClientSQL, c.ID, c.Name, c.Email, c.Phone)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, "upsert clients")
	}
	return nil
}
