package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lims/lims/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// The table is constrained to a single row with id = 1.

func (r *repoPG) Get(ctx context.Context) (*LabSettings, error) {
	var s LabSettings
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT name, address, phone, email, logo, updated_at
		FROM lab_settings WHERE id = 1`).
		Scan(&s.Name, &s.Address, &s.Phone, &s.Email, &s.Logo, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) Upsert(ctx context.Context, s *LabSettings) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_settings (id, name, address, phone, email, logo)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			logo = EXCLUDED.logo,
			updated_at = now()`,
		s.Name, s.Address, s.Phone, s.Email, s.Logo)
	return err
}
