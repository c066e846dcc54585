package labtest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
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

const testCols = `id, code, name, sample_types, category, department, price, duration, status, parameters, created_at, updated_at`

func scanTest(row pgx.Row) (*Test, error) {
	var t Test
	err := row.Scan(&t.ID, &t.Code, &t.Name, &t.SampleTypes, &t.Category, &t.Department,
		&t.Price, &t.Duration, &t.Status, &t.Parameters, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &t, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *repoPG) Create(ctx context.Context, t *Test) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO tests (id, code, name, sample_types, category, department, price, duration, status, parameters)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		t.ID, t.Code, t.Name, t.SampleTypes, t.Category, t.Department,
		t.Price, t.Duration, t.Status, t.Parameters)
	if isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Test, error) {
	return scanTest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+testCols+` FROM tests WHERE id = $1`, id))
}

func (r *repoPG) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Test, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+testCols+` FROM tests WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Test
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, t *Test) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE tests SET code=$2, name=$3, sample_types=$4, category=$5, department=$6,
			price=$7, duration=$8, status=$9, parameters=$10, updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.Code, t.Name, t.SampleTypes, t.Category, t.Department,
		t.Price, t.Duration, t.Status, t.Parameters)
	if isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM tests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, filter ListFilter) ([]*Test, error) {
	query := `
		SELECT t.id, t.code, t.name, t.sample_types, t.category, t.department,
			t.price, t.duration, t.status, t.parameters, t.created_at, t.updated_at,
			(SELECT COUNT(*) FROM sample_tests st WHERE st.test_id = t.id) AS sample_count
		FROM tests t WHERE 1=1`
	var args []interface{}
	idx := 1

	if filter.SampleType != "" {
		query += fmt.Sprintf(` AND t.sample_types ? $%d`, idx)
		args = append(args, filter.SampleType)
		idx++
	}
	if filter.Category != "" {
		query += fmt.Sprintf(` AND t.category = $%d`, idx)
		args = append(args, filter.Category)
		idx++
	}
	if filter.Department != "" {
		query += fmt.Sprintf(` AND t.department = $%d`, idx)
		args = append(args, filter.Department)
		idx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND t.status = $%d`, idx)
		args = append(args, filter.Status)
		idx++
	}
	if filter.InUse {
		query += ` AND EXISTS (SELECT 1 FROM sample_tests st WHERE st.test_id = t.id)`
	}
	query += ` ORDER BY t.code`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Test
	for rows.Next() {
		var t Test
		if err := rows.Scan(&t.ID, &t.Code, &t.Name, &t.SampleTypes, &t.Category, &t.Department,
			&t.Price, &t.Duration, &t.Status, &t.Parameters, &t.CreatedAt, &t.UpdatedAt,
			&t.SampleCount); err != nil {
			return nil, err
		}
		items = append(items, &t)
	}
	return items, rows.Err()
}
