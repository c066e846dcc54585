package sample

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lims/lims/internal/domain/labtest"
	"github.com/lims/lims/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// =========== Sample Repository ===========

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

const sampleCols = `id, accession_number, patient_id, sample_type,
	to_char(collection_date, 'YYYY-MM-DD'), to_char(collection_time, 'HH24:MI'),
	priority, location, notes, created_at, updated_at`

func scanSample(row pgx.Row) (*Sample, error) {
	var s Sample
	err := row.Scan(&s.ID, &s.AccessionNumber, &s.PatientID, &s.SampleType,
		&s.CollectionDate, &s.CollectionTime, &s.Priority, &s.Location, &s.Notes,
		&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &s, err
}

func (r *repoPG) Create(ctx context.Context, s *Sample) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO samples (id, accession_number, patient_id, sample_type,
			collection_date, collection_time, priority, location, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		s.ID, s.AccessionNumber, s.PatientID, s.SampleType,
		s.CollectionDate, s.CollectionTime, s.Priority, s.Location, s.Notes)
	if isUniqueViolation(err) {
		return ErrDuplicateAccession
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Sample, error) {
	s, err := scanSample(r.conn(ctx).QueryRow(ctx,
		`SELECT `+sampleCols+` FROM samples WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	s.Tests, err = listPivots(ctx, r.conn(ctx), s.ID)
	if err != nil {
		return nil, err
	}
	s.Status = DerivedStatus(s.Tests)
	return s, nil
}

func (r *repoPG) GetByAccession(ctx context.Context, accession string) (*Sample, error) {
	s, err := scanSample(r.conn(ctx).QueryRow(ctx,
		`SELECT `+sampleCols+` FROM samples WHERE accession_number = $1`, accession))
	if err != nil {
		return nil, err
	}
	s.Tests, err = listPivots(ctx, r.conn(ctx), s.ID)
	if err != nil {
		return nil, err
	}
	s.Status = DerivedStatus(s.Tests)
	return s, nil
}

// UpdateMetadata never touches the accession number or the test set.
func (r *repoPG) UpdateMetadata(ctx context.Context, s *Sample) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE samples SET patient_id=$2, sample_type=$3, collection_date=$4,
			collection_time=$5, priority=$6, location=$7, notes=$8, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.PatientID, s.SampleType, s.CollectionDate,
		s.CollectionTime, s.Priority, s.Location, s.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM samples WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*Sample, int, error) {
	c := r.conn(ctx)
	var total int
	if err := c.QueryRow(ctx, `SELECT COUNT(*) FROM samples`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	n := len(args)
	args = append(args, limit, offset)
	rows, err := c.Query(ctx, fmt.Sprintf(`SELECT `+sampleCols+` FROM samples`+where+
		` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, n+1, n+2), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Sample
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, s := range items {
		s.Tests, err = listPivots(ctx, c, s.ID)
		if err != nil {
			return nil, 0, err
		}
		s.Status = DerivedStatus(s.Tests)
	}
	return items, total, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Sample, int, error) {
	return r.list(ctx, ``, nil, limit, offset)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Sample, int, error) {
	return r.list(ctx, ` WHERE patient_id = $1`, []interface{}{patientID}, limit, offset)
}

func (r *repoPG) NextAccessionSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := r.conn(ctx).QueryRow(ctx, `SELECT nextval('accession_seq')`).Scan(&seq)
	return seq, err
}

// =========== Pivot Repository ===========

type pivotRepoPG struct{ pool *pgxpool.Pool }

func NewPivotRepoPG(pool *pgxpool.Pool) PivotRepository {
	return &pivotRepoPG{pool: pool}
}

func (r *pivotRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const pivotCols = `st.id, st.sample_id, st.test_id, st.status, st.results, st.extra_results,
	st.notes, st.created_at, st.updated_at,
	t.id, t.code, t.name, t.sample_types, t.category, t.department,
	t.price, t.duration, t.status, t.parameters, t.created_at, t.updated_at`

const pivotFrom = ` FROM sample_tests st JOIN tests t ON t.id = st.test_id`

func scanPivot(row pgx.Row) (*SampleTest, error) {
	var st SampleTest
	var t labtest.Test
	err := row.Scan(&st.ID, &st.SampleID, &st.TestID, &st.Status, &st.Results, &st.ExtraResults,
		&st.Notes, &st.CreatedAt, &st.UpdatedAt,
		&t.ID, &t.Code, &t.Name, &t.SampleTypes, &t.Category, &t.Department,
		&t.Price, &t.Duration, &t.Status, &t.Parameters, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTestNotAttached
	}
	if err != nil {
		return nil, err
	}
	st.Test = &t
	return &st, nil
}

func listPivots(ctx context.Context, c queryable, sampleID uuid.UUID) ([]*SampleTest, error) {
	rows, err := c.Query(ctx, `SELECT `+pivotCols+pivotFrom+
		` WHERE st.sample_id = $1 ORDER BY st.created_at, st.id`, sampleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*SampleTest
	for rows.Next() {
		st, err := scanPivot(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, st)
	}
	return items, rows.Err()
}

func (r *pivotRepoPG) ListBySample(ctx context.Context, sampleID uuid.UUID) ([]*SampleTest, error) {
	return listPivots(ctx, r.conn(ctx), sampleID)
}

func (r *pivotRepoPG) Get(ctx context.Context, sampleID, testID uuid.UUID) (*SampleTest, error) {
	return scanPivot(r.conn(ctx).QueryRow(ctx, `SELECT `+pivotCols+pivotFrom+
		` WHERE st.sample_id = $1 AND st.test_id = $2`, sampleID, testID))
}

func (r *pivotRepoPG) Attach(ctx context.Context, sampleID uuid.UUID, testIDs []uuid.UUID) error {
	c := r.conn(ctx)
	for _, testID := range testIDs {
		_, err := c.Exec(ctx, `
			INSERT INTO sample_tests (id, sample_id, test_id, status)
			VALUES ($1, $2, $3, $4)`,
			uuid.New(), sampleID, testID, StatusPending)
		if isUniqueViolation(err) {
			return ErrAlreadyAttached
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *pivotRepoPG) Detach(ctx context.Context, sampleID, testID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM sample_tests WHERE sample_id = $1 AND test_id = $2`, sampleID, testID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTestNotAttached
	}
	return nil
}

func (r *pivotRepoPG) Update(ctx context.Context, st *SampleTest) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE sample_tests SET status=$3, results=$4, extra_results=$5, notes=$6, updated_at=NOW()
		WHERE sample_id = $1 AND test_id = $2`,
		st.SampleID, st.TestID, st.Status, st.Results, st.ExtraResults, st.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTestNotAttached
	}
	return nil
}

func (r *pivotRepoPG) ListWithResults(ctx context.Context, limit, offset int) ([]*SampleTest, int, error) {
	c := r.conn(ctx)
	const hasResults = ` WHERE (st.results IS NOT NULL AND st.results <> '{}'::jsonb)
		OR (st.extra_results IS NOT NULL AND st.extra_results <> '{}'::jsonb)`
	var total int
	if err := c.QueryRow(ctx, `SELECT COUNT(*) FROM sample_tests st`+hasResults).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := c.Query(ctx, `SELECT `+pivotCols+pivotFrom+hasResults+
		` ORDER BY st.updated_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*SampleTest
	for rows.Next() {
		st, err := scanPivot(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, st)
	}
	return items, total, rows.Err()
}
