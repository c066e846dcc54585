package sample

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no sample matches the given id or
	// accession number.
	ErrNotFound = errors.New("sample not found")
	// ErrDuplicateAccession is returned when a create would violate
	// accession uniqueness.
	ErrDuplicateAccession = errors.New("accession number already exists")
	// ErrAlreadyAttached is returned when a test is attached twice.
	ErrAlreadyAttached = errors.New("test already attached to sample")
	// ErrTestNotAttached is returned when the (sample, test) pivot row
	// does not exist.
	ErrTestNotAttached = errors.New("test not attached to sample")
)

type Repository interface {
	Create(ctx context.Context, s *Sample) error
	GetByID(ctx context.Context, id uuid.UUID) (*Sample, error)
	GetByAccession(ctx context.Context, accession string) (*Sample, error)
	UpdateMetadata(ctx context.Context, s *Sample) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Sample, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Sample, int, error)
	NextAccessionSeq(ctx context.Context) (int64, error)
}

// PivotRepository manages the sample_tests work items. The result package
// shares it for the upsert surface.
type PivotRepository interface {
	ListBySample(ctx context.Context, sampleID uuid.UUID) ([]*SampleTest, error)
	Get(ctx context.Context, sampleID, testID uuid.UUID) (*SampleTest, error)
	Attach(ctx context.Context, sampleID uuid.UUID, testIDs []uuid.UUID) error
	Detach(ctx context.Context, sampleID, testID uuid.UUID) error
	Update(ctx context.Context, st *SampleTest) error
	ListWithResults(ctx context.Context, limit, offset int) ([]*SampleTest, int, error)
}
