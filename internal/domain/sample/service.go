package sample

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lims/lims/internal/domain/labtest"
)

var (
	// ErrUnknownPatient is returned when intake references a patient that
	// is not registered.
	ErrUnknownPatient = errors.New("patient does not exist")
	// ErrUnknownTest is returned when a supplied test id is not in the
	// catalog.
	ErrUnknownTest = errors.New("test does not exist in catalog")
	// ErrResultsWouldBeLost is returned when removing a test would discard
	// recorded results and force was not set.
	ErrResultsWouldBeLost = errors.New("removal would discard recorded results")
)

// PatientDirectory validates patient references at intake.
type PatientDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// TestCatalog resolves catalog test definitions.
type TestCatalog interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*labtest.Test, error)
}

// TxRunner runs fn inside a storage transaction. A nil runner executes fn
// directly, which the in-memory tests rely on.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	samples  Repository
	pivots   PivotRepository
	patients PatientDirectory
	catalog  TestCatalog
	inTx     TxRunner
}

func NewService(samples Repository, pivots PivotRepository, patients PatientDirectory, catalog TestCatalog, inTx TxRunner) *Service {
	if inTx == nil {
		inTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return &Service{samples: samples, pivots: pivots, patients: patients, catalog: catalog, inTx: inTx}
}

func (s *Service) validateMetadata(smp *Sample) error {
	if smp.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if !ValidSampleTypes[smp.SampleType] {
		return fmt.Errorf("invalid sample type: %s", smp.SampleType)
	}
	if smp.Priority == "" {
		smp.Priority = PriorityNormal
	}
	if !ValidPriorities[smp.Priority] {
		return fmt.Errorf("invalid priority: %s", smp.Priority)
	}
	if _, err := time.Parse("2006-01-02", smp.CollectionDate); err != nil {
		return fmt.Errorf("invalid collection date %q, want YYYY-MM-DD", smp.CollectionDate)
	}
	if _, err := time.Parse("15:04", smp.CollectionTime); err != nil {
		return fmt.Errorf("invalid collection time %q, want HH:MM", smp.CollectionTime)
	}
	return nil
}

// resolveTestIDs deduplicates the requested set and verifies every id
// exists in the catalog.
func (s *Service) resolveTestIDs(ctx context.Context, testIDs []uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool, len(testIDs))
	var distinct []uuid.UUID
	for _, id := range testIDs {
		if id == uuid.Nil {
			return nil, ErrUnknownTest
		}
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}
	if len(distinct) == 0 {
		return nil, nil
	}
	found, err := s.catalog.GetByIDs(ctx, distinct)
	if err != nil {
		return nil, err
	}
	if len(found) != len(distinct) {
		return nil, ErrUnknownTest
	}
	return distinct, nil
}

// Intake creates a sample and one Pending work item per supplied test id.
// An empty accession number is generated server-side.
func (s *Service) Intake(ctx context.Context, smp *Sample, testIDs []uuid.UUID) (*Sample, error) {
	if err := s.validateMetadata(smp); err != nil {
		return nil, err
	}
	exists, err := s.patients.Exists(ctx, smp.PatientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUnknownPatient
	}
	distinct, err := s.resolveTestIDs(ctx, testIDs)
	if err != nil {
		return nil, err
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		if smp.AccessionNumber == "" {
			seq, err := s.samples.NextAccessionSeq(ctx)
			if err != nil {
				return err
			}
			smp.AccessionNumber = fmt.Sprintf("ACC%06d", seq)
		}
		if err := s.samples.Create(ctx, smp); err != nil {
			return err
		}
		if len(distinct) > 0 {
			return s.pivots.Attach(ctx, smp.ID, distinct)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.samples.GetByID(ctx, smp.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Sample, error) {
	return s.samples.GetByID(ctx, id)
}

func (s *Service) GetByAccession(ctx context.Context, accession string) (*Sample, error) {
	return s.samples.GetByAccession(ctx, accession)
}

// UpdateMetadata changes sample fields only. Redefining which lab work
// exists for the sample is a separate, explicit operation.
func (s *Service) UpdateMetadata(ctx context.Context, smp *Sample) (*Sample, error) {
	if err := s.validateMetadata(smp); err != nil {
		return nil, err
	}
	exists, err := s.patients.Exists(ctx, smp.PatientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUnknownPatient
	}
	if err := s.samples.UpdateMetadata(ctx, smp); err != nil {
		return nil, err
	}
	return s.samples.GetByID(ctx, smp.ID)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.samples.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Sample, int, error) {
	return s.samples.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Sample, int, error) {
	return s.samples.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListTests(ctx context.Context, sampleID uuid.UUID) ([]*SampleTest, error) {
	if _, err := s.samples.GetByID(ctx, sampleID); err != nil {
		return nil, err
	}
	return s.pivots.ListBySample(ctx, sampleID)
}

// AttachTests adds work items for the given tests. Existing attachments are
// untouched; duplicates in the request fail the whole call.
func (s *Service) AttachTests(ctx context.Context, sampleID uuid.UUID, testIDs []uuid.UUID) ([]*SampleTest, error) {
	if _, err := s.samples.GetByID(ctx, sampleID); err != nil {
		return nil, err
	}
	distinct, err := s.resolveTestIDs(ctx, testIDs)
	if err != nil {
		return nil, err
	}
	if len(distinct) == 0 {
		return nil, fmt.Errorf("tests are required")
	}
	if err := s.pivots.Attach(ctx, sampleID, distinct); err != nil {
		return nil, err
	}
	return s.pivots.ListBySample(ctx, sampleID)
}

// DetachTest removes one work item. When the item has recorded results the
// removal is refused unless force is set.
func (s *Service) DetachTest(ctx context.Context, sampleID, testID uuid.UUID, force bool) error {
	st, err := s.pivots.Get(ctx, sampleID, testID)
	if err != nil {
		return err
	}
	if st.HasResults() && !force {
		return ErrResultsWouldBeLost
	}
	return s.pivots.Detach(ctx, sampleID, testID)
}

// SyncTests replaces the sample's test set. Tests in the new set keep their
// work items untouched; removed tests lose theirs. Removals that would
// discard recorded results are refused unless force is set.
func (s *Service) SyncTests(ctx context.Context, sampleID uuid.UUID, testIDs []uuid.UUID, force bool) ([]*SampleTest, error) {
	if _, err := s.samples.GetByID(ctx, sampleID); err != nil {
		return nil, err
	}
	distinct, err := s.resolveTestIDs(ctx, testIDs)
	if err != nil {
		return nil, err
	}
	current, err := s.pivots.ListBySample(ctx, sampleID)
	if err != nil {
		return nil, err
	}

	keep := make(map[uuid.UUID]bool, len(distinct))
	for _, id := range distinct {
		keep[id] = true
	}
	var removals []*SampleTest
	attached := make(map[uuid.UUID]bool, len(current))
	for _, st := range current {
		attached[st.TestID] = true
		if !keep[st.TestID] {
			removals = append(removals, st)
		}
	}
	if !force {
		for _, st := range removals {
			if st.HasResults() {
				return nil, ErrResultsWouldBeLost
			}
		}
	}
	var additions []uuid.UUID
	for _, id := range distinct {
		if !attached[id] {
			additions = append(additions, id)
		}
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		for _, st := range removals {
			if err := s.pivots.Detach(ctx, sampleID, st.TestID); err != nil {
				return err
			}
		}
		if len(additions) > 0 {
			return s.pivots.Attach(ctx, sampleID, additions)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.pivots.ListBySample(ctx, sampleID)
}

// UpdateTestStatus moves one work item through the state machine and
// optionally replaces its technician notes.
func (s *Service) UpdateTestStatus(ctx context.Context, sampleID, testID uuid.UUID, status string, notes *string) (*SampleTest, error) {
	st, err := s.pivots.Get(ctx, sampleID, testID)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(st.Status, status); err != nil {
		return nil, err
	}
	st.Status = status
	if notes != nil {
		st.Notes = notes
	}
	if err := s.pivots.Update(ctx, st); err != nil {
		return nil, err
	}
	return s.pivots.Get(ctx, sampleID, testID)
}
