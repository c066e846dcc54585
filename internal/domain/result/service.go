// Package result records technician-entered values against the per-test
// work items. It is a thin surface over the sample_tests rows: there is no
// separate results table, the pivot row is the single store.
package result

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lims/lims/internal/domain/labtest"
	"github.com/lims/lims/internal/domain/sample"
)

// ErrNoResults is returned when a listing matches nothing. The REST surface
// reports it as not-found rather than an empty page.
var ErrNoResults = errors.New("no results recorded")

// SampleSource resolves samples for by-sample operations.
type SampleSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*sample.Sample, error)
}

// TestCatalog resolves declared parameter schemas for key splitting.
type TestCatalog interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*labtest.Test, error)
}

type Service struct {
	pivots  sample.PivotRepository
	samples SampleSource
	catalog TestCatalog
	inTx    sample.TxRunner
}

func NewService(pivots sample.PivotRepository, samples SampleSource, catalog TestCatalog, inTx sample.TxRunner) *Service {
	if inTx == nil {
		inTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return &Service{pivots: pivots, samples: samples, catalog: catalog, inTx: inTx}
}

// split partitions entered values by the test's declared parameters: known
// keys become the result payload, unknown keys are preserved separately
// instead of being dropped or rejected.
func split(t *labtest.Test, values map[string]string) (results, extra map[string]string) {
	results = make(map[string]string)
	extra = make(map[string]string)
	for k, v := range values {
		if t != nil && t.HasParameter(k) {
			results[k] = v
		} else {
			extra[k] = v
		}
	}
	return results, extra
}

func (s *Service) testFor(ctx context.Context, testID uuid.UUID) (*labtest.Test, error) {
	found, err := s.catalog.GetByIDs(ctx, []uuid.UUID{testID})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

// Save overwrites the recorded values for one (sample, test) work item.
// The full payload replaces the previous one, so saving the same payload
// twice is a no-op. Status and notes are untouched unless notes is given.
func (s *Service) Save(ctx context.Context, sampleID, testID uuid.UUID, values map[string]string, notes *string) (*sample.SampleTest, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("results are required")
	}
	st, err := s.pivots.Get(ctx, sampleID, testID)
	if err != nil {
		return nil, err
	}
	t, err := s.testFor(ctx, testID)
	if err != nil {
		return nil, err
	}
	st.Results, st.ExtraResults = split(t, values)
	if notes != nil {
		st.Notes = notes
	}
	if err := s.pivots.Update(ctx, st); err != nil {
		return nil, err
	}
	return s.pivots.Get(ctx, sampleID, testID)
}

// SaveForSample records values for several of one sample's tests in one
// call, keyed by test id. The saves run inside one transaction: a failure
// on any test leaves no test's values written.
func (s *Service) SaveForSample(ctx context.Context, sampleID uuid.UUID, entries map[uuid.UUID]map[string]string) ([]*sample.SampleTest, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("results are required")
	}
	if _, err := s.samples.GetByID(ctx, sampleID); err != nil {
		return nil, err
	}
	err := s.inTx(ctx, func(ctx context.Context) error {
		for testID, values := range entries {
			if _, err := s.Save(ctx, sampleID, testID, values, nil); err != nil {
				return fmt.Errorf("test %s: %w", testID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ListForSample(ctx, sampleID)
}

// Get returns one work item with its recorded values.
func (s *Service) Get(ctx context.Context, sampleID, testID uuid.UUID) (*sample.SampleTest, error) {
	return s.pivots.Get(ctx, sampleID, testID)
}

// List returns every work item that has recorded values, paginated.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*sample.SampleTest, int, error) {
	items, total, err := s.pivots.ListWithResults(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return nil, 0, ErrNoResults
	}
	return items, total, nil
}

// ListForSample returns the sample's work items that have recorded values.
func (s *Service) ListForSample(ctx context.Context, sampleID uuid.UUID) ([]*sample.SampleTest, error) {
	if _, err := s.samples.GetByID(ctx, sampleID); err != nil {
		return nil, err
	}
	all, err := s.pivots.ListBySample(ctx, sampleID)
	if err != nil {
		return nil, err
	}
	var out []*sample.SampleTest
	for _, st := range all {
		if st.HasResults() {
			out = append(out, st)
		}
	}
	return out, nil
}
