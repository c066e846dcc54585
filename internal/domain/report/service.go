package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lims/lims/internal/domain/labtest"
	"github.com/lims/lims/internal/domain/patient"
	"github.com/lims/lims/internal/domain/sample"
	"github.com/lims/lims/internal/domain/settings"
)

// SampleSource resolves the accession to its sample with work items
// loaded.
type SampleSource interface {
	GetByAccession(ctx context.Context, accession string) (*sample.Sample, error)
}

// PatientSource resolves the sample's patient.
type PatientSource interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// BrandingSource supplies the lab identity. Its Get never fails with
// not-found, it falls back to the default branding object.
type BrandingSource interface {
	Get(ctx context.Context) (*settings.LabSettings, error)
}

// Metrics counts generated reports per output format.
type Metrics interface {
	ReportGenerated(format string)
}

type Service struct {
	samples  SampleSource
	patients PatientSource
	branding BrandingSource
	metrics  Metrics

	now func() time.Time
}

func NewService(samples SampleSource, patients PatientSource, branding BrandingSource, metrics Metrics) *Service {
	return &Service{
		samples:  samples,
		patients: patients,
		branding: branding,
		metrics:  metrics,
		now:      time.Now,
	}
}

// buildBlock turns one work item into its table section. Declared
// parameters come first in declaration order with values looked up by
// name, blank when absent. Values recorded under undeclared keys follow,
// sorted by key.
func buildBlock(st *sample.SampleTest) TestBlock {
	blk := TestBlock{Status: st.Status, Notes: st.Notes}
	var t *labtest.Test
	if st.Test != nil {
		t = st.Test
		blk.Code = t.Code
		blk.Name = t.Name
	}
	if t != nil {
		for _, p := range t.Parameters {
			blk.Rows = append(blk.Rows, Row{
				Parameter:   p.Name,
				Value:       st.Results[p.Name],
				Unit:        p.Units,
				NormalRange: p.NormalRange,
			})
		}
	}
	extraKeys := make([]string, 0, len(st.ExtraResults))
	for k := range st.ExtraResults {
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	for _, k := range extraKeys {
		blk.Rows = append(blk.Rows, Row{Parameter: k, Value: st.ExtraResults[k]})
	}
	return blk
}

// Compose builds the full document for one accession number. The sample
// and branding reads are independent and run concurrently; the patient
// read chains after the sample resolves.
func (s *Service) Compose(ctx context.Context, accession string) (*Document, error) {
	var (
		smp *sample.Sample
		pat *patient.Patient
		lab *settings.LabSettings
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		smp, err = s.samples.GetByAccession(gctx, accession)
		if err != nil {
			return err
		}
		pat, err = s.patients.Get(gctx, smp.PatientID)
		return err
	})
	g.Go(func() error {
		var err error
		lab, err = s.branding.Get(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if lab == nil {
		lab = settings.DefaultSettings()
	}

	branding := Branding{
		Name:    lab.Name,
		Address: lab.Address,
		Phone:   lab.Phone,
		Email:   lab.Email,
		Logo:    lab.Logo,
	}
	blocks := make([]TestBlock, 0, len(smp.Tests))
	for _, st := range smp.Tests {
		blocks = append(blocks, buildBlock(st))
	}

	now := s.now()
	doc := &Document{
		GeneratedAt: now,
		Lab:         branding,
		Patient: PatientInfo{
			Name:   pat.Name,
			Age:    pat.Age,
			Gender: pat.Gender,
			Phone:  pat.Phone,
			Doctor: pat.Doctor,
		},
		Sample: SampleInfo{
			AccessionNumber: smp.AccessionNumber,
			SampleType:      smp.SampleType,
			CollectionDate:  smp.CollectionDate,
			CollectionTime:  smp.CollectionTime,
			Priority:        smp.Priority,
			Status:          smp.Status,
		},
		QRCode: accessionQR(smp.AccessionNumber),
		Pages:  Paginate(blocks, branding, now.Year()),
	}
	return doc, nil
}

func (s *Service) countGenerated(format string) {
	if s.metrics != nil {
		s.metrics.ReportGenerated(format)
	}
}
