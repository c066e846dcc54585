package sample

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/lims/lims/internal/domain/labtest"
)

type mockSampleRepo struct {
	samples map[uuid.UUID]*Sample
	pivots  *mockPivotRepo
	seq     int64
}

func newMockSampleRepo(pivots *mockPivotRepo) *mockSampleRepo {
	return &mockSampleRepo{samples: make(map[uuid.UUID]*Sample), pivots: pivots}
}

func (m *mockSampleRepo) Create(_ context.Context, s *Sample) error {
	for _, existing := range m.samples {
		if existing.AccessionNumber == s.AccessionNumber {
			return ErrDuplicateAccession
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	m.samples[s.ID] = &cp
	return nil
}

func (m *mockSampleRepo) GetByID(_ context.Context, id uuid.UUID) (*Sample, error) {
	s, ok := m.samples[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	cp.Tests = m.pivots.bySample(id)
	cp.Status = DerivedStatus(cp.Tests)
	return &cp, nil
}

func (m *mockSampleRepo) GetByAccession(_ context.Context, accession string) (*Sample, error) {
	for id, s := range m.samples {
		if s.AccessionNumber == accession {
			return m.GetByID(context.Background(), id)
		}
	}
	return nil, ErrNotFound
}

func (m *mockSampleRepo) UpdateMetadata(_ context.Context, s *Sample) error {
	if _, ok := m.samples[s.ID]; !ok {
		return ErrNotFound
	}
	cp := *s
	m.samples[s.ID] = &cp
	return nil
}

func (m *mockSampleRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.samples[id]; !ok {
		return ErrNotFound
	}
	delete(m.samples, id)
	return nil
}

func (m *mockSampleRepo) List(_ context.Context, _, _ int) ([]*Sample, int, error) {
	var out []*Sample
	for id := range m.samples {
		s, _ := m.GetByID(context.Background(), id)
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *mockSampleRepo) ListByPatient(_ context.Context, patientID uuid.UUID, _, _ int) ([]*Sample, int, error) {
	var out []*Sample
	for id, s := range m.samples {
		if s.PatientID == patientID {
			loaded, _ := m.GetByID(context.Background(), id)
			out = append(out, loaded)
		}
	}
	return out, len(out), nil
}

func (m *mockSampleRepo) NextAccessionSeq(_ context.Context) (int64, error) {
	m.seq++
	return m.seq, nil
}

type pivotKey struct {
	sampleID uuid.UUID
	testID   uuid.UUID
}

type mockPivotRepo struct {
	items map[pivotKey]*SampleTest
}

func newMockPivotRepo() *mockPivotRepo {
	return &mockPivotRepo{items: make(map[pivotKey]*SampleTest)}
}

func (m *mockPivotRepo) bySample(sampleID uuid.UUID) []*SampleTest {
	var out []*SampleTest
	for k, st := range m.items {
		if k.sampleID == sampleID {
			cp := *st
			out = append(out, &cp)
		}
	}
	return out
}

func (m *mockPivotRepo) ListBySample(_ context.Context, sampleID uuid.UUID) ([]*SampleTest, error) {
	return m.bySample(sampleID), nil
}

func (m *mockPivotRepo) Get(_ context.Context, sampleID, testID uuid.UUID) (*SampleTest, error) {
	st, ok := m.items[pivotKey{sampleID, testID}]
	if !ok {
		return nil, ErrTestNotAttached
	}
	cp := *st
	return &cp, nil
}

func (m *mockPivotRepo) Attach(_ context.Context, sampleID uuid.UUID, testIDs []uuid.UUID) error {
	for _, testID := range testIDs {
		k := pivotKey{sampleID, testID}
		if _, ok := m.items[k]; ok {
			return ErrAlreadyAttached
		}
		m.items[k] = &SampleTest{
			ID:       uuid.New(),
			SampleID: sampleID,
			TestID:   testID,
			Status:   StatusPending,
		}
	}
	return nil
}

func (m *mockPivotRepo) Detach(_ context.Context, sampleID, testID uuid.UUID) error {
	k := pivotKey{sampleID, testID}
	if _, ok := m.items[k]; !ok {
		return ErrTestNotAttached
	}
	delete(m.items, k)
	return nil
}

func (m *mockPivotRepo) Update(_ context.Context, st *SampleTest) error {
	k := pivotKey{st.SampleID, st.TestID}
	if _, ok := m.items[k]; !ok {
		return ErrTestNotAttached
	}
	cp := *st
	m.items[k] = &cp
	return nil
}

func (m *mockPivotRepo) ListWithResults(_ context.Context, _, _ int) ([]*SampleTest, int, error) {
	var out []*SampleTest
	for _, st := range m.items {
		if st.HasResults() {
			cp := *st
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

type mockPatients struct {
	known map[uuid.UUID]bool
}

func (m *mockPatients) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.known[id], nil
}

type mockCatalog struct {
	tests map[uuid.UUID]*labtest.Test
}

func (m *mockCatalog) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*labtest.Test, error) {
	var out []*labtest.Test
	for _, id := range ids {
		if t, ok := m.tests[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

type fixture struct {
	svc       *Service
	samples   *mockSampleRepo
	pivots    *mockPivotRepo
	patientID uuid.UUID
	cbcID     uuid.UUID
	lipidID   uuid.UUID
}

func newFixture() *fixture {
	pivots := newMockPivotRepo()
	samples := newMockSampleRepo(pivots)
	patientID := uuid.New()
	cbcID := uuid.New()
	lipidID := uuid.New()
	patients := &mockPatients{known: map[uuid.UUID]bool{patientID: true}}
	catalog := &mockCatalog{tests: map[uuid.UUID]*labtest.Test{
		cbcID:   {ID: cbcID, Code: "CBC", Name: "Complete Blood Count"},
		lipidID: {ID: lipidID, Code: "LIP", Name: "Lipid Profile"},
	}}
	return &fixture{
		svc:       NewService(samples, pivots, patients, catalog, nil),
		samples:   samples,
		pivots:    pivots,
		patientID: patientID,
		cbcID:     cbcID,
		lipidID:   lipidID,
	}
}

func (f *fixture) validSample() *Sample {
	return &Sample{
		PatientID:      f.patientID,
		SampleType:     TypeBlood,
		CollectionDate: "2026-03-14",
		CollectionTime: "09:30",
		Priority:       PriorityNormal,
	}
}

func TestIntake_CreatesPendingWorkItems(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Intake(context.Background(), f.validSample(), []uuid.UUID{f.cbcID, f.lipidID})
	if err != nil {
		t.Fatalf("Intake() error = %v", err)
	}
	if len(created.Tests) != 2 {
		t.Fatalf("expected 2 work items, got %d", len(created.Tests))
	}
	for _, st := range created.Tests {
		if st.Status != StatusPending {
			t.Errorf("work item status = %q, want %q", st.Status, StatusPending)
		}
	}
	if created.Status != SampleProcessing {
		t.Errorf("sample status = %q, want %q", created.Status, SampleProcessing)
	}
}

func TestIntake_GeneratesAccessionNumber(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Intake(context.Background(), f.validSample(), nil)
	if err != nil {
		t.Fatalf("Intake() error = %v", err)
	}
	if created.AccessionNumber != "ACC000001" {
		t.Errorf("accession = %q, want ACC000001", created.AccessionNumber)
	}
	second, err := f.svc.Intake(context.Background(), f.validSample(), nil)
	if err != nil {
		t.Fatalf("Intake() error = %v", err)
	}
	if second.AccessionNumber != "ACC000002" {
		t.Errorf("accession = %q, want ACC000002", second.AccessionNumber)
	}
}

func TestIntake_KeepsProvidedAccessionNumber(t *testing.T) {
	f := newFixture()
	smp := f.validSample()
	smp.AccessionNumber = "ACC990001"
	created, err := f.svc.Intake(context.Background(), smp, nil)
	if err != nil {
		t.Fatalf("Intake() error = %v", err)
	}
	if created.AccessionNumber != "ACC990001" {
		t.Errorf("accession = %q, want ACC990001", created.AccessionNumber)
	}
}

func TestIntake_DeduplicatesTestIDs(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Intake(context.Background(), f.validSample(), []uuid.UUID{f.cbcID, f.cbcID})
	if err != nil {
		t.Fatalf("Intake() error = %v", err)
	}
	if len(created.Tests) != 1 {
		t.Errorf("expected 1 work item after dedup, got %d", len(created.Tests))
	}
}

func TestIntake_UnknownPatient(t *testing.T) {
	f := newFixture()
	smp := f.validSample()
	smp.PatientID = uuid.New()
	if _, err := f.svc.Intake(context.Background(), smp, nil); !errors.Is(err, ErrUnknownPatient) {
		t.Errorf("Intake() error = %v, want ErrUnknownPatient", err)
	}
}

func TestIntake_UnknownTest(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Intake(context.Background(), f.validSample(), []uuid.UUID{uuid.New()}); !errors.Is(err, ErrUnknownTest) {
		t.Errorf("Intake() error = %v, want ErrUnknownTest", err)
	}
}

func TestIntake_ValidatesMetadata(t *testing.T) {
	f := newFixture()
	cases := []struct {
		name   string
		mutate func(*Sample)
	}{
		{"missing patient", func(s *Sample) { s.PatientID = uuid.Nil }},
		{"invalid sample type", func(s *Sample) { s.SampleType = "Plasma" }},
		{"invalid priority", func(s *Sample) { s.Priority = "Rush" }},
		{"bad date", func(s *Sample) { s.CollectionDate = "14-03-2026" }},
		{"bad time", func(s *Sample) { s.CollectionTime = "9:30am" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			smp := f.validSample()
			tc.mutate(smp)
			if _, err := f.svc.Intake(context.Background(), smp, nil); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestIntake_DefaultsPriority(t *testing.T) {
	f := newFixture()
	smp := f.validSample()
	smp.Priority = ""
	created, err := f.svc.Intake(context.Background(), smp, nil)
	if err != nil {
		t.Fatalf("Intake() error = %v", err)
	}
	if created.Priority != PriorityNormal {
		t.Errorf("priority = %q, want %q", created.Priority, PriorityNormal)
	}
}

func TestUpdateMetadata_DoesNotTouchTests(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Intake(context.Background(), f.validSample(), []uuid.UUID{f.cbcID})
	if err != nil {
		t.Fatalf("Intake() error = %v", err)
	}
	created.SampleType = TypeUrine
	updated, err := f.svc.UpdateMetadata(context.Background(), created)
	if err != nil {
		t.Fatalf("UpdateMetadata() error = %v", err)
	}
	if updated.SampleType != TypeUrine {
		t.Errorf("sample type = %q, want %q", updated.SampleType, TypeUrine)
	}
	if len(updated.Tests) != 1 {
		t.Errorf("expected 1 work item to survive, got %d", len(updated.Tests))
	}
}

func TestAttachTests_Additive(t *testing.T) {
	f := newFixture()
	created, _ := f.svc.Intake(context.Background(), f.validSample(), []uuid.UUID{f.cbcID})
	items, err := f.svc.AttachTests(context.Background(), created.ID, []uuid.UUID{f.lipidID})
	if err != nil {
		t.Fatalf("AttachTests() error = %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 work items, got %d", len(items))
	}
}

func TestAttachTests_RejectsDuplicate(t *testing.T) {
	f := newFixture()
	created, _ := f.svc.Intake(context.Background(), f.validSample(), []uuid.UUID{f.cbcID})
	if _, err := f.svc.AttachTests(context.Background(), created.ID, []uuid.UUID{f.cbcID}); !errors.Is(err, ErrAlreadyAttached) {
		t.Errorf("AttachTests() error = %v, want ErrAlreadyAttached", err)
	}
}

func TestAttachTests_RequiresTests(t *testing.T) {
	f := newFixture()
	created, _ := f.svc.Intake(context.Background(), f.validSample(), nil)
	if _, err := f.svc.AttachTests(context.Background(), created.ID, nil); err == nil {
		t.Error("expected error for empty test set, got nil")
	}
}

func TestDetachTest_RefusesWhenResultsRecorded(t *testing.T) {
	f := newFixture()
	created, _ := f.svc.Intake(context.Background(), f.validSample(), []uuid.UUID{f.cbcID})
	st, _ := f.pivots.Get(context.Background(), created.ID, f.cbcID)
	st.Results = map[string]string{"Hemoglobin": "14.1"}
	if err := f.pivots.Update(context.Background(), st); err != nil {
		t.Fatalf("seed results: %v", err)
	}

	err := f.svc.DetachTest(context.Background(), created.ID, f.cbcID, false)
	if !errors.Is(err, ErrResultsWouldBeLost) {
		t.Fatalf("DetachTest() error = %v, want ErrResultsWouldBeLost", err)
	}
	if err := f.svc.DetachTest(context.Background(), created.ID, f.cbcID, true); err != nil {
		t.Fatalf("forced DetachTest() error = %v", err)
	}
}

func TestSyncTests_ReplacesSet(t *testing.T) {
	f := newFixture()
	created, _ := f.svc.Intake(context.Background(), f.validSample(), []uuid.UUID{f.cbcID})
	items, err := f.svc.SyncTests(context.Background(), created.ID, []uuid.UUID{f.lipidID}, false)
	if err != nil {
		t.Fatalf("SyncTests() error = %v", err)
	}
	if len(items) != 1 || items[0].TestID != f.lipidID {
		t.Fatalf("expected only the lipid work item, got %d items", len(items))
	}
}

func TestSyncTests_KeepsSurvivingWorkItems(t *testing.T) {
	f := newFixture()
	created, _ := f.svc.Intake(context.Background(), f.validSample(), []uuid.UUID{f.cbcID})
	st, _ := f.pivots.Get(context.Background(), created.ID, f.cbcID)
	st.Status = StatusInProgress
	if err := f.pivots.Update(context.Background(), st); err != nil {
		t.Fatalf("seed status: %v", err)
	}

	items, err := f.svc.SyncTests(context.Background(), created.ID, []uuid.UUID{f.cbcID, f.lipidID}, false)
	if err != nil {
		t.Fatalf("SyncTests() error = %v", err)
	}
	byTest := make(map[uuid.UUID]string, len(items))
	for _, it := range items {
		byTest[it.TestID] = it.Status
	}
	if byTest[f.cbcID] != StatusInProgress {
		t.Errorf("surviving work item status = %q, want %q", byTest[f.cbcID], StatusInProgress)
	}
	if byTest[f.lipidID] != StatusPending {
		t.Errorf("new work item status = %q, want %q", byTest[f.lipidID], StatusPending)
	}
}

func TestSyncTests_RefusesLossyRemoval(t *testing.T) {
	f := newFixture()
	created, _ := f.svc.Intake(context.Background(), f.validSample(), []uuid.UUID{f.cbcID})
	st, _ := f.pivots.Get(context.Background(), created.ID, f.cbcID)
	st.Results = map[string]string{"Hemoglobin": "14.1"}
	if err := f.pivots.Update(context.Background(), st); err != nil {
		t.Fatalf("seed results: %v", err)
	}

	if _, err := f.svc.SyncTests(context.Background(), created.ID, []uuid.UUID{f.lipidID}, false); !errors.Is(err, ErrResultsWouldBeLost) {
		t.Fatalf("SyncTests() error = %v, want ErrResultsWouldBeLost", err)
	}
	items, err := f.svc.SyncTests(context.Background(), created.ID, []uuid.UUID{f.lipidID}, true)
	if err != nil {
		t.Fatalf("forced SyncTests() error = %v", err)
	}
	if len(items) != 1 || items[0].TestID != f.lipidID {
		t.Fatalf("expected only the lipid work item after force, got %d items", len(items))
	}
}

func TestUpdateTestStatus_Transitions(t *testing.T) {
	f := newFixture()
	created, _ := f.svc.Intake(context.Background(), f.validSample(), []uuid.UUID{f.cbcID})

	st, err := f.svc.UpdateTestStatus(context.Background(), created.ID, f.cbcID, StatusInProgress, nil)
	if err != nil {
		t.Fatalf("UpdateTestStatus() error = %v", err)
	}
	if st.Status != StatusInProgress {
		t.Errorf("status = %q, want %q", st.Status, StatusInProgress)
	}

	notes := "hemolyzed, redraw advised"
	st, err = f.svc.UpdateTestStatus(context.Background(), created.ID, f.cbcID, StatusCompleted, &notes)
	if err != nil {
		t.Fatalf("UpdateTestStatus() error = %v", err)
	}
	if st.Notes == nil || *st.Notes != notes {
		t.Errorf("notes not recorded")
	}

	if _, err := f.svc.UpdateTestStatus(context.Background(), created.ID, f.cbcID, StatusPending, nil); err == nil {
		t.Error("expected transition error from Completed, got nil")
	}
}

func TestUpdateTestStatus_NotAttached(t *testing.T) {
	f := newFixture()
	created, _ := f.svc.Intake(context.Background(), f.validSample(), nil)
	if _, err := f.svc.UpdateTestStatus(context.Background(), created.ID, f.lipidID, StatusInProgress, nil); !errors.Is(err, ErrTestNotAttached) {
		t.Errorf("UpdateTestStatus() error = %v, want ErrTestNotAttached", err)
	}
}

func TestDerivedStatus(t *testing.T) {
	cases := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"no work items", nil, SampleProcessing},
		{"pending", []string{StatusPending}, SampleProcessing},
		{"mixed", []string{StatusCompleted, StatusInProgress}, SampleProcessing},
		{"all completed", []string{StatusCompleted, StatusCompleted}, SampleCompleted},
		{"completed and cancelled", []string{StatusCompleted, StatusCancelled}, SampleCompleted},
		{"all cancelled", []string{StatusCancelled, StatusCancelled}, SampleProcessing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var tests []*SampleTest
			for _, s := range tc.statuses {
				tests = append(tests, &SampleTest{Status: s})
			}
			if got := DerivedStatus(tests); got != tc.want {
				t.Errorf("DerivedStatus() = %q, want %q", got, tc.want)
			}
		})
	}
}
