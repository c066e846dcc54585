// Package sample implements sample intake and the per-test work items
// attached to each sample. The pivot row for one (sample, test) pair is the
// unit of lab work: it carries its own status, result payload, and notes.
package sample

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lims/lims/internal/domain/labtest"
)

// Specimen types.
const (
	TypeBlood  = "Blood"
	TypeUrine  = "Urine"
	TypeStool  = "Stool"
	TypeSputum = "Sputum"
	TypeTissue = "Tissue"
)

// ValidSampleTypes is the fixed specimen enumeration.
var ValidSampleTypes = map[string]bool{
	TypeBlood: true, TypeUrine: true, TypeStool: true, TypeSputum: true, TypeTissue: true,
}

// Priorities.
const (
	PriorityNormal = "Normal"
	PriorityUrgent = "Urgent"
	PriorityStat   = "Stat"
)

var ValidPriorities = map[string]bool{
	PriorityNormal: true, PriorityUrgent: true, PriorityStat: true,
}

// Pivot work-item statuses.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
)

// Derived sample-level statuses.
const (
	SampleProcessing = "Processing"
	SampleCompleted  = "Completed"
)

// statusTransitions defines the work-item state machine. Completed and
// Cancelled are terminal.
var statusTransitions = map[string][]string{
	StatusPending:    {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// ValidateTransition checks a work-item status change against the state
// machine. Setting the current status again is allowed.
func ValidateTransition(from, to string) error {
	allowed, ok := statusTransitions[from]
	if !ok {
		return fmt.Errorf("unknown status: %s", from)
	}
	if from == to {
		return nil
	}
	for _, s := range allowed {
		if s == to {
			return nil
		}
	}
	return fmt.Errorf("invalid transition from %s to %s", from, to)
}

// Sample maps to the samples table. Tests holds the attached work items,
// loaded on reads. Status is derived from the work items, never stored.
type Sample struct {
	ID              uuid.UUID `db:"id" json:"id"`
	AccessionNumber string    `db:"accession_number" json:"accession_number"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	SampleType      string    `db:"sample_type" json:"sample_type"`
	CollectionDate  string    `db:"collection_date" json:"collection_date"`
	CollectionTime  string    `db:"collection_time" json:"collection_time"`
	Priority        string    `db:"priority" json:"priority"`
	Location        *string   `db:"location" json:"location,omitempty"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`

	Status string        `db:"-" json:"status"`
	Tests  []*SampleTest `db:"-" json:"tests,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SampleTest maps to the sample_tests pivot table, one row per
// (sample, test) pair. Results holds values keyed by declared parameter
// name; ExtraResults preserves keys outside the test's declared schema.
type SampleTest struct {
	ID           uuid.UUID         `db:"id" json:"id"`
	SampleID     uuid.UUID         `db:"sample_id" json:"sample_id"`
	TestID       uuid.UUID         `db:"test_id" json:"test_id"`
	Status       string            `db:"status" json:"status"`
	Results      map[string]string `db:"results" json:"results,omitempty"`
	ExtraResults map[string]string `db:"extra_results" json:"extra_results,omitempty"`
	Notes        *string           `db:"notes" json:"notes,omitempty"`

	// Test is the catalog definition, loaded on reads.
	Test *labtest.Test `db:"-" json:"test,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasResults reports whether any result values have been recorded.
func (st *SampleTest) HasResults() bool {
	return len(st.Results) > 0 || len(st.ExtraResults) > 0
}

// Terminal reports whether the work item can no longer change status.
func (st *SampleTest) Terminal() bool {
	return st.Status == StatusCompleted || st.Status == StatusCancelled
}

// DerivedStatus computes the sample-level aggregate: Completed when every
// attached work item is terminal and at least one completed, Processing
// otherwise. A sample with no work items is still in Processing.
func DerivedStatus(tests []*SampleTest) string {
	if len(tests) == 0 {
		return SampleProcessing
	}
	completed := 0
	for _, st := range tests {
		if !st.Terminal() {
			return SampleProcessing
		}
		if st.Status == StatusCompleted {
			completed++
		}
	}
	if completed == 0 {
		return SampleProcessing
	}
	return SampleCompleted
}
