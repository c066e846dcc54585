// Package labtest implements the test catalog: reusable test definitions
// with their ordered parameter schemas.
package labtest

import (
	"time"

	"github.com/google/uuid"
)

// Catalog statuses.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Parameter is one named measurement within a test's schema. Slice order is
// declaration order and drives report rendering.
type Parameter struct {
	Name        string `json:"name"`
	Units       string `json:"units,omitempty"`
	NormalRange string `json:"normal_range,omitempty"`
}

// Test maps to the tests table. SampleTypes and Parameters are stored as
// JSONB columns.
type Test struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	Code        string      `db:"code" json:"code"`
	Name        string      `db:"name" json:"name"`
	SampleTypes []string    `db:"sample_types" json:"sample_types"`
	Category    string      `db:"category" json:"category"`
	Department  string      `db:"department" json:"department"`
	Price       float64     `db:"price" json:"price"`
	Duration    string      `db:"duration" json:"duration"`
	Status      string      `db:"status" json:"status"`
	Parameters  []Parameter `db:"parameters" json:"parameters"`

	// SampleCount is populated on list reads.
	SampleCount int `db:"-" json:"sample_count"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ParameterNames returns the declared parameter names in order.
func (t *Test) ParameterNames() []string {
	names := make([]string, len(t.Parameters))
	for i, p := range t.Parameters {
		names[i] = p.Name
	}
	return names
}

// HasParameter reports whether name is in the declared parameter set.
func (t *Test) HasParameter(name string) bool {
	for _, p := range t.Parameters {
		if p.Name == name {
			return true
		}
	}
	return false
}

// ListFilter narrows the catalog listing. Zero values mean no filtering.
type ListFilter struct {
	SampleType string
	Category   string
	Department string
	Status     string
	// InUse keeps only tests attached to at least one sample.
	InUse bool
}
