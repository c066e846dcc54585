// Package patient implements the patient registry: demographics, referring
// doctor, and the samples received for each patient.
package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table.
type Patient struct {
	ID      uuid.UUID `db:"id" json:"id"`
	Name    string    `db:"name" json:"name"`
	Age     int       `db:"age" json:"age"`
	Gender  string    `db:"gender" json:"gender"`
	Phone   *string   `db:"phone" json:"phone,omitempty"`
	Email   *string   `db:"email" json:"email,omitempty"`
	Address *string   `db:"address" json:"address,omitempty"`
	Doctor  *string   `db:"doctor" json:"doctor,omitempty"`

	// SampleCount is populated on list reads.
	SampleCount int `db:"-" json:"sample_count"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
