// Package settings holds the lab identity stamped on generated reports.
// Exactly one row exists; reads before the first write return the default
// branding object instead of failing.
package settings

import "time"

// LabSettings is the branding singleton.
type LabSettings struct {
	Name    string  `db:"name" json:"name"`
	Address string  `db:"address" json:"address"`
	Phone   string  `db:"phone" json:"phone"`
	Email   string  `db:"email" json:"email"`
	Logo    *string `db:"logo" json:"logo,omitempty"`

	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultSettings is what reads return before any settings have been saved.
func DefaultSettings() *LabSettings {
	return &LabSettings{
		Name:    "Laboratory",
		Address: "",
		Phone:   "",
		Email:   "",
	}
}
