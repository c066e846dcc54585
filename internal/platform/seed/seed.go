// Package seed loads the reference test catalog, demo patients, and
// default lab branding. Running it twice is safe: existing codes and
// names are skipped.
package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/lims/lims/internal/domain/labtest"
	"github.com/lims/lims/internal/domain/patient"
	"github.com/lims/lims/internal/domain/settings"
)

type Seeder struct {
	tests    *labtest.Service
	patients *patient.Service
	settings *settings.Service
	log      zerolog.Logger
}

func New(tests *labtest.Service, patients *patient.Service, branding *settings.Service, log zerolog.Logger) *Seeder {
	return &Seeder{tests: tests, patients: patients, settings: branding, log: log}
}

func (s *Seeder) Run(ctx context.Context) error {
	if err := s.seedCatalog(ctx); err != nil {
		return err
	}
	if err := s.seedPatients(ctx); err != nil {
		return err
	}
	return s.seedBranding(ctx)
}

func (s *Seeder) seedCatalog(ctx context.Context) error {
	for _, t := range catalog() {
		t := t
		if err := s.tests.Create(ctx, &t); err != nil {
			if errors.Is(err, labtest.ErrDuplicateCode) {
				s.log.Debug().Str("code", t.Code).Msg("test already seeded")
				continue
			}
			return err
		}
		s.log.Info().Str("code", t.Code).Str("name", t.Name).Msg("seeded test")
	}
	return nil
}

func (s *Seeder) seedPatients(ctx context.Context) error {
	for _, p := range demoPatients() {
		p := p
		_, total, err := s.patients.SearchByName(ctx, p.Name, 1, 0)
		if err != nil {
			return err
		}
		if total > 0 {
			s.log.Debug().Str("name", p.Name).Msg("patient already seeded")
			continue
		}
		if err := s.patients.Create(ctx, &p); err != nil {
			return err
		}
		s.log.Info().Str("name", p.Name).Msg("seeded patient")
	}
	return nil
}

func (s *Seeder) seedBranding(ctx context.Context) error {
	current, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	if current.Name != settings.DefaultSettings().Name {
		s.log.Debug().Msg("lab settings already configured")
		return nil
	}
	_, err = s.settings.Save(ctx, &settings.LabSettings{
		Name:    "City Diagnostics Laboratory",
		Address: "123 Main St, Anytown, ST 12345",
		Phone:   "123-456-7890",
		Email:   "info@citydiagnostics.example",
	})
	if err != nil {
		return err
	}
	s.log.Info().Msg("seeded lab settings")
	return nil
}
