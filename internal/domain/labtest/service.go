package labtest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	tests Repository
}

func NewService(tests Repository) *Service {
	return &Service{tests: tests}
}

var validStatuses = map[string]bool{
	StatusActive: true, StatusInactive: true,
}

func (s *Service) validate(t *Test) error {
	if t.Code == "" {
		return fmt.Errorf("code is required")
	}
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	if t.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if t.Status == "" {
		t.Status = StatusActive
	}
	if !validStatuses[t.Status] {
		return fmt.Errorf("invalid status: %s", t.Status)
	}
	seen := make(map[string]bool, len(t.Parameters))
	for _, p := range t.Parameters {
		if p.Name == "" {
			return fmt.Errorf("parameter name is required")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate parameter: %s", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

func (s *Service) Create(ctx context.Context, t *Test) error {
	if err := s.validate(t); err != nil {
		return err
	}
	return s.tests.Create(ctx, t)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Test, error) {
	return s.tests.GetByID(ctx, id)
}

// GetByIDs resolves a set of catalog ids. Sample intake uses it to verify
// every requested test exists.
func (s *Service) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Test, error) {
	return s.tests.GetByIDs(ctx, ids)
}

func (s *Service) Update(ctx context.Context, t *Test) error {
	if err := s.validate(t); err != nil {
		return err
	}
	return s.tests.Update(ctx, t)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tests.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Test, error) {
	if filter.Status != "" && !validStatuses[filter.Status] {
		return nil, fmt.Errorf("invalid status filter: %s", filter.Status)
	}
	return s.tests.List(ctx, filter)
}
