package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the stored settings, or the default branding object when
// nothing has been saved yet.
func (s *Service) Get(ctx context.Context) (*LabSettings, error) {
	stored, err := s.repo.Get(ctx)
	if errors.Is(err, ErrNotFound) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Save replaces the singleton in full.
func (s *Service) Save(ctx context.Context, in *LabSettings) (*LabSettings, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if err := s.repo.Upsert(ctx, in); err != nil {
		return nil, err
	}
	return s.Get(ctx)
}
