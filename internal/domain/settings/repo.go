package settings

import (
	"context"
	"errors"
)

// ErrNotFound is returned by the repository when no settings row exists.
// The service translates it into the default branding object.
var ErrNotFound = errors.New("lab settings not configured")

type Repository interface {
	Get(ctx context.Context) (*LabSettings, error)
	Upsert(ctx context.Context, s *LabSettings) error
}
