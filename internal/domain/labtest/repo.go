package labtest

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no test matches the given id.
	ErrNotFound = errors.New("test not found")
	// ErrDuplicateCode is returned when a create or update would violate
	// code uniqueness.
	ErrDuplicateCode = errors.New("test code already exists")
)

type Repository interface {
	Create(ctx context.Context, t *Test) error
	GetByID(ctx context.Context, id uuid.UUID) (*Test, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Test, error)
	Update(ctx context.Context, t *Test) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]*Test, error)
}
