package repository

import (
	"context"
	"errors"

	"polygreen-backend/internal/features/machine/models"
)

var (
	ErrMachineNotFound = errors.New("machine not found")
	ErrDuplicate       = errors.New("machine_id already exists")
)

// MachineRepository persists the machine registry. Fill-level mutations
// happen only through the deposit reconciler and Empty.
type MachineRepository interface {
	Create(ctx context.Context, machine *models.Machine) error
	GetByID(ctx context.Context, id string) (*models.Machine, error)
	List(ctx context.Context) ([]*models.Machine, error)
	Count(ctx context.Context) (int64, error)

	// Empty resets the fill level to zero, clears the full flag and stamps
	// last_emptied, returning the pre-reset fill level. The lifetime total is
	// untouched.
	Empty(ctx context.Context, id string) (*models.EmptyReport, error)
}
