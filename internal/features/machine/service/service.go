package service

import (
	"context"
	"errors"
	"strings"

	apperrors "polygreen-backend/internal/common/errors"
	"polygreen-backend/internal/common/logger"
	"polygreen-backend/internal/common/validation"
	"polygreen-backend/internal/features/machine/models"
	"polygreen-backend/internal/features/machine/repository"
)

// MachineService manages the machine registry.
type MachineService interface {
	List(ctx context.Context) ([]*models.Machine, error)
	Get(ctx context.Context, machineID string) (*models.Machine, error)
	Add(ctx context.Context, machine *models.Machine) error
	Empty(ctx context.Context, machineID string) (*models.EmptyReport, error)
}

type machineService struct {
	repo repository.MachineRepository
}

func NewMachineService(repo repository.MachineRepository) MachineService {
	return &machineService{repo: repo}
}

func (s *machineService) List(ctx context.Context) ([]*models.Machine, error) {
	machines, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list machines", err)
	}
	return machines, nil
}

func (s *machineService) Get(ctx context.Context, machineID string) (*models.Machine, error) {
	machine, err := s.repo.GetByID(ctx, machineID)
	if err != nil {
		if errors.Is(err, repository.ErrMachineNotFound) {
			return nil, apperrors.NewMachineNotFoundError(machineID)
		}
		return nil, apperrors.NewDatabaseError("get machine", err)
	}
	return machine, nil
}

func (s *machineService) Add(ctx context.Context, machine *models.Machine) error {
	machine.ID = strings.TrimSpace(machine.ID)
	machine.Name = strings.TrimSpace(machine.Name)
	machine.City = strings.TrimSpace(machine.City)

	if err := validation.ValidateMachineID(machine.ID); err != nil {
		return apperrors.NewValidationError("machine_id", err.Error())
	}
	if machine.Name == "" {
		return apperrors.NewValidationError("name", "cannot be empty")
	}
	if machine.City == "" {
		return apperrors.NewValidationError("city", "cannot be empty")
	}
	if err := validation.ValidatePositiveInt(machine.MaxCapacity, "max_capacity"); err != nil {
		return apperrors.NewValidationError("max_capacity", err.Error())
	}

	if err := s.repo.Create(ctx, machine); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperrors.NewConflictError("machine", "machine_id already exists")
		}
		return apperrors.NewDatabaseError("create machine", err)
	}

	logger.Info().
		Str("machine_id", machine.ID).
		Str("city", machine.City).
		Int64("max_capacity", machine.MaxCapacity).
		Msg("machine registered")

	return nil
}

// Empty is an administrative, physical event: it resets the fill level and
// reports what was collected, without touching the ledger or the lifetime
// total.
func (s *machineService) Empty(ctx context.Context, machineID string) (*models.EmptyReport, error) {
	report, err := s.repo.Empty(ctx, machineID)
	if err != nil {
		if errors.Is(err, repository.ErrMachineNotFound) {
			return nil, apperrors.NewMachineNotFoundError(machineID)
		}
		return nil, apperrors.NewDatabaseError("empty machine", err)
	}

	logger.Info().
		Str("machine_id", report.MachineID).
		Int64("bottles_collected", report.BottlesCollected).
		Msg("machine emptied")

	return report, nil
}
