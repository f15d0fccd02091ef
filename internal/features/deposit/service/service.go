package service

import (
	"context"
	"strings"

	"polygreen-backend/internal/common/errors"
	"polygreen-backend/internal/common/logger"
	"polygreen-backend/internal/features/deposit/models"
	"polygreen-backend/internal/features/deposit/repository"
)

// DepositService is the deposit reconciler: the single operation with
// durable, externally visible side effects.
type DepositService interface {
	Deposit(ctx context.Context, in models.DepositInput) (*models.DepositResult, error)
}

type depositService struct {
	store       repository.DepositStore
	defaultRate int64
}

func NewDepositService(store repository.DepositStore, defaultPointsPerBottle int64) DepositService {
	return &depositService{store: store, defaultRate: defaultPointsPerBottle}
}

// Deposit validates the request and hands it to the store, which applies the
// capacity check, both balance updates and the ledger insert atomically. All
// precondition failures surface before any mutation.
func (s *depositService) Deposit(ctx context.Context, in models.DepositInput) (*models.DepositResult, error) {
	in.MachineID = strings.TrimSpace(in.MachineID)
	in.UserID = strings.TrimSpace(in.UserID)

	if in.MachineID == "" {
		return nil, errors.NewValidationError("machine_id", "is required")
	}
	if in.UserID == "" {
		return nil, errors.NewValidationError("user_id", "is required")
	}
	if in.BottleCount < 1 {
		return nil, errors.NewInvalidQuantityError(in.BottleCount)
	}
	// Negative means the machine did not supply a rate; fall back to the
	// configured default. An explicit zero is honored.
	if in.PointsPerBottle < 0 {
		in.PointsPerBottle = s.defaultRate
	}

	result, err := s.store.Deposit(ctx, in)
	if err != nil {
		return nil, err
	}

	ev := logger.Info().
		Str("machine_id", in.MachineID).
		Str("user_id", in.UserID).
		Int64("bottles", result.BottlesAdded).
		Int64("earned_points", result.EarnedPoints)
	if result.Duplicate {
		ev.Bool("duplicate", true)
	}
	ev.Msg("deposit reconciled")

	return result, nil
}
