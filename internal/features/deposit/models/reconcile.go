package models

import (
	"polygreen-backend/internal/common/errors"
)

// MachineState is the locked machine row a deposit reconciles against.
type MachineState struct {
	Current  int64
	Capacity int64
	Total    int64
}

// UserState is the locked user row a deposit reconciles against.
type UserState struct {
	Points  int64
	Bottles int64
}

// Outcome holds the absolute post-deposit values computed by Reconcile.
// The caller applies them together with the ledger insert as one atomic unit.
type Outcome struct {
	EarnedPoints      int64
	NewUserPoints     int64
	NewUserBottles    int64
	NewMachineCurrent int64
	NewMachineTotal   int64
	MachineIsFull     bool
	AvailableSpace    int64
}

// Reconcile evaluates a deposit against the locked machine and user state.
//
// The capacity invariant current <= capacity is preserved: a deposit that
// does not fit is rejected with CAPACITY_EXCEEDED carrying the remaining
// space, and no outcome is produced. The full flag is recomputed from the new
// fill level, never merely set.
func Reconcile(machine MachineState, user UserState, bottleCount, pointsPerBottle int64) (Outcome, error) {
	if bottleCount < 1 {
		return Outcome{}, errors.NewInvalidQuantityError(bottleCount)
	}
	if pointsPerBottle < 0 {
		return Outcome{}, errors.NewValidationError("points_per_bottle", "cannot be negative")
	}

	availableSpace := machine.Capacity - machine.Current
	if bottleCount > availableSpace {
		return Outcome{}, errors.NewCapacityExceededError(availableSpace, bottleCount)
	}

	earned := bottleCount * pointsPerBottle
	newCurrent := machine.Current + bottleCount

	return Outcome{
		EarnedPoints:      earned,
		NewUserPoints:     user.Points + earned,
		NewUserBottles:    user.Bottles + bottleCount,
		NewMachineCurrent: newCurrent,
		NewMachineTotal:   machine.Total + bottleCount,
		MachineIsFull:     newCurrent >= machine.Capacity,
		AvailableSpace:    machine.Capacity - newCurrent,
	}, nil
}
