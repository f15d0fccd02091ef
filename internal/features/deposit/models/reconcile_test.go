package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polygreen-backend/internal/common/errors"
)

func TestReconcileCreditsPointsAndBottles(t *testing.T) {
	machine := MachineState{Current: 3, Capacity: 100, Total: 40}
	user := UserState{Points: 25, Bottles: 7}

	out, err := Reconcile(machine, user, 5, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(50), out.EarnedPoints)
	assert.Equal(t, int64(75), out.NewUserPoints)
	assert.Equal(t, int64(12), out.NewUserBottles)
	assert.Equal(t, int64(8), out.NewMachineCurrent)
	assert.Equal(t, int64(45), out.NewMachineTotal)
	assert.Equal(t, int64(92), out.AvailableSpace)
	assert.False(t, out.MachineIsFull)
}

func TestReconcileRejectsOverCapacityDeposit(t *testing.T) {
	machine := MachineState{Current: 18, Capacity: 20, Total: 18}
	user := UserState{}

	_, err := Reconcile(machine, user, 5, 10)
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeCapacityExceeded, appErr.Code)
	assert.Equal(t, int64(2), appErr.Details["available_space"])
	assert.Equal(t, int64(5), appErr.Details["requested"])
}

func TestReconcileFillsMachineExactly(t *testing.T) {
	machine := MachineState{Current: 15, Capacity: 20, Total: 115}
	user := UserState{Points: 100, Bottles: 10}

	out, err := Reconcile(machine, user, 5, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(50), out.EarnedPoints)
	assert.Equal(t, int64(20), out.NewMachineCurrent)
	assert.Equal(t, int64(0), out.AvailableSpace)
	assert.True(t, out.MachineIsFull)
}

func TestReconcileRejectsFullMachine(t *testing.T) {
	machine := MachineState{Current: 20, Capacity: 20, Total: 20}

	_, err := Reconcile(machine, UserState{}, 1, 10)
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeCapacityExceeded, appErr.Code)
	assert.Equal(t, int64(0), appErr.Details["available_space"])
}

func TestReconcileRejectsNonPositiveCount(t *testing.T) {
	machine := MachineState{Current: 0, Capacity: 20}

	for _, count := range []int64{0, -1, -50} {
		_, err := Reconcile(machine, UserState{}, count, 10)
		require.Error(t, err)

		appErr, ok := errors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, errors.ErrCodeInvalidQuantity, appErr.Code)
	}
}

func TestReconcileHonorsZeroRate(t *testing.T) {
	machine := MachineState{Current: 0, Capacity: 20}
	user := UserState{Points: 30, Bottles: 2}

	out, err := Reconcile(machine, user, 3, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(0), out.EarnedPoints)
	assert.Equal(t, int64(30), out.NewUserPoints)
	assert.Equal(t, int64(5), out.NewUserBottles)
}

func TestReconcileRejectsNegativeRate(t *testing.T) {
	machine := MachineState{Current: 0, Capacity: 20}

	_, err := Reconcile(machine, UserState{}, 1, -1)
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
}

func TestReconcileConservation(t *testing.T) {
	machine := MachineState{Current: 0, Capacity: 1000}
	user := UserState{}

	var deposited int64
	for i := 0; i < 10; i++ {
		out, err := Reconcile(machine, user, 7, 10)
		require.NoError(t, err)

		machine.Current = out.NewMachineCurrent
		machine.Total = out.NewMachineTotal
		user.Points = out.NewUserPoints
		user.Bottles = out.NewUserBottles
		deposited += 7
	}

	assert.Equal(t, deposited, user.Bottles)
	assert.Equal(t, deposited, machine.Current)
	assert.Equal(t, deposited, machine.Total)
	assert.Equal(t, deposited*10, user.Points)
}
