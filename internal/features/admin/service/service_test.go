package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polygreen-backend/internal/common/errors"
	depositmodels "polygreen-backend/internal/features/deposit/models"
	machinemodels "polygreen-backend/internal/features/machine/models"
	machinerepo "polygreen-backend/internal/features/machine/repository"
	usermodels "polygreen-backend/internal/features/user/models"
	userrepo "polygreen-backend/internal/features/user/repository"
)

type fakeSessions struct {
	tokens map[string]time.Time
	ttl    time.Duration
}

func newFakeSessions(ttl time.Duration) *fakeSessions {
	return &fakeSessions{tokens: make(map[string]time.Time), ttl: ttl}
}

func (s *fakeSessions) Put(_ context.Context, sessionToken string) error {
	s.tokens[sessionToken] = time.Now().Add(s.ttl)
	return nil
}

func (s *fakeSessions) Validate(_ context.Context, sessionToken string) (bool, error) {
	deadline, ok := s.tokens[sessionToken]
	if !ok || time.Now().After(deadline) {
		delete(s.tokens, sessionToken)
		return false, nil
	}
	deadline = time.Now().Add(s.ttl)
	s.tokens[sessionToken] = deadline
	return true, nil
}

func (s *fakeSessions) Delete(_ context.Context, sessionToken string) error {
	delete(s.tokens, sessionToken)
	return nil
}

type fakeUsers struct {
	userrepo.UserRepository
	users []*usermodels.User
}

func (r *fakeUsers) List(_ context.Context) ([]*usermodels.User, error) { return r.users, nil }

func (r *fakeUsers) Count(_ context.Context) (int64, error) { return int64(len(r.users)), nil }

func (r *fakeUsers) GetByID(_ context.Context, id string) (*usermodels.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, userrepo.ErrUserNotFound
}

type fakeMachines struct {
	machinerepo.MachineRepository
	machines []*machinemodels.Machine
}

func (r *fakeMachines) List(_ context.Context) ([]*machinemodels.Machine, error) {
	return r.machines, nil
}

func (r *fakeMachines) Count(_ context.Context) (int64, error) {
	return int64(len(r.machines)), nil
}

func (r *fakeMachines) GetByID(_ context.Context, id string) (*machinemodels.Machine, error) {
	for _, m := range r.machines {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, machinerepo.ErrMachineNotFound
}

type fakeLedger struct {
	transactions []*depositmodels.Transaction
}

func (l *fakeLedger) HistoryByUser(_ context.Context, userID string, _ int) ([]*depositmodels.Transaction, error) {
	var out []*depositmodels.Transaction
	for _, t := range l.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (l *fakeLedger) HistoryByMachine(_ context.Context, machineID string) ([]*depositmodels.Transaction, error) {
	var out []*depositmodels.Transaction
	for _, t := range l.transactions {
		if t.MachineID != nil && *t.MachineID == machineID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (l *fakeLedger) List(_ context.Context) ([]*depositmodels.Transaction, error) {
	return l.transactions, nil
}

func (l *fakeLedger) Count(_ context.Context) (int64, error) {
	return int64(len(l.transactions)), nil
}

func newTestService(sessions *fakeSessions) AdminService {
	machineID := "MCH-01"
	users := &fakeUsers{users: []*usermodels.User{
		{ID: "john_4567", Name: "John Doe", Mobile: "5551234567", Points: 80, Bottles: 8},
		{ID: "jane_8901", Name: "Jane Roe", Mobile: "5558898901", Points: 20, Bottles: 2},
	}}
	machines := &fakeMachines{machines: []*machinemodels.Machine{
		{ID: machineID, Name: "Central Station", City: "Riyadh", CurrentBottles: 10, MaxCapacity: 20, TotalBottles: 150},
	}}
	ledger := &fakeLedger{transactions: []*depositmodels.Transaction{
		{ID: 1, UserID: "john_4567", Kind: depositmodels.KindEarn, Points: 50, Bottles: 5, MachineID: &machineID, CreatedAt: time.Now()},
		{ID: 2, UserID: "jane_8901", Kind: depositmodels.KindEarn, Points: 20, Bottles: 2, MachineID: &machineID, CreatedAt: time.Now()},
		{ID: 3, UserID: "john_4567", Kind: depositmodels.KindEarn, Points: 30, Bottles: 3, MachineID: &machineID, CreatedAt: time.Now()},
	}}

	creds := Credentials{Username: "admin", Password: "letmein"}
	return NewAdminService(creds, sessions, users, machines, ledger)
}

func TestAdminLoginIssuesSession(t *testing.T) {
	sessions := newFakeSessions(time.Hour)
	svc := newTestService(sessions)
	ctx := context.Background()

	sessionToken, err := svc.Login(ctx, "admin", "letmein")
	require.NoError(t, err)
	require.NotEmpty(t, sessionToken)

	ok, err := sessions.Validate(ctx, sessionToken)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Logout(ctx, sessionToken))
	ok, err = sessions.Validate(ctx, sessionToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(newFakeSessions(time.Hour))
	ctx := context.Background()

	for _, tc := range []struct{ username, password string }{
		{"admin", "wrong"},
		{"root", "letmein"},
		{"", ""},
	} {
		_, err := svc.Login(ctx, tc.username, tc.password)
		require.Error(t, err)
		appErr, ok := errors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, errors.ErrCodeCredentialFailure, appErr.Code)
	}
}

func TestSessionExpiry(t *testing.T) {
	sessions := newFakeSessions(-time.Second)
	svc := newTestService(sessions)
	ctx := context.Background()

	sessionToken, err := svc.Login(ctx, "admin", "letmein")
	require.NoError(t, err)

	ok, err := sessions.Validate(ctx, sessionToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDashboardCounts(t *testing.T) {
	svc := newTestService(newFakeSessions(time.Hour))

	dashboard, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), dashboard.TotalUsers)
	assert.Equal(t, int64(1), dashboard.TotalMachines)
	assert.Equal(t, int64(3), dashboard.TotalTransactions)
}

func TestUserDetailIncludesHistory(t *testing.T) {
	svc := newTestService(newFakeSessions(time.Hour))

	detail, err := svc.UserDetail(context.Background(), "john_4567")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", detail.User.Name)
	assert.Len(t, detail.History, 2)

	_, err = svc.UserDetail(context.Background(), "ghost_0000")
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeUserNotFound, appErr.Code)
}

func TestMachineDetailComputesFill(t *testing.T) {
	svc := newTestService(newFakeSessions(time.Hour))

	detail, err := svc.MachineDetail(context.Background(), "MCH-01")
	require.NoError(t, err)
	assert.Equal(t, int64(10), detail.AvailableSpace)
	assert.InDelta(t, 50.0, detail.FillPercentage, 0.001)
	assert.Len(t, detail.History, 3)
}

func TestReportsRenderPDF(t *testing.T) {
	svc := newTestService(newFakeSessions(time.Hour))
	ctx := context.Background()

	builders := map[string]func() ([]byte, error){
		"users":        func() ([]byte, error) { return svc.UsersReport(ctx) },
		"user":         func() ([]byte, error) { return svc.UserReport(ctx, "john_4567") },
		"machines":     func() ([]byte, error) { return svc.MachinesReport(ctx) },
		"machine":      func() ([]byte, error) { return svc.MachineReport(ctx, "MCH-01") },
		"transactions": func() ([]byte, error) { return svc.TransactionsReport(ctx) },
	}

	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			pdf, err := build()
			require.NoError(t, err)
			require.NotEmpty(t, pdf)
			assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
		})
	}
}
