package service

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/google/uuid"

	apperrors "polygreen-backend/internal/common/errors"
	"polygreen-backend/internal/common/logger"
	"polygreen-backend/internal/features/admin/reports"
	"polygreen-backend/internal/features/admin/repository"
	depositmodels "polygreen-backend/internal/features/deposit/models"
	depositrepo "polygreen-backend/internal/features/deposit/repository"
	machinemodels "polygreen-backend/internal/features/machine/models"
	machinerepo "polygreen-backend/internal/features/machine/repository"
	usermodels "polygreen-backend/internal/features/user/models"
	userrepo "polygreen-backend/internal/features/user/repository"
)

// Credentials is the single configured admin account.
type Credentials struct {
	Username string
	Password string
}

// Dashboard is the admin landing summary.
type Dashboard struct {
	TotalUsers        int64 `json:"total_users"`
	TotalMachines     int64 `json:"total_machines"`
	TotalTransactions int64 `json:"total_transactions"`
}

// UserDetail is one account plus its full ledger history.
type UserDetail struct {
	User    *usermodels.User             `json:"user"`
	History []*depositmodels.Transaction `json:"history"`
}

// MachineDetail is one machine plus its deposit history.
type MachineDetail struct {
	Machine        *machinemodels.Machine       `json:"machine"`
	AvailableSpace int64                        `json:"available_space"`
	FillPercentage float64                      `json:"fill_percentage"`
	History        []*depositmodels.Transaction `json:"history"`
}

// AdminService backs the admin dashboard, listings and PDF exports.
type AdminService interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, sessionToken string) error

	Dashboard(ctx context.Context) (*Dashboard, error)
	ListUsers(ctx context.Context) ([]*usermodels.User, error)
	UserDetail(ctx context.Context, userID string) (*UserDetail, error)
	ListMachines(ctx context.Context) ([]*machinemodels.Machine, error)
	MachineDetail(ctx context.Context, machineID string) (*MachineDetail, error)
	ListTransactions(ctx context.Context) ([]*depositmodels.Transaction, error)

	UsersReport(ctx context.Context) ([]byte, error)
	UserReport(ctx context.Context, userID string) ([]byte, error)
	MachinesReport(ctx context.Context) ([]byte, error)
	MachineReport(ctx context.Context, machineID string) ([]byte, error)
	TransactionsReport(ctx context.Context) ([]byte, error)
}

type adminService struct {
	creds    Credentials
	sessions repository.SessionStore
	users    userrepo.UserRepository
	machines machinerepo.MachineRepository
	ledger   depositrepo.LedgerRepository
}

func NewAdminService(
	creds Credentials,
	sessions repository.SessionStore,
	users userrepo.UserRepository,
	machines machinerepo.MachineRepository,
	ledger depositrepo.LedgerRepository,
) AdminService {
	return &adminService{
		creds:    creds,
		sessions: sessions,
		users:    users,
		machines: machines,
		ledger:   ledger,
	}
}

func (s *adminService) Login(ctx context.Context, username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.creds.Password)) == 1
	if !userOK || !passOK {
		return "", apperrors.NewCredentialError()
	}

	sessionToken := uuid.NewString()
	if err := s.sessions.Put(ctx, sessionToken); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeSessionError, "failed to store session")
	}

	logger.Info().Str("username", username).Msg("admin logged in")
	return sessionToken, nil
}

func (s *adminService) Logout(ctx context.Context, sessionToken string) error {
	if err := s.sessions.Delete(ctx, sessionToken); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSessionError, "failed to delete session")
	}
	return nil
}

func (s *adminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	userCount, err := s.users.Count(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("count users", err)
	}
	machineCount, err := s.machines.Count(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("count machines", err)
	}
	txCount, err := s.ledger.Count(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("count transactions", err)
	}

	return &Dashboard{
		TotalUsers:        userCount,
		TotalMachines:     machineCount,
		TotalTransactions: txCount,
	}, nil
}

func (s *adminService) ListUsers(ctx context.Context) ([]*usermodels.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list users", err)
	}
	return users, nil
}

func (s *adminService) UserDetail(ctx context.Context, userID string) (*UserDetail, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(userID)
		}
		return nil, apperrors.NewDatabaseError("get user", err)
	}

	history, err := s.ledger.HistoryByUser(ctx, userID, 0)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get user transactions", err)
	}

	return &UserDetail{User: user, History: history}, nil
}

func (s *adminService) ListMachines(ctx context.Context) ([]*machinemodels.Machine, error) {
	machines, err := s.machines.List(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list machines", err)
	}
	return machines, nil
}

func (s *adminService) MachineDetail(ctx context.Context, machineID string) (*MachineDetail, error) {
	machine, err := s.machines.GetByID(ctx, machineID)
	if err != nil {
		if errors.Is(err, machinerepo.ErrMachineNotFound) {
			return nil, apperrors.NewMachineNotFoundError(machineID)
		}
		return nil, apperrors.NewDatabaseError("get machine", err)
	}

	history, err := s.ledger.HistoryByMachine(ctx, machineID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get machine transactions", err)
	}

	return &MachineDetail{
		Machine:        machine,
		AvailableSpace: machine.AvailableSpace(),
		FillPercentage: machine.FillPercentage(),
		History:        history,
	}, nil
}

func (s *adminService) ListTransactions(ctx context.Context) ([]*depositmodels.Transaction, error) {
	transactions, err := s.ledger.List(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list transactions", err)
	}
	return transactions, nil
}

func (s *adminService) UsersReport(ctx context.Context) ([]byte, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return reports.Users(users)
}

func (s *adminService) UserReport(ctx context.Context, userID string) ([]byte, error) {
	detail, err := s.UserDetail(ctx, userID)
	if err != nil {
		return nil, err
	}
	return reports.User(detail.User, detail.History)
}

func (s *adminService) MachinesReport(ctx context.Context) ([]byte, error) {
	machines, err := s.ListMachines(ctx)
	if err != nil {
		return nil, err
	}
	return reports.Machines(machines)
}

func (s *adminService) MachineReport(ctx context.Context, machineID string) ([]byte, error) {
	detail, err := s.MachineDetail(ctx, machineID)
	if err != nil {
		return nil, err
	}
	return reports.Machine(detail.Machine, detail.History)
}

func (s *adminService) TransactionsReport(ctx context.Context) ([]byte, error) {
	transactions, err := s.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return reports.Transactions(transactions)
}
