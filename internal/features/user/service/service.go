package service

import (
	"context"
	"errors"
	"strings"

	apperrors "polygreen-backend/internal/common/errors"
	"polygreen-backend/internal/common/logger"
	"polygreen-backend/internal/common/password"
	"polygreen-backend/internal/common/token"
	"polygreen-backend/internal/common/validation"
	depositmodels "polygreen-backend/internal/features/deposit/models"
	"polygreen-backend/internal/features/user/models"
	"polygreen-backend/internal/features/user/repository"
)

// LedgerReader is the slice of the ledger the user feature needs for the
// points summary.
type LedgerReader interface {
	HistoryByUser(ctx context.Context, userID string, limit int) ([]*depositmodels.Transaction, error)
}

// AuthResult is a user snapshot plus a freshly issued access token.
type AuthResult struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

// PointsSummary is the running total plus the most recent ledger entries.
type PointsSummary struct {
	TotalPoints int64                        `json:"total_points"`
	Recent      []*depositmodels.Transaction `json:"recent"`
}

const recentTransactionLimit = 5

// UserService covers registration, login and profile reads.
type UserService interface {
	Register(ctx context.Context, name, mobile, plainPassword string) (*AuthResult, error)
	Login(ctx context.Context, mobile, plainPassword string) (*AuthResult, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	FetchByMobile(ctx context.Context, mobile string) (*models.User, error)
	PointsSummary(ctx context.Context, userID string) (*PointsSummary, error)
}

type userService struct {
	repo   repository.UserRepository
	ledger LedgerReader
	tokens *token.Manager
}

func NewUserService(repo repository.UserRepository, ledger LedgerReader, tokens *token.Manager) UserService {
	return &userService{repo: repo, ledger: ledger, tokens: tokens}
}

func (s *userService) Register(ctx context.Context, name, mobile, plainPassword string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	mobile = strings.TrimSpace(mobile)

	if err := validation.ValidateName(name); err != nil {
		return nil, apperrors.NewValidationError("name", err.Error())
	}
	if !validation.IsValidMobile(mobile) {
		return nil, apperrors.NewInvalidMobileError(mobile)
	}
	if err := validation.ValidatePassword(plainPassword); err != nil {
		return nil, apperrors.NewValidationError("password", err.Error())
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to hash password")
	}

	user := &models.User{
		ID:           models.DeriveID(name, mobile),
		Name:         name,
		Mobile:       mobile,
		PasswordHash: hash,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflictError("user", "mobile or user_id already used")
		}
		return nil, apperrors.NewDatabaseError("create user", err)
	}

	accessToken, err := s.tokens.Issue(user.ID, user.Name, user.Mobile)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to issue token")
	}

	logger.Info().Str("user_id", user.ID).Msg("user registered")

	return &AuthResult{User: user, AccessToken: accessToken}, nil
}

func (s *userService) Login(ctx context.Context, mobile, plainPassword string) (*AuthResult, error) {
	mobile = strings.TrimSpace(mobile)
	if !validation.IsValidMobile(mobile) {
		return nil, apperrors.NewInvalidMobileError(mobile)
	}
	if plainPassword == "" {
		return nil, apperrors.NewValidationError("password", "is required")
	}

	user, err := s.repo.GetByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Indistinguishable from a wrong password on purpose.
			return nil, apperrors.NewCredentialError()
		}
		return nil, apperrors.NewDatabaseError("get user", err)
	}

	if !password.Verify(plainPassword, user.PasswordHash) {
		return nil, apperrors.NewCredentialError()
	}

	accessToken, err := s.tokens.Issue(user.ID, user.Name, user.Mobile)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to issue token")
	}

	return &AuthResult{User: user, AccessToken: accessToken}, nil
}

func (s *userService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(userID)
		}
		return nil, apperrors.NewDatabaseError("get user", err)
	}
	return user, nil
}

// FetchByMobile is the machine-facing lookup used before a deposit: a
// vending machine resolves the user standing in front of it.
func (s *userService) FetchByMobile(ctx context.Context, mobile string) (*models.User, error) {
	mobile = strings.TrimSpace(mobile)
	if !validation.IsValidMobile(mobile) {
		return nil, apperrors.NewInvalidMobileError(mobile)
	}

	user, err := s.repo.GetByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(mobile)
		}
		return nil, apperrors.NewDatabaseError("get user", err)
	}
	return user, nil
}

func (s *userService) PointsSummary(ctx context.Context, userID string) (*PointsSummary, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	recent, err := s.ledger.HistoryByUser(ctx, userID, recentTransactionLimit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get recent transactions", err)
	}
	if recent == nil {
		recent = []*depositmodels.Transaction{}
	}

	return &PointsSummary{TotalPoints: user.Points, Recent: recent}, nil
}
