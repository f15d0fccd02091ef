package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	apperrors "polygreen-backend/internal/common/errors"
	"polygreen-backend/internal/common/logger"
	"polygreen-backend/internal/common/password"
	"polygreen-backend/internal/common/validation"
	"polygreen-backend/internal/features/auth/models"
	"polygreen-backend/internal/features/auth/repository"
	userrepo "polygreen-backend/internal/features/user/repository"
	"polygreen-backend/internal/platform/sms"
)

// AuthService drives the OTP-based password recovery flow.
type AuthService interface {
	// CheckUser reports whether an account exists for the mobile number.
	CheckUser(ctx context.Context, mobile string) (bool, error)
	SendOTP(ctx context.Context, mobile string) error
	VerifyOTP(ctx context.Context, mobile, code string) error
	// SetNewPassword consumes a verified OTP and replaces the password.
	SetNewPassword(ctx context.Context, mobile, newPassword string) error
	// ChangePassword replaces the password of an authenticated user after
	// checking the old one.
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

type authService struct {
	otps    repository.OTPRepository
	limiter repository.SendLimiter
	users   userrepo.UserRepository
	sender  sms.Sender
	otpTTL  time.Duration
}

func NewAuthService(
	otps repository.OTPRepository,
	limiter repository.SendLimiter,
	users userrepo.UserRepository,
	sender sms.Sender,
	otpTTL time.Duration,
) AuthService {
	return &authService{
		otps:    otps,
		limiter: limiter,
		users:   users,
		sender:  sender,
		otpTTL:  otpTTL,
	}
}

func (s *authService) CheckUser(ctx context.Context, mobile string) (bool, error) {
	mobile = strings.TrimSpace(mobile)
	if !validation.IsValidMobile(mobile) {
		return false, apperrors.NewInvalidMobileError(mobile)
	}

	exists, err := s.users.ExistsByMobile(ctx, mobile)
	if err != nil {
		return false, apperrors.NewDatabaseError("check user", err)
	}
	return exists, nil
}

func (s *authService) SendOTP(ctx context.Context, mobile string) error {
	mobile = strings.TrimSpace(mobile)
	if !validation.IsValidMobile(mobile) {
		return apperrors.NewInvalidMobileError(mobile)
	}

	exists, err := s.users.ExistsByMobile(ctx, mobile)
	if err != nil {
		return apperrors.NewDatabaseError("check user", err)
	}
	if !exists {
		return apperrors.NewUserNotFoundError(mobile)
	}

	allowed, err := s.limiter.Allow(ctx, mobile)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "otp rate limiter failed")
	}
	if !allowed {
		return apperrors.NewRateLimitError(s.limiter.Window())
	}

	code, err := generateCode()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to generate otp")
	}

	otp := &models.OTP{
		Mobile:    mobile,
		Code:      code,
		ExpiresAt: time.Now().Add(s.otpTTL),
	}
	if err := s.otps.Upsert(ctx, otp); err != nil {
		return apperrors.NewDatabaseError("store otp", err)
	}

	text := fmt.Sprintf("Your PolyGreen verification code is %s. It expires in %d minutes.",
		code, int(s.otpTTL.Minutes()))
	// The code is already stored at this point, so a delivery failure does
	// not fail the request; the send can be retried after the rate window.
	if err := s.sender.Send(ctx, mobile, text); err != nil {
		logger.Warn().Err(err).Str("mobile", mobile).Msg("otp delivery failed")
		return nil
	}

	logger.Info().Str("mobile", mobile).Msg("otp sent")
	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, mobile, code string) error {
	mobile = strings.TrimSpace(mobile)
	code = strings.TrimSpace(code)
	if !validation.IsValidMobile(mobile) {
		return apperrors.NewInvalidMobileError(mobile)
	}
	if code == "" {
		return apperrors.NewValidationError("otp", "is required")
	}

	otp, err := s.otps.Get(ctx, mobile)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return apperrors.New(apperrors.ErrCodeOTPNotFound, "no verification code was requested for this mobile")
		}
		return apperrors.NewDatabaseError("get otp", err)
	}

	if otp.Expired(time.Now()) {
		return apperrors.New(apperrors.ErrCodeOTPExpired, "verification code has expired")
	}
	if otp.Verified {
		return apperrors.New(apperrors.ErrCodeOTPAlreadyUsed, "verification code was already used")
	}
	if otp.Code != code {
		return apperrors.New(apperrors.ErrCodeOTPMismatch, "verification code does not match")
	}

	if err := s.otps.MarkVerified(ctx, mobile); err != nil {
		return apperrors.NewDatabaseError("mark otp verified", err)
	}
	return nil
}

func (s *authService) SetNewPassword(ctx context.Context, mobile, newPassword string) error {
	mobile = strings.TrimSpace(mobile)
	if !validation.IsValidMobile(mobile) {
		return apperrors.NewInvalidMobileError(mobile)
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return apperrors.NewValidationError("password", err.Error())
	}

	otp, err := s.otps.Get(ctx, mobile)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return apperrors.New(apperrors.ErrCodeOTPNotVerified, "mobile has no verified code")
		}
		return apperrors.NewDatabaseError("get otp", err)
	}
	if !otp.Verified {
		return apperrors.New(apperrors.ErrCodeOTPNotVerified, "verification code was not confirmed")
	}
	if otp.Expired(time.Now()) {
		return apperrors.New(apperrors.ErrCodeOTPExpired, "verification code has expired")
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to hash password")
	}

	if err := s.users.UpdatePasswordByMobile(ctx, mobile, hash); err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return apperrors.NewUserNotFoundError(mobile)
		}
		return apperrors.NewDatabaseError("update password", err)
	}

	// The code is single use: consume it so a second reset needs a fresh one.
	if err := s.otps.Delete(ctx, mobile); err != nil {
		logger.Warn().Err(err).Str("mobile", mobile).Msg("failed to consume otp after password reset")
	}

	logger.Info().Str("mobile", mobile).Msg("password reset via otp")
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if userID == "" {
		return apperrors.NewUnauthorizedError("missing user identity")
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return apperrors.NewValidationError("password", err.Error())
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return apperrors.NewUserNotFoundError(userID)
		}
		return apperrors.NewDatabaseError("get user", err)
	}

	if !password.Verify(oldPassword, user.PasswordHash) {
		return apperrors.NewCredentialError()
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to hash password")
	}

	if err := s.users.UpdatePasswordByID(ctx, userID, hash); err != nil {
		return apperrors.NewDatabaseError("update password", err)
	}

	logger.Info().Str("user_id", userID).Msg("password changed")
	return nil
}

// generateCode draws a uniformly random 4 digit code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
