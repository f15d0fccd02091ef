package repository

import (
	"context"
	"errors"
	"time"

	"polygreen-backend/internal/features/auth/models"
)

var ErrOTPNotFound = errors.New("otp not found")

// OTPRepository stores at most one live OTP per mobile number.
type OTPRepository interface {
	// Upsert writes the OTP for a mobile, replacing any existing one and
	// clearing its verified flag.
	Upsert(ctx context.Context, otp *models.OTP) error
	Get(ctx context.Context, mobile string) (*models.OTP, error)
	// MarkVerified flips the verified flag after a successful code match.
	MarkVerified(ctx context.Context, mobile string) error
	Delete(ctx context.Context, mobile string) error
}

// SendLimiter throttles OTP delivery per mobile number.
type SendLimiter interface {
	// Allow reports whether a send is permitted now. When it is, the
	// attempt is recorded so the next call within the window is denied.
	Allow(ctx context.Context, mobile string) (bool, error)
	Window() time.Duration
}
