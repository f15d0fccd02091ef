package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"polygreen-backend/internal/features/auth/models"
	"polygreen-backend/internal/features/auth/repository"
)

type otpRepository struct {
	pool *pgxpool.Pool
}

func NewOTPRepository(pool *pgxpool.Pool) repository.OTPRepository {
	return &otpRepository{pool: pool}
}

func (r *otpRepository) Upsert(ctx context.Context, otp *models.OTP) error {
	query := `
		INSERT INTO user_otps (mobile, otp, expires_at, verified, updated_at)
		VALUES ($1, $2, $3, FALSE, NOW())
		ON CONFLICT (mobile) DO UPDATE
		SET otp = EXCLUDED.otp,
		    expires_at = EXCLUDED.expires_at,
		    verified = FALSE,
		    updated_at = NOW()`

	if _, err := r.pool.Exec(ctx, query, otp.Mobile, otp.Code, otp.ExpiresAt); err != nil {
		return fmt.Errorf("upsert otp: %w", err)
	}
	return nil
}

func (r *otpRepository) Get(ctx context.Context, mobile string) (*models.OTP, error) {
	query := `
		SELECT mobile, otp, expires_at, verified, updated_at
		FROM user_otps
		WHERE mobile = $1`

	var otp models.OTP
	err := r.pool.QueryRow(ctx, query, mobile).Scan(
		&otp.Mobile, &otp.Code, &otp.ExpiresAt, &otp.Verified, &otp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrOTPNotFound
		}
		return nil, fmt.Errorf("get otp: %w", err)
	}
	return &otp, nil
}

func (r *otpRepository) MarkVerified(ctx context.Context, mobile string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE user_otps SET verified = TRUE, updated_at = NOW() WHERE mobile = $1`,
		mobile,
	)
	if err != nil {
		return fmt.Errorf("mark otp verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrOTPNotFound
	}
	return nil
}

func (r *otpRepository) Delete(ctx context.Context, mobile string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM user_otps WHERE mobile = $1`, mobile); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}
