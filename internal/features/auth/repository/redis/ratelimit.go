package redis

import (
	"context"
	"fmt"
	"time"

	platformredis "polygreen-backend/internal/platform/redis"

	"polygreen-backend/internal/features/auth/repository"
)

const sendKeyPrefix = "otp:send:"

type sendLimiter struct {
	client *platformredis.Client
	window time.Duration
}

// NewSendLimiter allows one OTP send per mobile per window.
func NewSendLimiter(client *platformredis.Client, window time.Duration) repository.SendLimiter {
	return &sendLimiter{client: client, window: window}
}

func (l *sendLimiter) Allow(ctx context.Context, mobile string) (bool, error) {
	// SET NX doubles as check and record, so two concurrent sends for the
	// same mobile cannot both pass.
	ok, err := l.client.SetNX(ctx, sendKeyPrefix+mobile, time.Now().Unix(), l.window).Result()
	if err != nil {
		return false, fmt.Errorf("otp send limiter: %w", err)
	}
	return ok, nil
}

func (l *sendLimiter) Window() time.Duration {
	return l.window
}
