package redis

import (
	"context"
	"fmt"
	"time"

	"polygreen-backend/internal/features/admin/repository"
	platformredis "polygreen-backend/internal/platform/redis"
)

const sessionKeyPrefix = "admin:session:"

type sessionStore struct {
	client *platformredis.Client
	ttl    time.Duration
}

// NewSessionStore keeps admin sessions in Redis with a sliding expiry.
func NewSessionStore(client *platformredis.Client, ttl time.Duration) repository.SessionStore {
	return &sessionStore{client: client, ttl: ttl}
}

func (s *sessionStore) Put(ctx context.Context, sessionToken string) error {
	err := s.client.Set(ctx, sessionKeyPrefix+sessionToken, time.Now().Unix(), s.ttl).Err()
	if err != nil {
		return fmt.Errorf("store admin session: %w", err)
	}
	return nil
}

func (s *sessionStore) Validate(ctx context.Context, sessionToken string) (bool, error) {
	if sessionToken == "" {
		return false, nil
	}

	// Refreshing on every validated request keeps active sessions alive.
	ok, err := s.client.Expire(ctx, sessionKeyPrefix+sessionToken, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("validate admin session: %w", err)
	}
	return ok, nil
}

func (s *sessionStore) Delete(ctx context.Context, sessionToken string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionToken).Err(); err != nil {
		return fmt.Errorf("delete admin session: %w", err)
	}
	return nil
}
