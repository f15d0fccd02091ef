package repository

import "context"

// SessionStore keeps opaque admin session tokens for the configured TTL.
type SessionStore interface {
	Put(ctx context.Context, sessionToken string) error
	// Validate reports whether the token names a live session and extends
	// its lifetime when it does.
	Validate(ctx context.Context, sessionToken string) (bool, error)
	Delete(ctx context.Context, sessionToken string) error
}
