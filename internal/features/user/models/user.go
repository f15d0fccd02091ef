package models

import (
	"strings"
	"time"
)

// User is a registered mobile-app account. Points and Bottles are mutated
// only by the deposit reconciler; PasswordHash only by the credential flows.
type User struct {
	ID           string    `json:"user_id"`
	Name         string    `json:"name"`
	Mobile       string    `json:"mobile"`
	PasswordHash string    `json:"-"`
	Points       int64     `json:"points"`
	Bottles      int64     `json:"bottles"`
	CreatedAt    time.Time `json:"created_at"`
}

// DeriveID builds the deterministic user identifier: the first four letters
// of the name (lowercased) joined with the last four digits of the mobile.
func DeriveID(name, mobile string) string {
	prefix := strings.ToLower(strings.TrimSpace(name))
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	suffix := mobile
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return prefix + "_" + suffix
}
