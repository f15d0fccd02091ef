package models

import "time"

// OTP is the single live one-time password for a mobile number. Sending a
// new code replaces the previous one.
type OTP struct {
	Mobile    string    `json:"mobile"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Verified  bool      `json:"verified"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expired reports whether the code is past its validity window.
func (o *OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
