// Package password wraps bcrypt hashing for user credentials.
//
// bcrypt only considers the first 72 bytes of its input. The original mobile
// clients rely on longer passwords being accepted, so both Hash and Verify
// truncate explicitly instead of failing on long input. Two secrets that
// differ only beyond the 72nd byte are therefore indistinguishable.
package password

import "golang.org/x/crypto/bcrypt"

const maxInputBytes = 72

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > maxInputBytes {
		b = b[:maxInputBytes]
	}
	return b
}

// Hash returns the bcrypt hash of password at the default cost.
func Hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword(truncate(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether password matches the stored hash.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(password)) == nil
}
