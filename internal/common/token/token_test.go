package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)

	signed, err := manager.Issue("john_4567", "John", "5551234567")
	require.NoError(t, err)

	claims, err := manager.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "john_4567", claims.Subject)
	assert.Equal(t, "John", claims.Name)
	assert.Equal(t, "5551234567", claims.Mobile)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	signed, err := NewManager("secret-a", time.Hour).Issue("u", "n", "m")
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour).Parse(signed)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	signed, err := NewManager("test-secret", -time.Minute).Issue("u", "n", "m")
	require.NoError(t, err)

	_, err = NewManager("test-secret", -time.Minute).Parse(signed)
	assert.Error(t, err)
}
