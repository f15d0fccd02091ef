package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("secret-pass")
	require.NoError(t, err)

	assert.True(t, Verify("secret-pass", hash))
	assert.False(t, Verify("wrong-pass", hash))
}

func TestLongPasswordsAreTruncated(t *testing.T) {
	base := strings.Repeat("a", 72)

	hash, err := Hash(base + "tail-one")
	require.NoError(t, err)

	// Only the first 72 bytes count.
	assert.True(t, Verify(base+"tail-two", hash))
	assert.True(t, Verify(base, hash))
	assert.False(t, Verify(base[:71], hash))
}
