package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMobile(t *testing.T) {
	cases := []struct {
		name   string
		mobile string
		valid  bool
	}{
		{"eight digits", "12345678", true},
		{"fifteen digits", "123456789012345", true},
		{"typical number", "5551234567", true},
		{"empty", "", false},
		{"too short", "1234567", false},
		{"too long", "1234567890123456", false},
		{"letters", "55512abc67", false},
		{"plus prefix", "+5551234567", false},
		{"spaces inside", "555 123 4567", false},
		{"surrounding spaces", "  5551234567  ", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, IsValidMobile(tc.mobile))
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("12345"))
	assert.NoError(t, ValidatePassword("123456"))
	assert.Error(t, ValidatePassword(string(make([]byte, 129))))
}

func TestValidateMachineID(t *testing.T) {
	assert.NoError(t, ValidateMachineID("MCH-01"))
	assert.NoError(t, ValidateMachineID("machine_22"))
	assert.Error(t, ValidateMachineID(""))
	assert.Error(t, ValidateMachineID("mch 01"))
	assert.Error(t, ValidateMachineID("mch#01"))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("John Doe"))
	assert.Error(t, ValidateName("   "))
	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidateName(string(long)))
}
