package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MaxNameLength = 64
	MinNameLength = 1

	MinMobileDigits = 8
	MaxMobileDigits = 15

	MinPasswordLength = 6
	MaxPasswordLength = 128

	MaxMachineIDLength = 32
	MaxCityLength      = 64
)

// Mobile numbers are digits only, 8-15 characters, matching the registration
// contract of the mobile app.
var mobileRegex = regexp.MustCompile(`^[0-9]{8,15}$`)

var machineIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateMobile checks the mobile number format.
func ValidateMobile(mobile string) error {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return fmt.Errorf("mobile cannot be empty")
	}
	if !mobileRegex.MatchString(mobile) {
		return fmt.Errorf("mobile must be %d-%d digits", MinMobileDigits, MaxMobileDigits)
	}
	return nil
}

// IsValidMobile reports whether mobile passes ValidateMobile.
func IsValidMobile(mobile string) bool {
	return ValidateMobile(mobile) == nil
}

// ValidateName checks a user display name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < MinNameLength {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("name cannot exceed %d characters", MaxNameLength)
	}
	return nil
}

// ValidatePassword checks password length bounds.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password cannot exceed %d characters", MaxPasswordLength)
	}
	return nil
}

// ValidateMachineID checks an operator-assigned machine identifier.
func ValidateMachineID(machineID string) error {
	machineID = strings.TrimSpace(machineID)
	if machineID == "" {
		return fmt.Errorf("machine_id cannot be empty")
	}
	if len(machineID) > MaxMachineIDLength {
		return fmt.Errorf("machine_id cannot exceed %d characters", MaxMachineIDLength)
	}
	if !machineIDRegex.MatchString(machineID) {
		return fmt.Errorf("machine_id must contain only letters, numbers, dashes and underscores")
	}
	return nil
}

// ValidatePositiveInt checks that value is strictly positive.
func ValidatePositiveInt(value int64, fieldName string) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive", fieldName)
	}
	return nil
}

// ValidateNonNegativeInt checks that value is not negative.
func ValidateNonNegativeInt(value int64, fieldName string) error {
	if value < 0 {
		return fmt.Errorf("%s cannot be negative", fieldName)
	}
	return nil
}
