package errors

import (
	"fmt"
	"time"
)

// ErrorCode identifies a failure kind carried by AppError.
type ErrorCode string

const (
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"

	ErrCodeUserNotFound    ErrorCode = "USER_NOT_FOUND"
	ErrCodeMachineNotFound ErrorCode = "MACHINE_NOT_FOUND"
	ErrCodeInvalidMobile   ErrorCode = "INVALID_MOBILE"
	ErrCodeInvalidQuantity ErrorCode = "INVALID_QUANTITY"

	// ErrCodeCapacityExceeded rejects a deposit that does not fit into the
	// machine. The error always carries an "available_space" detail so the
	// machine can offer a partial load instead.
	ErrCodeCapacityExceeded ErrorCode = "CAPACITY_EXCEEDED"

	ErrCodeCredentialFailure ErrorCode = "CREDENTIAL_FAILURE"
	ErrCodeOTPNotFound       ErrorCode = "OTP_NOT_FOUND"
	ErrCodeOTPExpired        ErrorCode = "OTP_EXPIRED"
	ErrCodeOTPAlreadyUsed    ErrorCode = "OTP_ALREADY_USED"
	ErrCodeOTPMismatch       ErrorCode = "OTP_MISMATCH"
	ErrCodeOTPNotVerified    ErrorCode = "OTP_NOT_VERIFIED"
	ErrCodeRateLimit         ErrorCode = "RATE_LIMIT_EXCEEDED"

	ErrCodeDatabaseError     ErrorCode = "DATABASE_ERROR"
	ErrCodeTransactionFailed ErrorCode = "TRANSACTION_FAILED"
	ErrCodeSessionError      ErrorCode = "SESSION_ERROR"
)

// AppError is the typed application error passed between services, handlers
// and the error middleware.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether the error means an absent record.
func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound ||
		e.Code == ErrCodeUserNotFound ||
		e.Code == ErrCodeMachineNotFound ||
		e.Code == ErrCodeOTPNotFound
}

// IsValidation reports whether the caller must correct its input.
func (e *AppError) IsValidation() bool {
	return e.Code == ErrCodeValidation ||
		e.Code == ErrCodeInvalidMobile ||
		e.Code == ErrCodeInvalidQuantity ||
		e.Code == ErrCodeBadRequest
}

// IsUnauthorized reports whether the request lacked valid credentials.
func (e *AppError) IsUnauthorized() bool {
	return e.Code == ErrCodeUnauthorized ||
		e.Code == ErrCodeForbidden ||
		e.Code == ErrCodeCredentialFailure
}

// IsInternal reports whether the failure is on our side, not the caller's.
func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal ||
		e.Code == ErrCodeDatabaseError ||
		e.Code == ErrCodeTransactionFailed ||
		e.Code == ErrCodeSessionError
}

// WithDetail attaches structured data to the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithRequestID tags the error with the originating request.
func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// New creates an AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap creates an AppError around an existing error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Constructors for the failure kinds used across features.

func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("validation failed for '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewInvalidMobileError(mobile string) *AppError {
	return New(ErrCodeInvalidMobile, "mobile number must be 8-15 digits").
		WithDetail("mobile", mobile)
}

func NewUserNotFoundError(userID string) *AppError {
	return New(ErrCodeUserNotFound, "user not found").
		WithDetail("user_id", userID)
}

func NewMachineNotFoundError(machineID string) *AppError {
	return New(ErrCodeMachineNotFound, "machine not found").
		WithDetail("machine_id", machineID)
}

func NewInvalidQuantityError(count int64) *AppError {
	return New(ErrCodeInvalidQuantity, "bottle_count must be at least 1").
		WithDetail("bottle_count", count)
}

// NewCapacityExceededError reports the remaining space so the machine can
// accept a partial load and resubmit.
func NewCapacityExceededError(availableSpace, requested int64) *AppError {
	return New(ErrCodeCapacityExceeded,
		fmt.Sprintf("machine is full, only %d bottles can be accepted", availableSpace)).
		WithDetail("available_space", availableSpace).
		WithDetail("requested", requested)
}

func NewCredentialError() *AppError {
	return New(ErrCodeCredentialFailure, "invalid credentials")
}

func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, "unauthorized: "+reason)
}

func NewConflictError(resource, reason string) *AppError {
	return New(ErrCodeConflict, fmt.Sprintf("conflict with %s: %s", resource, reason)).
		WithDetail("resource", resource).
		WithDetail("reason", reason)
}

func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, "database operation failed: "+operation).
		WithDetail("operation", operation)
}

func NewRateLimitError(window time.Duration) *AppError {
	return New(ErrCodeRateLimit, "too many requests, try again later").
		WithDetail("retry_after", window.String())
}

// AsAppError extracts an AppError from err, if it is one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}
