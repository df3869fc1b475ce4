package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Transport errors
const (
	// ErrCodeTimeout indicates the transport did not answer within the configured duration.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeConnectionFailed indicates no HTTP status was obtained (status 0).
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeCancelled indicates the exchange was cancelled before completion.
	ErrCodeCancelled ErrorCode = "CANCELLED"
)

// Classification errors
const (
	// ErrCodeClassification indicates a status code classified as failure.
	ErrCodeClassification ErrorCode = "CLASSIFICATION_FAILED"
	// ErrCodePermissionDenied indicates a 401/403 on a state-confirming call.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	// ErrCodeCriticalServer indicates a 500 answer. Always escalated.
	ErrCodeCriticalServer ErrorCode = "CRITICAL_SERVER_ERROR"
	// ErrCodeUnexpectedStatus indicates a status code outside the known table.
	ErrCodeUnexpectedStatus ErrorCode = "UNEXPECTED_STATUS"
	// ErrCodeMalformedBody indicates a response payload that could not be parsed.
	ErrCodeMalformedBody ErrorCode = "MALFORMED_BODY"
)

// Session errors
const (
	// ErrCodeNoSession indicates an authenticated call without an active session.
	ErrCodeNoSession ErrorCode = "NO_ACTIVE_SESSION"
	// ErrCodeRotationInProgress indicates a second concurrent credential rotation.
	ErrCodeRotationInProgress ErrorCode = "ROTATION_IN_PROGRESS"
	// ErrCodeInvalidCredential indicates an empty or untagged credential.
	ErrCodeInvalidCredential ErrorCode = "INVALID_CREDENTIAL"
)

// Input errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInternal indicates an internal SDK error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:          true,
	ErrCodeConnectionFailed: true,
	ErrCodeInternal:         false,
}

// IsRetryableCode reports whether a caller may reasonably resubmit after an
// error with this code. The SDK itself never retries.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// IsClassificationCode reports whether the code comes from status classification.
func IsClassificationCode(code ErrorCode) bool {
	switch code {
	case ErrCodeClassification, ErrCodePermissionDenied, ErrCodeCriticalServer,
		ErrCodeUnexpectedStatus, ErrCodeConnectionFailed:
		return true
	}
	return false
}
