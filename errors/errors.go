package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Detail keys shared by the classification diagnostics.
const (
	DetailTitle       = "title"
	DetailDescription = "description"
	DetailStatusCode  = "status_code"
)

// AppError is the unified SDK error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the caller may resubmit.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the status code that produced the error, 0 when none.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Title returns the diagnostic title, if any.
func (e *AppError) Title() string {
	s, _ := e.Details[DetailTitle].(string)
	return s
}

// Description returns the diagnostic description, if any.
func (e *AppError) Description() string {
	s, _ := e.Details[DetailDescription].(string)
	return s
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Constructors ---

// Timeout creates an error for an exchange that did not complete in time.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long to complete.",
		Retryable: true,
		Details:   map[string]any{"operation": operation},
	}
}

// ConnectionFailed creates an error for an exchange that produced no status code.
func ConnectionFailed(target string) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("Unable to connect to %s.", target),
		Retryable: true,
		Details:   map[string]any{"target": target, DetailStatusCode: 0},
	}
}

// Cancelled creates an error for a discarded exchange.
func Cancelled() *AppError {
	return &AppError{Code: ErrCodeCancelled, Message: "The exchange was cancelled."}
}

// Diagnostic creates a classification failure carrying a title and description.
func Diagnostic(code ErrorCode, status int, title, description string) *AppError {
	return &AppError{
		Code:       code,
		Message:    fmt.Sprintf("%s: %s", title, description),
		HTTPStatus: status,
		Retryable:  IsRetryableCode(code),
		Details: map[string]any{
			DetailTitle:       title,
			DetailDescription: description,
			DetailStatusCode:  status,
		},
	}
}

// PermissionDenied creates the diagnostic for a 401/403 on a state-confirming call.
func PermissionDenied(status int) *AppError {
	return Diagnostic(ErrCodePermissionDenied, status,
		"Permission denied", "You are not allowed to access this resource.")
}

// CriticalServer creates the diagnostic for a 500 answer.
func CriticalServer() *AppError {
	return Diagnostic(ErrCodeCriticalServer, http.StatusInternalServerError,
		"[CRITICAL] Internal Server Error", "Please check the log and report this error to the server team")
}

// MalformedBody records a payload that could not be decoded.
func MalformedBody(contentType string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeMalformedBody, Message: "The response body could not be decoded.",
		Details: map[string]any{"content_type": contentType},
		Cause:   cause,
	}
}

// NoSession creates an error for an authenticated call without an active session.
func NoSession() *AppError {
	return &AppError{Code: ErrCodeNoSession, Message: "No active session. Log in first."}
}

// RotationInProgress creates an error for a concurrent credential rotation.
func RotationInProgress() *AppError {
	return &AppError{Code: ErrCodeRotationInProgress, Message: "A credential rotation is already in flight for this session."}
}

// InvalidCredential creates an error for an unusable credential.
func InvalidCredential(reason string) *AppError {
	return &AppError{Code: ErrCodeInvalidCredential, Message: reason}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// Internal creates a new AppError for an internal SDK error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Cause: cause,
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// IsTimeout reports whether err is a transport timeout.
func IsTimeout(err error) bool { return CodeOf(err) == ErrCodeTimeout }

// IsCritical reports whether err is a critical server error.
func IsCritical(err error) bool { return CodeOf(err) == ErrCodeCriticalServer }

// IsCancelled reports whether err is a discarded exchange.
func IsCancelled(err error) bool { return CodeOf(err) == ErrCodeCancelled }

// IsPermissionDenied reports whether err is a permission diagnostic.
func IsPermissionDenied(err error) bool { return CodeOf(err) == ErrCodePermissionDenied }

// Wrap converts any error into an AppError, keeping existing AppErrors intact.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}
