package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out", 0)
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}

	err = New(ErrCodeClassification, "conflict", http.StatusConflict)
	if err.Retryable {
		t.Error("CLASSIFICATION_FAILED should not be retryable")
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, err.HTTPStatus)
	}
}

func TestAppError_Diagnostic_CarriesTitleAndDescription(t *testing.T) {
	err := Diagnostic(ErrCodeClassification, 409, "Conflict", "stale revision")
	if err.Title() != "Conflict" {
		t.Errorf("expected title Conflict, got %q", err.Title())
	}
	if err.Description() != "stale revision" {
		t.Errorf("expected description 'stale revision', got %q", err.Description())
	}
	if err.Details[DetailStatusCode] != 409 {
		t.Errorf("expected status_code=409, got %v", err.Details[DetailStatusCode])
	}
	if !strings.Contains(err.Error(), "stale revision") {
		t.Errorf("Error() should contain the description, got %q", err.Error())
	}
}

func TestAppError_PermissionDenied(t *testing.T) {
	err := PermissionDenied(403)
	if err.Code != ErrCodePermissionDenied {
		t.Errorf("expected PERMISSION_DENIED, got %s", err.Code)
	}
	if err.Title() != "Permission denied" {
		t.Errorf("unexpected title %q", err.Title())
	}
	if !IsPermissionDenied(fmt.Errorf("wrapped: %w", err)) {
		t.Error("IsPermissionDenied should see through wrapping")
	}
}

func TestAppError_CriticalServer(t *testing.T) {
	err := CriticalServer()
	if !IsCritical(err) {
		t.Error("expected critical error")
	}
	if err.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", err.HTTPStatus)
	}
	if !strings.HasPrefix(err.Title(), "[CRITICAL]") {
		t.Errorf("expected [CRITICAL] title, got %q", err.Title())
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Timeout("GET /me").WithCause(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set via WithCause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := ConnectionFailed("https://api.example.com").WithDetails(map[string]any{
		"extra": "info",
	})
	if err.Details["extra"] != "info" {
		t.Errorf("expected extra=info in details")
	}
	if err.Details["target"] != "https://api.example.com" {
		t.Error("expected original details to be preserved")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details == nil {
		t.Fatal("expected Details map to be initialized")
	}
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestAppError_TitleWithoutDetails(t *testing.T) {
	err := Cancelled()
	if err.Title() != "" || err.Description() != "" {
		t.Error("expected empty title and description")
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		retryable bool
	}{
		{"Timeout", Timeout("op"), ErrCodeTimeout, true},
		{"ConnectionFailed", ConnectionFailed("host"), ErrCodeConnectionFailed, true},
		{"Cancelled", Cancelled(), ErrCodeCancelled, false},
		{"MalformedBody", MalformedBody("application/json", nil), ErrCodeMalformedBody, false},
		{"NoSession", NoSession(), ErrCodeNoSession, false},
		{"RotationInProgress", RotationInProgress(), ErrCodeRotationInProgress, false},
		{"InvalidCredential", InvalidCredential("empty"), ErrCodeInvalidCredential, false},
		{"InvalidInput", InvalidInput("method", "unsupported"), ErrCodeInvalidInput, false},
		{"Validation", Validation("bad"), ErrCodeInvalidInput, false},
		{"Internal", Internal(nil), ErrCodeInternal, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestIsClassificationCode(t *testing.T) {
	yes := []ErrorCode{ErrCodeClassification, ErrCodePermissionDenied, ErrCodeCriticalServer, ErrCodeUnexpectedStatus, ErrCodeConnectionFailed}
	for _, code := range yes {
		if !IsClassificationCode(code) {
			t.Errorf("expected %s to be a classification code", code)
		}
	}
	no := []ErrorCode{ErrCodeTimeout, ErrCodeCancelled, ErrCodeMalformedBody, ErrCodeNoSession}
	for _, code := range no {
		if IsClassificationCode(code) {
			t.Errorf("expected %s to NOT be a classification code", code)
		}
	}
}

func TestCodeOf(t *testing.T) {
	if CodeOf(nil) != "" {
		t.Error("CodeOf(nil) should be empty")
	}
	if CodeOf(fmt.Errorf("plain")) != "" {
		t.Error("CodeOf(plain) should be empty")
	}
	if got := CodeOf(fmt.Errorf("wrap: %w", Timeout("x"))); got != ErrCodeTimeout {
		t.Errorf("expected TIMEOUT, got %s", got)
	}
	if !IsTimeout(Timeout("x")) || !IsCancelled(Cancelled()) {
		t.Error("predicate helpers should match their constructors")
	}
}

func TestAppError_AsAppError(t *testing.T) {
	appErr := Internal(nil)
	wrapped := fmt.Errorf("wrap: %w", appErr)

	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed for wrapped AppError")
	}
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}

	if _, ok := AsAppError(fmt.Errorf("not an app error")); ok {
		t.Error("expected AsAppError to return false for non-AppError")
	}
	if !IsAppError(wrapped) {
		t.Error("expected IsAppError to return true for wrapped AppError")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}

	orig := NoSession()
	if Wrap(orig) != orig {
		t.Error("Wrap should return the original AppError unchanged")
	}

	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if got.Cause != plain {
		t.Error("expected cause to be the original error")
	}
}
