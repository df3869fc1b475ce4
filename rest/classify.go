package rest

import (
	"fmt"
	"net/http"

	"github.com/kbukum/restkit/errors"
)

// Verdict is the terminal outcome of an exchange.
type Verdict string

const (
	// VerdictPending means the exchange has not completed.
	VerdictPending Verdict = ""
	// VerdictSuccess means the status classified as success.
	VerdictSuccess Verdict = "success"
	// VerdictFailure means the status classified as failure, or no status was obtained.
	VerdictFailure Verdict = "failure"
	// VerdictTimeout means the transport deadline passed.
	VerdictTimeout Verdict = "timeout"
	// VerdictCancelled means the outcome was discarded.
	VerdictCancelled Verdict = "cancelled"
	// VerdictRejected means the request never left the process.
	VerdictRejected Verdict = "rejected"
)

// String returns the verdict name.
func (v Verdict) String() string {
	if v == VerdictPending {
		return "pending"
	}
	return string(v)
}

// Classification is the result of Classify.
type Classification struct {
	Verdict Verdict
	// Tolerated marks a non-2xx status accepted as success on a read-style call.
	Tolerated bool
	// Err carries the diagnostic of a failure.
	Err *errors.AppError
}

// Success reports a success verdict.
func (c Classification) Success() bool { return c.Verdict == VerdictSuccess }

// tolerated lists the codes that read-style calls accept as success.
var tolerated = map[int]bool{
	http.StatusBadRequest:         true,
	http.StatusUnauthorized:       true,
	http.StatusForbidden:          true,
	http.StatusNotFound:           true,
	http.StatusMethodNotAllowed:   true,
	http.StatusConflict:           true,
	http.StatusPreconditionFailed: true,
	http.StatusServiceUnavailable: true,
}

// Classify maps a status code onto success or failure. body is the decoded
// payload, used for diagnostics only.
func Classify(status int, body any, shouldPost bool) Classification {
	switch status {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return Classification{Verdict: VerdictSuccess}

	case http.StatusMultipleChoices:
		return failure(diagnose(errors.ErrCodeClassification, status, body))

	case http.StatusUnauthorized, http.StatusForbidden:
		if !shouldPost {
			return Classification{Verdict: VerdictSuccess, Tolerated: true}
		}
		return failure(errors.PermissionDenied(status))

	case http.StatusInternalServerError:
		return failure(errors.CriticalServer())

	case 0:
		return failure(errors.Diagnostic(errors.ErrCodeConnectionFailed, 0,
			"Connection failed", "No response was received from the server."))
	}

	if tolerated[status] {
		if !shouldPost {
			return Classification{Verdict: VerdictSuccess, Tolerated: true}
		}
		return failure(diagnose(errors.ErrCodeClassification, status, body))
	}

	return failure(errors.Diagnostic(errors.ErrCodeUnexpectedStatus, status,
		"Unexpected status", fmt.Sprintf("The server answered with unexpected status %d.", status)))
}

func failure(err *errors.AppError) Classification {
	return Classification{Verdict: VerdictFailure, Err: err}
}

// diagnose builds a diagnostic from the first entry of the body error list,
// or a generic one naming the status.
func diagnose(code errors.ErrorCode, status int, body any) *errors.AppError {
	if title, description, ok := ExtractDiagnostic(body); ok {
		return errors.Diagnostic(code, status, title, description)
	}
	title := http.StatusText(status)
	if title == "" {
		title = fmt.Sprintf("HTTP %d", status)
	}
	return errors.Diagnostic(code, status, title, fmt.Sprintf("The server answered %d %s.", status, title))
}

// ExtractDiagnostic reads body.errors[0].descriptions[0].{title,description}.
func ExtractDiagnostic(body any) (title, description string, ok bool) {
	obj, isObj := body.(map[string]any)
	if !isObj {
		return "", "", false
	}
	first, isObj := firstObject(obj["errors"])
	if !isObj {
		return "", "", false
	}
	desc, isObj := firstObject(first["descriptions"])
	if !isObj {
		return "", "", false
	}
	title, _ = desc["title"].(string)
	description, _ = desc["description"].(string)
	if title == "" && description == "" {
		return "", "", false
	}
	return title, description, true
}

func firstObject(v any) (map[string]any, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	m, ok := list[0].(map[string]any)
	return m, ok
}
