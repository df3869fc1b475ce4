package logger

import (
	"strings"
	"time"
)

// Standard field key constants for structured logging.
const (
	FieldComponent    = "component"
	FieldService      = "service"
	FieldConnectionID = "connection_id"
	FieldMethod       = "method"
	FieldURL          = "url"
	FieldStatusCode   = "status_code"
	FieldReason       = "reason"
	FieldVerdict      = "verdict"
	FieldCode         = "code"
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldOrganization = "organization"
	FieldUsername     = "username"
	FieldOperation    = "operation"
	FieldError        = "error"
	FieldDuration     = "duration_ms"
	FieldHeaders      = "headers"
)

// Redacted replaces secret header values in log output.
const Redacted = "[REDACTED]"

var sensitiveHeaders = map[string]struct{}{
	"authorization":       {},
	"proxy-authorization": {},
	"cookie":              {},
	"set-cookie":          {},
	"x-api-key":           {},
}

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	log.Info("saved", logger.Fields(logger.FieldOperation, "save", logger.FieldStatusCode, 200))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldError:     err.Error(),
	}
}

// DurationFields creates fields for a timed operation.
func DurationFields(op string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldDuration:  d.Milliseconds(),
	}
}

// RedactHeaders returns a copy of headers that is safe to log. Credentials
// never leave the process through a log line.
func RedactHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if IsSensitiveHeader(k) {
			out[k] = Redacted
			continue
		}
		out[k] = v
	}
	return out
}

// IsSensitiveHeader reports whether a header carries credentials.
func IsSensitiveHeader(name string) bool {
	_, ok := sensitiveHeaders[strings.ToLower(name)]
	return ok
}
