package rest

import (
	"encoding/json"
	"maps"
	"strings"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/transport"
)

// Response is the parsed answer of an exchange. It is built once by the
// executor and never modified afterwards.
type Response struct {
	statusCode int
	reason     string
	headers    map[string]string
	body       any
	raw        []byte
}

// StatusCode returns the HTTP status, 0 when no connection was made.
func (r *Response) StatusCode() int { return r.statusCode }

// Reason returns the status text, or the transport error text for status 0.
func (r *Response) Reason() string { return r.reason }

// Headers returns a copy of the response headers.
func (r *Response) Headers() map[string]string { return maps.Clone(r.headers) }

// Header returns one response header.
func (r *Response) Header(key string) string {
	tr := transport.Response{Headers: r.headers}
	return tr.Header(key)
}

// Body returns the decoded JSON payload, nil when absent or unparseable.
func (r *Response) Body() any { return r.body }

// Raw returns the undecoded payload.
func (r *Response) Raw() []byte { return r.raw }

// Object returns the body as a JSON object.
func (r *Response) Object() (map[string]any, bool) {
	m, ok := r.body.(map[string]any)
	return m, ok
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

// newResponse decodes a transport response. A payload that cannot be
// decoded yields a nil body and a MALFORMED_BODY error for the log.
func newResponse(tr *transport.Response) (*Response, *errors.AppError) {
	resp := &Response{
		statusCode: tr.StatusCode,
		reason:     tr.Reason,
		headers:    tr.Headers,
		raw:        tr.Body,
	}
	if len(tr.Body) == 0 {
		return resp, nil
	}

	ct := tr.ContentType()
	if !isJSON(ct) {
		return resp, nil
	}
	var body any
	if err := json.Unmarshal(tr.Body, &body); err != nil {
		return resp, errors.MalformedBody(ct, err)
	}
	resp.body = body
	return resp, nil
}

// connectionFailure synthesizes the status-0 response of an exchange that
// never reached the server.
func connectionFailure(reason string) *Response {
	return &Response{reason: reason, headers: map[string]string{}}
}

// isJSON accepts JSON media types, and an absent content type.
func isJSON(ct string) bool {
	return ct == "" || ct == "application/json" || strings.HasSuffix(ct, "+json")
}
