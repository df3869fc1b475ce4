package transport

import (
	"maps"
	"net/http"
	"strings"
	"time"
)

// Request is a fully-resolved outbound request.
type Request struct {
	// Method is the HTTP method.
	Method string
	// URL is the absolute target.
	URL string
	// Headers are request-specific headers, merged over the transport defaults.
	Headers map[string]string
	// Body is the encoded payload; nil sends no body.
	Body []byte
	// Timeout overrides the transport timeout when positive.
	Timeout time.Duration
}

// Clone returns a deep copy of r.
func (r *Request) Clone() *Request {
	c := *r
	c.Headers = maps.Clone(r.Headers)
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	return &c
}

// SetHeader sets a header, allocating the map on first use.
func (r *Request) SetHeader(key, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
}

// Response is the raw answer of the server.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Reason is the status text ("Not Found").
	Reason string
	// Headers are the response headers, first value per key.
	Headers map[string]string
	// Body is the raw response body.
	Body []byte
}

// Header returns a header value with case-insensitive lookup.
func (r *Response) Header(key string) string {
	if v, ok := r.Headers[key]; ok {
		return v
	}
	canonical := http.CanonicalHeaderKey(key)
	if v, ok := r.Headers[canonical]; ok {
		return v
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// ContentType returns the media type without parameters, lower-cased.
func (r *Response) ContentType() string {
	ct := r.Header("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// reasonFromStatus extracts the reason phrase from "404 Not Found".
func reasonFromStatus(status string, code int) string {
	if _, reason, ok := strings.Cut(status, " "); ok && reason != "" {
		return reason
	}
	return http.StatusText(code)
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
