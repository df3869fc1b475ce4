package rest

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/validation"
)

// Request describes one logical exchange.
type Request struct {
	// Method is one of GET, POST, PUT, DELETE.
	Method string
	// Path is joined to the session base URL.
	Path string
	// Headers are sent as-is, under the session headers.
	Headers map[string]string
	// Body is JSON encoded on dispatch. []byte and json.RawMessage are sent untouched.
	Body any
	// Timeout overrides the transport default when positive.
	Timeout time.Duration
}

// NewRequest creates a request.
func NewRequest(method, path string, body any) *Request {
	return &Request{Method: strings.ToUpper(method), Path: path, Body: body}
}

// SetHeader sets a request header.
func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

// Header returns a request header.
func (r *Request) Header(key string) string {
	return r.Headers[key]
}

// Clone returns a copy that shares nothing mutable with r except Body.
func (r *Request) Clone() *Request {
	c := *r
	c.Headers = maps.Clone(r.Headers)
	return &c
}

// Validate rejects methods the executor does not dispatch.
func (r *Request) Validate() error {
	if !slices.Contains(validation.Methods, r.Method) {
		return errors.InvalidInput("method", fmt.Sprintf("unsupported method %q, expected one of %s",
			r.Method, strings.Join(validation.Methods, ", ")))
	}
	return nil
}

func (r *Request) encodeBody() ([]byte, error) {
	switch v := r.Body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, errors.InvalidInput("body", "cannot encode request body").WithCause(err)
		}
		return data, nil
	}
}
