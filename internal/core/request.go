package core

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// HTTP methods understood by the interpreter.
const (
	MethodGet     = "GET"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodPatch   = "PATCH"
	MethodDelete  = "DELETE"
	MethodHead    = "HEAD"
	MethodOptions = "OPTIONS"
	MethodTrace   = "TRACE"
	MethodConnect = "CONNECT"
)

var knownMethods = map[string]bool{
	MethodGet:     true,
	MethodPost:    true,
	MethodPut:     true,
	MethodPatch:   true,
	MethodDelete:  true,
	MethodHead:    true,
	MethodOptions: true,
	MethodTrace:   true,
	MethodConnect: true,
}

// IsKnownMethod reports whether method is one of the standard HTTP verbs.
func IsKnownMethod(method string) bool {
	return knownMethods[method]
}

// MethodAllowsBody reports whether a payload is sent for the given method.
func MethodAllowsBody(method string) bool {
	switch method {
	case MethodPost, MethodPut, MethodPatch:
		return true
	}
	return false
}

// Request is the structured descriptor built from a curl command.
type Request struct {
	id      string
	method  string
	url     string
	headers map[string]string
	body    string
	hasBody bool
}

// NewRequest creates an empty GET request. The URL is filled in by the
// interpreter; Validate must pass before the request is executed.
func NewRequest() *Request {
	return &Request{
		id:      uuid.New().String(),
		method:  MethodGet,
		headers: make(map[string]string),
	}
}

func (r *Request) ID() string {
	return r.id
}

func (r *Request) Method() string {
	return r.method
}

func (r *Request) URL() string {
	return r.url
}

// Headers returns a copy of the request headers.
func (r *Request) Headers() map[string]string {
	result := make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		result[k] = v
	}
	return result
}

// HeaderNames returns header names in sorted order.
func (r *Request) HeaderNames() []string {
	names := make([]string, 0, len(r.headers))
	for k := range r.headers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Header returns the value stored under exactly name.
func (r *Request) Header(name string) (string, bool) {
	v, ok := r.headers[name]
	return v, ok
}

// LookupHeader finds a header by case-insensitive name.
func (r *Request) LookupHeader(name string) (string, bool) {
	if v, ok := r.headers[name]; ok {
		return v, true
	}
	for k, v := range r.headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// Body returns the payload and whether one was supplied.
func (r *Request) Body() (string, bool) {
	return r.body, r.hasBody
}

func (r *Request) HasBody() bool {
	return r.hasBody
}

// SetMethod stores the method upper-cased. An empty method resets to GET.
func (r *Request) SetMethod(method string) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = MethodGet
	}
	r.method = method
}

func (r *Request) SetURL(url string) {
	r.url = url
}

// SetHeader stores a header; the last write for a name wins. Empty names are
// dropped.
func (r *Request) SetHeader(name, value string) {
	if name == "" {
		return
	}
	r.headers[name] = value
}

// SetBody attaches a payload. An empty payload leaves the request without one.
func (r *Request) SetBody(body string) {
	if body == "" {
		return
	}
	r.body = body
	r.hasBody = true
}

func (r *Request) Clone() *Request {
	clone := &Request{
		id:      uuid.New().String(),
		method:  r.method,
		url:     r.url,
		headers: r.Headers(),
		body:    r.body,
		hasBody: r.hasBody,
	}
	return clone
}

func (r *Request) Validate() error {
	if r.url == "" {
		return ErrMissingURL
	}
	return nil
}
