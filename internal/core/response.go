package core

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/artpar/curl2json/internal/tree"
	"github.com/google/uuid"
)

// Status represents an HTTP status code and text.
type Status struct {
	code int
	text string
}

// NewStatus creates a new status. An empty text falls back to the standard
// reason phrase for code.
func NewStatus(code int, text string) *Status {
	if text == "" {
		text = http.StatusText(code)
	}
	return &Status{
		code: code,
		text: text,
	}
}

func (s *Status) Code() int    { return s.code }
func (s *Status) Text() string { return s.text }

func (s *Status) IsSuccess() bool {
	return s.code >= 200 && s.code < 300
}

func (s *Status) IsError() bool {
	return s.code >= 400
}

func (s *Status) String() string {
	if s.text == "" {
		return http.StatusText(s.code)
	}
	return s.text
}

// Timing holds request timing.
type Timing struct {
	Start time.Time
	End   time.Time
	Total time.Duration
}

// Response is the envelope returned by an execution. It is built once by
// NewResponse and only read afterwards.
type Response struct {
	id          string
	requestID   string
	status      *Status
	headers     map[string]string
	body        tree.Value
	raw         []byte
	contentType string
	timing      Timing
}

// ResponseOption configures a Response under construction.
type ResponseOption func(*Response)

// WithRequestID links the response to the request it answers.
func WithRequestID(id string) ResponseOption {
	return func(r *Response) {
		r.requestID = id
	}
}

// WithHeaders sets the flat header map. The map is copied.
func WithHeaders(h map[string]string) ResponseOption {
	return func(r *Response) {
		r.headers = make(map[string]string, len(h))
		for k, v := range h {
			r.headers[k] = v
		}
	}
}

// WithBody sets the decoded body.
func WithBody(v tree.Value) ResponseOption {
	return func(r *Response) {
		r.body = v
	}
}

// WithRaw keeps the undecoded payload and its content type.
func WithRaw(raw []byte, contentType string) ResponseOption {
	return func(r *Response) {
		r.raw = append([]byte(nil), raw...)
		r.contentType = contentType
	}
}

// WithTiming sets the timing info.
func WithTiming(t Timing) ResponseOption {
	return func(r *Response) {
		r.timing = t
	}
}

// NewResponse builds a response envelope.
func NewResponse(status *Status, opts ...ResponseOption) *Response {
	r := &Response{
		id:      uuid.New().String(),
		status:  status,
		headers: make(map[string]string),
		body:    tree.Null{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Response) ID() string {
	return r.id
}

func (r *Response) RequestID() string {
	return r.requestID
}

func (r *Response) Status() *Status {
	return r.status
}

// Headers returns a copy of the response headers.
func (r *Response) Headers() map[string]string {
	result := make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		result[k] = v
	}
	return result
}

// HeaderNames returns header names in sorted order.
func (r *Response) HeaderNames() []string {
	names := make([]string, 0, len(r.headers))
	for k := range r.headers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Header finds a header by case-insensitive name.
func (r *Response) Header(name string) string {
	if v, ok := r.headers[name]; ok {
		return v
	}
	for k, v := range r.headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Body returns the decoded body.
func (r *Response) Body() tree.Value {
	return r.body
}

// Raw returns a copy of the undecoded payload.
func (r *Response) Raw() []byte {
	return append([]byte(nil), r.raw...)
}

func (r *Response) Size() int64 {
	return int64(len(r.raw))
}

func (r *Response) ContentType() string {
	return r.contentType
}

func (r *Response) Timing() Timing {
	return r.timing
}
