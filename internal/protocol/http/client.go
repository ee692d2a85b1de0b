package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/artpar/curl2json/internal/core"
	"golang.org/x/net/publicsuffix"
)

// DefaultTimeout bounds every request unless WithTimeout says otherwise.
const DefaultTimeout = 30 * time.Second

// DefaultContentType is sent with a body when the caller set no Content-Type.
const DefaultContentType = "application/json"

// ErrBodyTooLarge is wrapped in a TransportError when a response exceeds the
// configured maximum size.
var ErrBodyTooLarge = errors.New("response body exceeds maximum size")

// Client executes request descriptors over HTTP.
type Client struct {
	httpClient *http.Client
	config     Config
}

// Config holds HTTP client configuration.
type Config struct {
	Timeout            time.Duration
	FollowRedirect     bool
	InsecureSkipVerify bool
	MaxBodySize        int64
}

// Option is a function that configures the Client.
type Option func(*Client)

// NewClient creates a new HTTP client with the given options.
func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		config: Config{
			Timeout:        DefaultTimeout,
			FollowRedirect: true,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.config.InsecureSkipVerify {
		client.httpClient.Transport = insecureTransport(client.httpClient.Transport)
	}

	return client
}

// WithTimeout sets the request timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.config.Timeout = timeout
		c.httpClient.Timeout = timeout
	}
}

// WithTransport sets a custom round tripper.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = transport
	}
}

// WithNoRedirects disables automatic redirect following.
func WithNoRedirects() Option {
	return func(c *Client) {
		c.config.FollowRedirect = false
		c.httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify() Option {
	return func(c *Client) {
		c.config.InsecureSkipVerify = true
	}
}

// WithCookieJar keeps cookies set by responses for the lifetime of the
// client, so cookies issued during a redirect chain are replayed.
func WithCookieJar() Option {
	return func(c *Client) {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err == nil {
			c.httpClient.Jar = jar
		}
	}
}

// WithJar uses jar for cookies instead of a per-client jar.
func WithJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.httpClient.Jar = jar
	}
}

// WithMaxBodySize limits how many response bytes are read. Zero or less
// means no limit.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		c.config.MaxBodySize = n
	}
}

func insecureTransport(rt http.RoundTripper) http.RoundTripper {
	var t *http.Transport
	switch base := rt.(type) {
	case nil:
		t = http.DefaultTransport.(*http.Transport).Clone()
	case *http.Transport:
		t = base.Clone()
	default:
		return rt
	}
	if t.TLSClientConfig == nil {
		t.TLSClientConfig = &tls.Config{}
	}
	t.TLSClientConfig.InsecureSkipVerify = true
	return t
}

// Protocol returns the protocol identifier.
func (c *Client) Protocol() string {
	return "http"
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.config
}

// Execute sends req and decodes the response body.
//
// Transport failures are returned as *core.TransportError. A body whose
// Content-Type declares JSON but does not parse is a *core.DecodeError. Any
// other body that is not JSON is wrapped by RawWrapper.
func (c *Client) Execute(ctx context.Context, req *core.Request) (*core.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()

	httpReq, err := c.toHTTPRequest(ctx, req)
	if err != nil {
		return nil, c.transportError(req, err)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportError(req, err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := c.readBody(httpResp.Body)
	if err != nil {
		return nil, c.transportError(req, err)
	}

	endTime := time.Now()

	return c.fromHTTPResponse(req, httpResp, bodyBytes, startTime, endTime)
}

func (c *Client) transportError(req *core.Request, err error) error {
	return &core.TransportError{
		Method: req.Method(),
		URL:    req.URL(),
		Err:    err,
	}
}

func (c *Client) readBody(r io.Reader) ([]byte, error) {
	if c.config.MaxBodySize <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, c.config.MaxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > c.config.MaxBodySize {
		return nil, fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, c.config.MaxBodySize)
	}
	return data, nil
}

// toHTTPRequest converts a core.Request to an http.Request.
func (c *Client) toHTTPRequest(ctx context.Context, req *core.Request) (*http.Request, error) {
	var bodyReader io.Reader
	body, hasBody := req.Body()
	attachBody := hasBody && core.MethodAllowsBody(req.Method())
	if attachBody {
		bodyReader = strings.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method(), req.URL(), bodyReader)
	if err != nil {
		return nil, err
	}

	headers := req.Headers()
	for _, name := range req.HeaderNames() {
		value := headers[name]
		if strings.EqualFold(name, "Host") {
			httpReq.Host = value
			continue
		}
		// Assigned directly so the name goes out as the user typed it.
		httpReq.Header[name] = []string{value}
	}

	if attachBody {
		if _, ok := req.LookupHeader("Content-Type"); !ok {
			httpReq.Header.Set("Content-Type", DefaultContentType)
		}
	}

	return httpReq, nil
}

// fromHTTPResponse converts an http.Response to a core.Response.
func (c *Client) fromHTTPResponse(req *core.Request, httpResp *http.Response, bodyBytes []byte, startTime, endTime time.Time) (*core.Response, error) {
	status := core.NewStatus(httpResp.StatusCode, reasonPhrase(httpResp))

	headers := make(map[string]string, len(httpResp.Header))
	for key, values := range httpResp.Header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}

	contentType := httpResp.Header.Get("Content-Type")

	timing := core.Timing{
		Start: startTime,
		End:   endTime,
		Total: endTime.Sub(startTime),
	}

	opts := []core.ResponseOption{
		core.WithRequestID(req.ID()),
		core.WithHeaders(headers),
		core.WithRaw(bodyBytes, contentType),
		core.WithTiming(timing),
	}

	// Bodiless responses keep the default null body.
	if !hasNoContent(req.Method(), httpResp.StatusCode) {
		decoded, err := DecodeBody(contentType, bodyBytes)
		if err != nil {
			return nil, err
		}
		opts = append(opts, core.WithBody(decoded))
	}

	return core.NewResponse(status, opts...), nil
}

// reasonPhrase strips the numeric prefix from resp.Status.
func reasonPhrase(resp *http.Response) string {
	prefix := fmt.Sprintf("%d ", resp.StatusCode)
	return strings.TrimPrefix(resp.Status, prefix)
}

// hasNoContent reports responses that carry no body by definition.
func hasNoContent(method string, code int) bool {
	return method == core.MethodHead ||
		code == http.StatusNoContent ||
		code == http.StatusNotModified
}
