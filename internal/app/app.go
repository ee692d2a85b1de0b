package app

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/artpar/curl2json/internal/core"
	"github.com/artpar/curl2json/internal/curl"
)

// Hook names.
const (
	HookPreRequest   = "pre_request"
	HookPostResponse = "post_response"
)

// Executor is the interface for protocol adapters.
type Executor interface {
	Execute(ctx context.Context, req *core.Request) (*core.Response, error)
	Protocol() string
}

// HookHandler is a function that handles a hook event. Pre-request handlers
// receive and return a *core.Request, post-response handlers a
// *core.Response.
type HookHandler func(ctx context.Context, data any) (any, error)

// Config holds application configuration.
type Config struct {
	// DefaultHeaders are added to every parsed request that does not already
	// carry a header of the same name, compared case-insensitively.
	DefaultHeaders map[string]string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DefaultHeaders: map[string]string{},
	}
}

// Result is the outcome of a full pipeline run.
type Result struct {
	Request  *core.Request
	Response *core.Response
}

// App is the main application container with dependency injection.
type App struct {
	config    Config
	protocols map[string]Executor
	hooks     map[string][]HookHandler
}

// Option is a function that configures the App.
type Option func(*App)

// New creates a new App with the given options.
func New(opts ...Option) *App {
	app := &App{
		config:    DefaultConfig(),
		protocols: make(map[string]Executor),
		hooks:     make(map[string][]HookHandler),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// WithProtocol registers a protocol adapter.
func WithProtocol(name string, executor Executor) Option {
	return func(a *App) {
		a.protocols[name] = executor
	}
}

// WithConfig sets the application configuration.
func WithConfig(cfg Config) Option {
	return func(a *App) {
		a.config = cfg
	}
}

// WithHook registers a hook handler at construction time.
func WithHook(hook string, handler HookHandler) Option {
	return func(a *App) {
		a.RegisterHook(hook, handler)
	}
}

// Config returns the application configuration.
func (a *App) Config() Config {
	return a.config
}

// GetProtocol returns the executor for the given protocol.
func (a *App) GetProtocol(name string) (Executor, bool) {
	e, ok := a.protocols[name]
	return e, ok
}

// ListProtocols returns all registered protocol names, sorted.
func (a *App) ListProtocols() []string {
	protocols := make([]string, 0, len(a.protocols))
	for name := range a.protocols {
		protocols = append(protocols, name)
	}
	sort.Strings(protocols)
	return protocols
}

// Parse turns a curl command into a request and applies default headers.
func (a *App) Parse(input string) (*core.Request, error) {
	req, err := curl.Parse(input)
	if err != nil {
		return nil, err
	}
	a.applyDefaultHeaders(req)
	return req, nil
}

func (a *App) applyDefaultHeaders(req *core.Request) {
	names := make([]string, 0, len(a.config.DefaultHeaders))
	for name := range a.config.DefaultHeaders {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, ok := req.LookupHeader(name); ok {
			continue
		}
		req.SetHeader(name, a.config.DefaultHeaders[name])
	}
}

// Execute runs pre-request hooks, sends the request with the adapter for its
// URL scheme and runs post-response hooks.
func (a *App) Execute(ctx context.Context, req *core.Request) (*Result, error) {
	out, err := a.ExecuteHooks(ctx, HookPreRequest, req)
	if err != nil {
		return nil, fmt.Errorf("%s hook: %w", HookPreRequest, err)
	}
	req, ok := out.(*core.Request)
	if !ok || req == nil {
		return nil, fmt.Errorf("%s hook returned %T, want *core.Request", HookPreRequest, out)
	}

	protocol := ProtocolFor(req.URL())
	executor, ok := a.protocols[protocol]
	if !ok {
		return nil, &core.TransportError{
			Method: req.Method(),
			URL:    req.URL(),
			Err:    fmt.Errorf("unsupported protocol scheme %q", protocol),
		}
	}

	resp, err := executor.Execute(ctx, req)
	if err != nil {
		return nil, err
	}

	out, err = a.ExecuteHooks(ctx, HookPostResponse, resp)
	if err != nil {
		return nil, fmt.Errorf("%s hook: %w", HookPostResponse, err)
	}
	resp, ok = out.(*core.Response)
	if !ok || resp == nil {
		return nil, fmt.Errorf("%s hook returned %T, want *core.Response", HookPostResponse, out)
	}

	return &Result{Request: req, Response: resp}, nil
}

// Run parses input and executes the resulting request.
func (a *App) Run(ctx context.Context, input string) (*Result, error) {
	req, err := a.Parse(input)
	if err != nil {
		return nil, err
	}
	return a.Execute(ctx, req)
}

// ProtocolFor maps a URL to the name of the adapter that serves it. URLs
// without a recognised scheme go to http, whose transport reports the
// problem.
func ProtocolFor(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return "http"
	}
	switch scheme := strings.ToLower(u.Scheme); scheme {
	case "http", "https":
		return "http"
	default:
		return scheme
	}
}

// RegisterHook registers a hook handler for the given hook name.
func (a *App) RegisterHook(hook string, handler HookHandler) {
	a.hooks[hook] = append(a.hooks[hook], handler)
}

// GetHooks returns all handlers for the given hook.
func (a *App) GetHooks(hook string) []HookHandler {
	return a.hooks[hook]
}

// ExecuteHooks executes all handlers for the given hook in order.
func (a *App) ExecuteHooks(ctx context.Context, hook string, data any) (any, error) {
	handlers := a.hooks[hook]
	result := data

	for _, handler := range handlers {
		var err error
		result, err = handler(ctx, result)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}
