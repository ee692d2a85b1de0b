package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/artpar/curl2json/internal/app"
	"github.com/artpar/curl2json/internal/config"
	"github.com/artpar/curl2json/internal/cookies"
	cookiestore "github.com/artpar/curl2json/internal/cookies/sqlite"
	"github.com/artpar/curl2json/internal/core"
	"github.com/artpar/curl2json/internal/curl"
	"github.com/artpar/curl2json/internal/history"
	"github.com/artpar/curl2json/internal/history/sqlite"
	httpclient "github.com/artpar/curl2json/internal/protocol/http"
	"github.com/artpar/curl2json/internal/query"
	"github.com/artpar/curl2json/internal/script"
	"github.com/artpar/curl2json/internal/tree"
	"github.com/artpar/curl2json/internal/tui"
	"github.com/spf13/cobra"
)

// ErrHistoryDisabled is returned by history commands when history is turned
// off in the config file.
var ErrHistoryDisabled = errors.New("history is disabled")

// viewerFunc opens the interactive viewer. Tests replace it.
var viewerFunc = tui.Run

// session wires configuration, the app, the cookie jar and the history
// store for one command invocation.
type session struct {
	cfg     config.Config
	opts    *RootOptions
	logger  *slog.Logger
	app     *app.App
	store   history.Store
	cookies cookies.Store
	jar     *cookies.Jar
	// recording is false when history is off or --no-history is set.
	recording bool
	out       io.Writer
	errOut    io.Writer
}

// newSession loads the config file, applies flag overrides and opens the
// history store. requireHistory makes a disabled history an error.
func newSession(cmd *cobra.Command, opts *RootOptions, requireHistory bool) (*session, error) {
	cfg, logger, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:       cfg,
		opts:      opts,
		logger:    logger,
		recording: cfg.History.Enabled && !opts.NoHistory,
		out:       cmd.OutOrStdout(),
		errOut:    cmd.ErrOrStderr(),
	}

	if cfg.Cookies.Persist {
		s.openCookies(cmd.Context())
	}

	s.app = app.New(
		app.WithProtocol("http", s.newClient()),
		app.WithConfig(app.Config{DefaultHeaders: cfg.DefaultHeaders}),
		app.WithHook(app.HookPreRequest, s.logRequest),
		app.WithHook(app.HookPostResponse, s.logResponse),
	)

	if !cfg.History.Enabled {
		if requireHistory {
			s.Close()
			return nil, ErrHistoryDisabled
		}
		return s, nil
	}
	if !requireHistory && !s.recording {
		return s, nil
	}

	store, err := sqlite.New(cfg.History.Path)
	if err != nil {
		if requireHistory {
			s.Close()
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		logger.Warn("history unavailable", "path", cfg.History.Path, "error", err)
		return s, nil
	}
	s.store = store
	return s, nil
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command, opts *RootOptions) (config.Config, *slog.Logger, error) {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	applyFlags(cmd, opts, &cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	logger.Debug("loaded config", "path", path, "timeout", cfg.Timeout,
		"history", cfg.History.Enabled, "cookies", cfg.Cookies.Persist)
	return cfg, logger, nil
}

// openCookies loads the persisted cookie jar. Failures fall back to a jar
// that lives only for this run.
func (s *session) openCookies(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := cookiestore.New(s.cfg.Cookies.Path)
	if err != nil {
		s.logger.Warn("cookie jar unavailable", "path", s.cfg.Cookies.Path, "error", err)
		return
	}
	jar, err := cookies.NewJar(ctx, store)
	if err != nil {
		store.Close()
		s.logger.Warn("cookie jar unavailable", "path", s.cfg.Cookies.Path, "error", err)
		return
	}
	s.cookies = store
	s.jar = jar
}

// applyFlags overrides config values with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, opts *RootOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.Timeout = opts.Timeout
	}
	if opts.NoRedirects {
		cfg.FollowRedirects = false
	}
	if opts.Insecure {
		cfg.Insecure = true
	}
	if opts.NoColor {
		cfg.Color = false
	}
}

func (s *session) newClient() *httpclient.Client {
	cfg := s.cfg
	opts := []httpclient.Option{
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithMaxBodySize(cfg.MaxBodySize),
	}
	if s.jar != nil {
		opts = append(opts, httpclient.WithJar(s.jar))
	} else {
		opts = append(opts, httpclient.WithCookieJar())
	}
	if !cfg.FollowRedirects {
		opts = append(opts, httpclient.WithNoRedirects())
	}
	if cfg.Insecure {
		opts = append(opts, httpclient.WithInsecureSkipVerify())
	}
	return httpclient.NewClient(opts...)
}

// Close releases the history and cookie stores.
func (s *session) Close() error {
	var errs []error
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if s.cookies != nil {
		errs = append(errs, s.cookies.Close())
	}
	return errors.Join(errs...)
}

// run parses and sends command, records it and writes the response.
func (s *session) run(ctx context.Context, command string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.logger.Debug("parsed tokens", "tokens", curl.Tokenize(curl.Normalize(command)))

	req, err := s.app.Parse(command)
	if err != nil {
		return err
	}

	result, err := s.app.Execute(ctx, req)
	if s.jar != nil {
		if jarErr := s.jar.Err(); jarErr != nil {
			s.logger.Warn("failed to save cookies", "error", jarErr)
		}
	}
	if err != nil {
		return err
	}
	resp := result.Response

	results, err := script.Evaluate(ctx, result.Request, resp, s.opts.Assertions)
	if err != nil {
		return err
	}
	s.record(ctx, result, script.Summarize(results))

	body := resp.Body()
	if s.opts.Query != "" {
		body, err = query.Apply(body, s.opts.Query)
		if err != nil {
			return err
		}
	}

	if s.opts.TUI {
		var viewerOpts []tui.Option
		if !s.cfg.Color {
			viewerOpts = append(viewerOpts, tui.WithNoColor())
		}
		if err := viewerFunc(ctx, withBody(resp, body), viewerOpts...); err != nil {
			return err
		}
	} else {
		w := &writer{out: s.out, color: s.cfg.Color}
		if err := w.response(resp, body, outputMode(s.opts.Output)); err != nil {
			return err
		}
	}

	writeAssertions(s.errOut, results)
	return script.Check(results)
}

func (s *session) record(ctx context.Context, result *app.Result, summary script.Summary) {
	if s.store == nil || !s.recording {
		return
	}

	entry := history.NewEntry(curl.Command(result.Request), result.Request, result.Response)
	entry.AssertionsPassed = summary.Passed
	entry.AssertionsFailed = summary.Failed

	id, err := s.store.Add(ctx, entry)
	if err != nil {
		s.logger.Warn("failed to record history", "error", err)
		return
	}
	s.logger.Debug("recorded history", "id", id)

	if keep := s.cfg.History.KeepLast; keep > 0 {
		res, err := s.store.Prune(ctx, history.PruneOptions{KeepLast: keep})
		if err != nil {
			s.logger.Warn("failed to prune history", "error", err)
			return
		}
		if res.DeletedCount > 0 {
			s.logger.Debug("pruned history", "removed", res.DeletedCount)
		}
	}
}

func (s *session) logRequest(ctx context.Context, data any) (any, error) {
	if req, ok := data.(*core.Request); ok {
		body, _ := req.Body()
		s.logger.Debug("request",
			"method", req.Method(),
			"url", req.URL(),
			"headers", req.Headers(),
			"body", body,
		)
	}
	return data, nil
}

func (s *session) logResponse(ctx context.Context, data any) (any, error) {
	if resp, ok := data.(*core.Response); ok {
		s.logger.Debug("response",
			"status", resp.Status().Code(),
			"duration", resp.Timing().Total,
			"size", resp.Size(),
			"content_type", resp.ContentType(),
		)
	}
	return data, nil
}

// withBody copies resp with a replacement body, used after a query.
func withBody(resp *core.Response, body tree.Value) *core.Response {
	return core.NewResponse(resp.Status(),
		core.WithRequestID(resp.RequestID()),
		core.WithHeaders(resp.Headers()),
		core.WithRaw(resp.Raw(), resp.ContentType()),
		core.WithBody(body),
		core.WithTiming(resp.Timing()),
	)
}
