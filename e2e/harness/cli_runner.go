package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/artpar/curl2json/internal/cli"
	"github.com/artpar/curl2json/internal/history"
)

// CLIResult holds CLI execution results.
type CLIResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// CLIRunner executes CLI commands against the harness config.
type CLIRunner struct {
	harness *E2EHarness
	stdin   string
}

// WithStdin returns a runner that feeds input on stdin.
func (r *CLIRunner) WithStdin(input string) *CLIRunner {
	return &CLIRunner{harness: r.harness, stdin: input}
}

// Run executes the root command with the given arguments. The harness
// config is always passed first.
func (r *CLIRunner) Run(args ...string) (*CLIResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.harness.timeout)
	defer cancel()

	start := time.Now()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := cli.NewRootCommand("test")
	cmd.SetIn(strings.NewReader(r.stdin))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{"--config", r.harness.configPath}, args...))

	err := cmd.ExecuteContext(ctx)

	result := &CLIResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		result.ExitCode = 1
	}

	return result, err
}

// Curl runs a curl command string with optional flags in front of it.
func (r *CLIRunner) Curl(command string, flags ...string) (*CLIResult, error) {
	return r.Run(append(flags, command)...)
}

// Parse runs the parse subcommand.
func (r *CLIRunner) Parse(command string) (*CLIResult, error) {
	return r.Run("parse", command)
}

// History returns the recorded entries, newest first.
func (r *CLIRunner) History() ([]history.Entry, error) {
	res, err := r.Run("history", "list", "--json", "--limit", "0")
	if err != nil {
		return nil, err
	}

	var entries []history.Entry
	if err := json.Unmarshal([]byte(res.Stdout), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
