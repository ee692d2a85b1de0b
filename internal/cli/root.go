package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/artpar/curl2json/internal/curl"
	"github.com/artpar/curl2json/internal/query"
	"github.com/spf13/cobra"
)

// RootOptions holds the flags shared by every command that sends a request.
type RootOptions struct {
	ConfigPath  string
	Timeout     time.Duration
	NoRedirects bool
	Insecure    bool
	Output      string
	Query       string
	Assertions  []string
	NoColor     bool
	NoHistory   bool
	TUI         bool
	Verbose     bool
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "curl2json [flags] [curl command]",
		Short: "Run a curl command and show the JSON response as a tree",
		Long: `curl2json parses a curl command, sends the request and prints the
response body as an indented, highlighted JSON tree.

The command can be passed as one quoted argument, as separate arguments,
or on stdin. Flags go before the curl command.

Examples:
  curl2json 'curl https://httpbin.org/get'
  curl2json curl -X POST https://httpbin.org/post -H "Content-Type: application/json" -d '{"name": "test"}'
  pbpaste | curl2json --query 'headers'
  curl2json --assert 'response.status === 200' 'curl https://httpbin.org/status/200'`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := readCommand(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			s, err := newSession(cmd, opts, false)
			if err != nil {
				return err
			}
			defer s.Close()

			return s.run(cmd.Context(), command)
		},
	}

	// Everything after the first argument belongs to the curl command.
	cmd.Flags().SetInterspersed(false)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "Config file (default ~/.curl2json/config.yaml)")
	flags.DurationVar(&opts.Timeout, "timeout", 0, "Request timeout, e.g. 10s (default from config)")
	flags.BoolVar(&opts.NoRedirects, "no-redirects", false, "Do not follow redirects")
	flags.BoolVarP(&opts.Insecure, "insecure", "k", false, "Skip TLS certificate verification")
	flags.StringVarP(&opts.Output, "output", "o", string(outputTree), "Output format: tree, json, raw or headers")
	flags.StringVarP(&opts.Query, "query", "q", "", "JMESPath expression applied to the body")
	flags.StringArrayVarP(&opts.Assertions, "assert", "a", nil, "JavaScript assertion on request/response (repeatable)")
	flags.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&opts.NoHistory, "no-history", false, "Do not record this request in history")
	flags.BoolVar(&opts.TUI, "tui", false, "Open the response in the interactive viewer")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Log diagnostics to stderr")

	cmd.AddCommand(NewParseCommand())
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewCookiesCommand(opts))

	return cmd
}

func (o *RootOptions) validate() error {
	switch outputMode(o.Output) {
	case outputTree, outputJSON, outputRaw, outputHeaders:
	default:
		return fmt.Errorf("invalid output format %q: want tree, json, raw or headers", o.Output)
	}
	if o.Query != "" {
		if err := query.Validate(o.Query); err != nil {
			return err
		}
	}
	return nil
}

// readCommand takes the curl command from args, or from in when there are
// no args or the only arg is "-".
func readCommand(in io.Reader, args []string) (string, error) {
	switch {
	case len(args) == 0 || (len(args) == 1 && args[0] == "-"):
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("failed to read command from stdin: %w", err)
		}
		command := strings.TrimSpace(string(data))
		if command == "" {
			return "", fmt.Errorf("no curl command provided")
		}
		return command, nil
	case len(args) == 1:
		return args[0], nil
	default:
		return curl.Join(args), nil
	}
}
