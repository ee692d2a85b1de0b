package cli

import (
	"encoding/json"

	"github.com/artpar/curl2json/internal/core"
	"github.com/artpar/curl2json/internal/curl"
	"github.com/spf13/cobra"
)

// descriptor is the JSON form of a parsed request.
type descriptor struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Body    *string           `json:"body,omitempty"`
}

func newDescriptor(req *core.Request) descriptor {
	d := descriptor{
		Method:  req.Method(),
		URL:     req.URL(),
		Headers: req.Headers(),
	}
	if body, ok := req.Body(); ok {
		d.Body = &body
	}
	return d
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [curl command]",
		Short: "Print the request a curl command describes, without sending it",
		Long: `Parse a curl command and print the method, URL, headers and body as JSON.

Examples:
  curl2json parse 'curl -X POST https://httpbin.org/post -d "{}"'
  curl2json parse curl -H "Accept: application/json" https://httpbin.org/get`,
		DisableFlagParsing: true, // Pass all args to the curl parser
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := readCommand(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			req, err := curl.Parse(command)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			encoder.SetEscapeHTML(false)
			return encoder.Encode(newDescriptor(req))
		},
	}
	return cmd
}
