package cli

import (
	"fmt"
	"io"

	"github.com/artpar/curl2json/internal/content"
	"github.com/artpar/curl2json/internal/core"
	"github.com/artpar/curl2json/internal/script"
	"github.com/artpar/curl2json/internal/tree"
	"github.com/artpar/curl2json/internal/tui"
	"github.com/charmbracelet/lipgloss"
)

type outputMode string

const (
	outputTree    outputMode = "tree"
	outputJSON    outputMode = "json"
	outputRaw     outputMode = "raw"
	outputHeaders outputMode = "headers"
)

const emptyBodyMessage = "No data to display"

// writer prints responses to the terminal.
type writer struct {
	out   io.Writer
	color bool
}

func (w *writer) response(resp *core.Response, body tree.Value, mode outputMode) error {
	switch mode {
	case outputJSON:
		_, err := fmt.Fprintf(w.out, "%s\n", tree.Marshal(body, "  "))
		return err
	case outputRaw:
		raw := string(resp.Raw())
		format := content.Detect(resp.ContentType(), raw)
		pretty := content.Pretty(format, raw)
		if w.color {
			pretty = content.Highlight(format, pretty)
		}
		_, err := fmt.Fprintln(w.out, pretty)
		return err
	case outputHeaders:
		return w.head(resp)
	default:
		if err := w.head(resp); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w.out, "\n%s\n", w.tree(body))
		return err
	}
}

// head prints the status line followed by the sorted response headers.
func (w *writer) head(resp *core.Response) error {
	status := fmt.Sprintf("HTTP %d %s", resp.Status().Code(), resp.Status().Text())
	if w.color {
		status = tui.StatusStyle(resp.Status().Code()).Render(status)
	}
	if _, err := fmt.Fprintln(w.out, status); err != nil {
		return err
	}

	nameStyle := lipgloss.NewStyle()
	if w.color {
		nameStyle = nameStyle.Foreground(lipgloss.Color("141"))
	}
	for _, name := range resp.HeaderNames() {
		if _, err := fmt.Fprintf(w.out, "%s: %s\n", nameStyle.Render(name), resp.Header(name)); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) tree(body tree.Value) string {
	if _, ok := body.(tree.Null); ok {
		return emptyBodyMessage
	}
	var opts []tree.RendererOption
	if !w.color {
		opts = append(opts, tree.WithNoColor())
	}
	return tree.NewRenderer(opts...).Render(tree.Format(body))
}

// writeAssertions prints one line per assertion.
func writeAssertions(out io.Writer, results []script.Result) {
	if len(results) == 0 {
		return
	}
	for _, r := range results {
		switch {
		case r.Passed:
			fmt.Fprintf(out, "✓ %s\n", r.Expression)
		case r.Error != "":
			fmt.Fprintf(out, "✗ %s: %s\n", r.Expression, r.Error)
		default:
			fmt.Fprintf(out, "✗ %s\n", r.Expression)
		}
	}
	summary := script.Summarize(results)
	fmt.Fprintf(out, "%d/%d assertions passed\n", summary.Passed, summary.Total)
}
