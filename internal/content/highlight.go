package content

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

const highlightStyle = "monokai"

// Highlight colors body for a 256-color terminal. Text bodies and bodies
// the highlighter rejects are returned unchanged.
func Highlight(format Format, body string) string {
	if format == FormatText || strings.TrimSpace(body) == "" {
		return body
	}

	var sb strings.Builder
	if err := quick.Highlight(&sb, body, format.String(), "terminal256", highlightStyle); err != nil {
		return body
	}
	// Some lexers append a newline to their input.
	out := sb.String()
	if strings.Count(out, "\n") > strings.Count(body, "\n") {
		i := strings.LastIndex(out, "\n")
		out = out[:i] + out[i+1:]
	}
	return out
}
