package curl

import (
	"strings"

	"github.com/artpar/curl2json/internal/core"
)

// Command renders a request as a one-line curl command that Parse reads back
// into the same method, URL, headers and body.
func Command(req *core.Request) string {
	var sb strings.Builder
	sb.WriteString(CommandName)

	if req.Method() != core.MethodGet {
		sb.WriteString(" -X ")
		sb.WriteString(shellQuote(req.Method()))
	}

	sb.WriteString(" ")
	sb.WriteString(shellQuote(req.URL()))

	headers := req.Headers()
	for _, name := range req.HeaderNames() {
		sb.WriteString(" -H ")
		sb.WriteString(shellQuote(name + ": " + headers[name]))
	}

	if body, ok := req.Body(); ok {
		sb.WriteString(" --data-raw ")
		sb.WriteString(shellQuote(body))
	}

	return sb.String()
}

// shellQuote wraps s in single quotes unless it consists only of characters
// that never need quoting. Backslashes are doubled because Tokenize treats
// them as escapes inside quotes too.
func shellQuote(s string) string {
	if s != "" && isShellSafe(s) {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `'\''`)
	return "'" + s + "'"
}

func isShellSafe(s string) bool {
	if strings.HasPrefix(s, "-") {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("-_./:=@%+,", r):
		default:
			return false
		}
	}
	return true
}

// Join rebuilds a command line from arguments that a shell has already
// split, quoting each one so Tokenize returns the same arguments.
func Join(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		if name := strings.TrimLeft(arg, "-"); name != "" && name != arg && isShellSafe(name) {
			// flags stay readable
			quoted[i] = arg
			continue
		}
		quoted[i] = shellQuote(arg)
	}
	return strings.Join(quoted, " ")
}
