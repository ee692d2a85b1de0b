package curl

import (
	"strings"

	"github.com/artpar/curl2json/internal/core"
)

// CommandName is the literal every command must start with.
const CommandName = "curl"

// Parse normalizes, tokenizes and interprets a curl command line.
func Parse(input string) (*core.Request, error) {
	return Interpret(Tokenize(Normalize(input)))
}

// Interpret walks the tokens of a curl command and builds a request.
//
// Recognized flags are -X/--request, -H/--header and -d/--data/--data-raw.
// Malformed headers and unknown flags are dropped rather than failing the
// whole command. The first bare argument is the URL; when there is none, the
// last argument that looks like a URL or an absolute path is used instead.
func Interpret(tokens []string) (*core.Request, error) {
	if len(tokens) == 0 || tokens[0] != CommandName {
		return nil, core.ErrMalformedCommand
	}

	req := core.NewRequest()
	url := ""

	for i := 1; i < len(tokens); i++ {
		token := tokens[i]

		switch token {
		case "-X", "--request":
			var method string
			method, i = argument(tokens, i)
			req.SetMethod(method)

		case "-H", "--header":
			var header string
			header, i = argument(tokens, i)
			if key, value, ok := splitHeader(header); ok {
				req.SetHeader(key, value)
			}

		case "-d", "--data", "--data-raw":
			var data string
			data, i = argument(tokens, i)
			// An empty payload neither sets a body nor turns the request
			// into a POST.
			req.SetBody(data)

		default:
			if url == "" && token != "" && !isFlag(token) {
				url = token
			}
		}
	}

	if url == "" {
		url = findURL(tokens)
	}
	if url == "" {
		return nil, core.ErrMissingURL
	}
	req.SetURL(url)

	return req, nil
}

// argument returns the token after i and the index of the last consumed
// token. A flag at the end of input yields an empty argument.
func argument(tokens []string, i int) (string, int) {
	if i+1 < len(tokens) {
		return tokens[i+1], i + 1
	}
	return "", i
}

// splitHeader splits "Name: value" on the first colon.
func splitHeader(header string) (string, string, bool) {
	idx := strings.Index(header, ":")
	if idx < 0 {
		return "", "", false
	}
	key := strings.TrimSpace(header[:idx])
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(header[idx+1:]), true
}

func isFlag(token string) bool {
	return strings.HasPrefix(token, "-")
}

// findURL scans backwards for a non-flag token carrying a scheme or a
// leading slash.
func findURL(tokens []string) string {
	for i := len(tokens) - 1; i >= 1; i-- {
		token := tokens[i]
		if isFlag(token) {
			continue
		}
		if strings.Contains(token, "://") || strings.HasPrefix(token, "/") {
			return token
		}
	}
	return ""
}
