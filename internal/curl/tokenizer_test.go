package curl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "line continuations",
			input: "curl -X POST \\\n  https://api.example.com \\\n  -H 'A: 1'",
			want:  "curl -X POST https://api.example.com -H 'A: 1'",
		},
		{
			name:  "windows line endings",
			input: "curl \\\r\n  https://example.com",
			want:  "curl https://example.com",
		},
		{
			name:  "spaces before the newline",
			input: "curl \\   \n\thttps://example.com",
			want:  "curl https://example.com",
		},
		{
			name:  "whitespace runs",
			input: "  curl\t\t-v   https://example.com \n",
			want:  "curl -v https://example.com",
		},
		{
			name:  "escaped backslash not before newline is kept",
			input: `curl -d 'a\\b' https://example.com`,
			want:  `curl -d 'a\\b' https://example.com`,
		},
		{
			name:  "vertical tab and unicode spaces",
			input: "curl\v-X\u00a0POST\u2003\ufeffhttps://example.com\u3000",
			want:  "curl -X POST https://example.com",
		},
		{
			name:  "non-breaking space after a continuation",
			input: "curl \\\n\u00a0\u00a0https://example.com",
			want:  "curl https://example.com",
		},
		{
			name:  "empty",
			input: " \n\t\v\u00a0 ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "mixed quotes",
			input: `curl -X POST 'https://a.b/c' -H "X: 1"`,
			want:  []string{"curl", "-X", "POST", "https://a.b/c", "-H", "X: 1"},
		},
		{
			name:  "escaped quote inside double quotes",
			input: `curl -d "{\"name\": \"test\"}"`,
			want:  []string{"curl", "-d", `{"name": "test"}`},
		},
		{
			name:  "other quote kind is literal inside quotes",
			input: `curl -d '{"a": "it"}' -H "X: it's"`,
			want:  []string{"curl", "-d", `{"a": "it"}`, "-H", "X: it's"},
		},
		{
			name:  "escaped space joins words",
			input: `curl https://example.com/a\ b`,
			want:  []string{"curl", "https://example.com/a b"},
		},
		{
			name:  "escaped backslash",
			input: `curl -d 'a\\b'`,
			want:  []string{"curl", "-d", `a\b`},
		},
		{
			name:  "adjacent quoted and bare parts",
			input: `curl -H X-Id:'abc'"def"`,
			want:  []string{"curl", "-H", "X-Id:abcdef"},
		},
		{
			name:  "consecutive spaces",
			input: "curl   https://example.com",
			want:  []string{"curl", "https://example.com"},
		},
		{
			name:  "quoted empty string is an argument",
			input: `curl -d '' https://a.b`,
			want:  []string{"curl", "-d", "", "https://a.b"},
		},
		{
			name:  "double quoted empty string",
			input: `curl "" x`,
			want:  []string{"curl", "", "x"},
		},
		{
			name:  "unterminated quote runs to the end",
			input: `curl -H 'A: 1 https://example.com`,
			want:  []string{"curl", "-H", "A: 1 https://example.com"},
		},
		{
			name:  "trailing escape is dropped",
			input: `curl https://example.com\`,
			want:  []string{"curl", "https://example.com"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func TestTokenize_NoQuoteOrEscapeCharactersRemain(t *testing.T) {
	tokens := Tokenize(`curl 'a' "b" \c`)
	assert.Equal(t, []string{"curl", "a", "b", "c"}, tokens)
}
