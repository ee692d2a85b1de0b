// Package curl turns curl command lines into request descriptors and back.
package curl

import (
	"regexp"
	"strings"
)

// space matches ASCII whitespace plus vertical tab, BOM, line and paragraph
// separators and the Unicode space separators such as NBSP.
const space = `[\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}]`

var (
	// A backslash, optional horizontal space, a newline and any indentation
	// that follows.
	continuationPattern = regexp.MustCompile(`\\[ \t]*\r?\n` + space + `*`)
	whitespacePattern   = regexp.MustCompile(space + `+`)
)

// Normalize folds line continuations and whitespace runs into single spaces
// and trims the result. Only a backslash directly ahead of a newline is
// treated as a continuation.
func Normalize(input string) string {
	s := continuationPattern.ReplaceAllString(input, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokenize splits a normalized command into arguments, honoring single and
// double quotes and backslash escapes. Quote and escape characters never
// appear in the output.
//
// Unterminated quotes run to the end of the input and a trailing backslash is
// dropped, so pasted commands with small mistakes still tokenize.
func Tokenize(input string) []string {
	var tokens []string
	var current strings.Builder
	var quote rune
	var escaped bool
	// quoted is set once the current token contains a quoted section, so that
	// '' on its own yields an empty argument.
	var quoted bool

	emit := func() {
		if current.Len() > 0 || quoted {
			tokens = append(tokens, current.String())
		}
		current.Reset()
		quoted = false
	}

	for _, r := range input {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false

		case r == '\\':
			escaped = true

		case quote == 0 && (r == '"' || r == '\''):
			quote = r
			quoted = true

		case quote != 0 && r == quote:
			quote = 0

		case quote == 0 && r == ' ':
			emit()

		default:
			current.WriteRune(r)
		}
	}
	emit()

	return tokens
}
