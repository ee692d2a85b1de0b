package content

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestHighlight(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		body   string
	}{
		{"json", FormatJSON, "{\n  \"a\": 1\n}"},
		{"xml", FormatXML, "<note>\n  <to>you</to>\n</note>"},
		{"html", FormatHTML, "<p>hi</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Highlight(tt.format, tt.body)
			assert.NotEqual(t, tt.body, got, "output is colored")
			assert.Equal(t, tt.body, ansi.Strip(got))
		})
	}
}

func TestHighlight_LeavesTextAlone(t *testing.T) {
	assert.Equal(t, "plain words", Highlight(FormatText, "plain words"))
	assert.Equal(t, "  ", Highlight(FormatJSON, "  "))
}
