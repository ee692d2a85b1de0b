package cli

import (
	"bytes"
	"testing"

	"github.com/artpar/curl2json/internal/core"
	"github.com/artpar/curl2json/internal/script"
	"github.com/artpar/curl2json/internal/tree"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResponse(body tree.Value, raw, contentType string) *core.Response {
	return core.NewResponse(core.NewStatus(201, "Created"),
		core.WithHeaders(map[string]string{"Content-Type": contentType, "Location": "/items/1"}),
		core.WithRaw([]byte(raw), contentType),
		core.WithBody(body),
	)
}

func TestWriter_Response(t *testing.T) {
	body := tree.Object{{Key: "id", Value: tree.Number("1")}}
	resp := testResponse(body, `{"id":1}`, "application/json")

	tests := []struct {
		mode outputMode
		want string
	}{
		{outputTree, "HTTP 201 Created\nContent-Type: application/json\nLocation: /items/1\n\n{\n  \"id\": 1\n}\n"},
		{outputJSON, "{\n  \"id\": 1\n}\n"},
		{outputRaw, "{\n  \"id\": 1\n}\n"},
		{outputHeaders, "HTTP 201 Created\nContent-Type: application/json\nLocation: /items/1\n"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			out := &bytes.Buffer{}
			w := &writer{out: out}
			require.NoError(t, w.response(resp, body, tt.mode))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestWriter_RawHTML(t *testing.T) {
	raw := "<div><p>hi</p></div>"
	resp := testResponse(tree.Object{}, raw, "text/html")

	out := &bytes.Buffer{}
	w := &writer{out: out}
	require.NoError(t, w.response(resp, resp.Body(), outputRaw))
	assert.Contains(t, out.String(), "\n  <p>")
}

func TestWriter_Tree_Null(t *testing.T) {
	w := &writer{}
	assert.Equal(t, emptyBodyMessage, w.tree(tree.Null{}))
	assert.Equal(t, "0", w.tree(tree.Number("0")))
	assert.Equal(t, `""`, w.tree(tree.String("")))
}

func TestWriteAssertions(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		out := &bytes.Buffer{}
		writeAssertions(out, nil)
		assert.Empty(t, out.String())
	})

	t.Run("mixed", func(t *testing.T) {
		out := &bytes.Buffer{}
		writeAssertions(out, []script.Result{
			{Expression: "a", Passed: true},
			{Expression: "b", Passed: false},
			{Expression: "c(", Passed: false, Error: "syntax error: boom"},
		})
		assert.Equal(t, "✓ a\n✗ b\n✗ c(: syntax error: boom\n1/3 assertions passed\n", out.String())
	})
}

func TestWriter_RawColor(t *testing.T) {
	raw := `{"a":1}`
	resp := testResponse(tree.Object{}, raw, "application/json")

	out := &bytes.Buffer{}
	w := &writer{out: out, color: true}
	require.NoError(t, w.response(resp, resp.Body(), outputRaw))

	assert.Contains(t, out.String(), "\x1b[")
	assert.Equal(t, "{\n  \"a\": 1\n}\n", ansi.Strip(out.String()))
}
