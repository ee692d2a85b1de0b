package cli_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/artpar/curl2json/e2e/harness"
	"github.com/artpar/curl2json/e2e/testserver"
	"github.com/artpar/curl2json/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var handlers testserver.Handlers

func newHarness(t *testing.T, extraConfig string) *harness.E2EHarness {
	return harness.New(t, harness.Config{
		ServerHandlers: map[string]http.HandlerFunc{
			"/users":    handlers.RawJSON(http.StatusOK, `{"users":[{"name":"Ada","admin":true},{"name":"Linus","admin":false}],"total":2}`),
			"/echo":     handlers.Echo(),
			"/missing":  handlers.Error(http.StatusNotFound, "not found"),
			"/empty":    handlers.Status(http.StatusNoContent),
			"/page":     handlers.Body(http.StatusOK, "text/html", "<p>hello</p>"),
			"/old":      handlers.Redirect(http.StatusFound, "/users"),
			"/slow":     handlers.Delayed(2*time.Second, handlers.RawJSON(http.StatusOK, `{}`)),
			"/dup-keys": handlers.RawJSON(http.StatusOK, `{"z":1,"a":2,"z":3}`),
		},
		ExtraConfig: extraConfig,
	})
}

func TestJourney_FetchAndRender(t *testing.T) {
	h := newHarness(t, "")
	a := harness.NewAssertions(t)

	res, err := h.CLI().Curl("curl " + h.ServerURL() + "/users")
	require.NoError(t, err)

	a.StatusLine(res.Stdout, 200, "OK")
	a.OutputContains(res.Stdout,
		"Content-Type: application/json",
		"\"name\": \"Ada\"",
		"\"admin\": false",
		"\"total\": 2",
	)
	a.NoError(res.Stderr)
	assert.Equal(t, 1, h.Server().RequestCount())
}

func TestJourney_KeyOrderAndDuplicatesAreKept(t *testing.T) {
	h := newHarness(t, "")

	res, err := h.CLI().Curl("curl "+h.ServerURL()+"/dup-keys", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"z\": 1,\n  \"a\": 2,\n  \"z\": 3\n}\n", res.Stdout)
}

func TestJourney_PostJSON(t *testing.T) {
	h := newHarness(t, "")

	res, err := h.CLI().Run("curl", "-X", "POST", h.ServerURL()+"/echo",
		"-H", "Accept: application/json",
		"-d", `{"name": "Ada"}`)
	require.NoError(t, err)

	last := h.Server().LastRequest()
	require.NotNil(t, last)
	assert.Equal(t, "POST", last.Method)
	assert.Equal(t, `{"name": "Ada"}`, string(last.Body))
	assert.Equal(t, "application/json", last.Headers.Get("Content-Type"))
	assert.Equal(t, "application/json", last.Headers.Get("Accept"))

	harness.NewAssertions(t).OutputContains(res.Stdout, `"method": "POST"`)
}

func TestJourney_DataWithoutMethodStaysGet(t *testing.T) {
	h := newHarness(t, "")

	_, err := h.CLI().Curl("curl " + h.ServerURL() + "/echo -d x=1")
	require.NoError(t, err)

	last := h.Server().LastRequest()
	assert.Equal(t, "GET", last.Method)
	assert.Empty(t, last.Body)
}

func TestJourney_CommandFromStdin(t *testing.T) {
	h := newHarness(t, "")

	command := "curl '" + h.ServerURL() + "/echo?page=2' \\\n  -H 'X-Trace: abc'\n"
	res, err := h.CLI().WithStdin(command).Run("-o", "json")
	require.NoError(t, err)

	var echoed struct {
		Query   string            `json:"query"`
		Headers map[string]string `json:"headers"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &echoed))
	assert.Equal(t, "page=2", echoed.Query)
	assert.Equal(t, "abc", echoed.Headers["X-Trace"])
}

func TestJourney_ResponseShapes(t *testing.T) {
	h := newHarness(t, "")
	a := harness.NewAssertions(t)

	t.Run("error status is still shown", func(t *testing.T) {
		res, err := h.CLI().Curl("curl " + h.ServerURL() + "/missing")
		require.NoError(t, err)
		a.StatusLine(res.Stdout, 404, "Not Found")
		a.OutputContains(res.Stdout, `"error": "not found"`)
	})

	t.Run("no content", func(t *testing.T) {
		res, err := h.CLI().Curl("curl " + h.ServerURL() + "/empty")
		require.NoError(t, err)
		a.StatusLine(res.Stdout, 204, "No Content")
		a.OutputContains(res.Stdout, "No data to display")
	})

	t.Run("html is wrapped", func(t *testing.T) {
		res, err := h.CLI().Curl("curl " + h.ServerURL() + "/page")
		require.NoError(t, err)
		a.OutputContains(res.Stdout, `"_raw": "<p>hello</p>"`)
	})

	t.Run("raw html is pretty printed", func(t *testing.T) {
		res, err := h.CLI().Curl("curl "+h.ServerURL()+"/page", "-o", "raw")
		require.NoError(t, err)
		a.OutputContains(res.Stdout, "<p>")
		a.OutputNotContains(res.Stdout, "HTTP 200", "_raw")
	})

	t.Run("redirects are followed", func(t *testing.T) {
		res, err := h.CLI().Curl("curl " + h.ServerURL() + "/old")
		require.NoError(t, err)
		a.StatusLine(res.Stdout, 200, "OK")
		a.OutputContains(res.Stdout, `"total": 2`)
	})

	t.Run("redirects can be disabled", func(t *testing.T) {
		res, err := h.CLI().Curl("curl "+h.ServerURL()+"/old", "--no-redirects", "-o", "headers")
		require.NoError(t, err)
		a.StatusLine(res.Stdout, 302, "Found")
		a.OutputContains(res.Stdout, "Location: /users")
	})
}

func TestJourney_Timeout(t *testing.T) {
	h := newHarness(t, "")

	res, err := h.CLI().Curl("curl "+h.ServerURL()+"/slow", "--timeout", "100ms")
	require.Error(t, err)
	assert.Equal(t, 1, res.ExitCode)

	var transportErr *core.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Less(t, res.Duration, 2*time.Second)
}

func TestJourney_QueryAndAssertions(t *testing.T) {
	h := newHarness(t, "")
	a := harness.NewAssertions(t)

	res, err := h.CLI().Curl("curl "+h.ServerURL()+"/users",
		"-o", "json",
		"--query", "users[?admin].name",
		"--assert", "response.status === 200",
		"--assert", "response.body.total === 2",
	)
	require.NoError(t, err)
	assert.Equal(t, "[\n  \"Ada\"\n]\n", res.Stdout)
	a.OutputContains(res.Stderr, "2/2 assertions passed")

	res, err = h.CLI().Curl("curl "+h.ServerURL()+"/missing", "--assert", "response.status === 200")
	require.Error(t, err)
	a.OutputContains(res.Stderr, "✗ response.status === 200", "0/1 assertions passed")
}

func TestJourney_ParseOnly(t *testing.T) {
	h := newHarness(t, "")

	res, err := h.CLI().Parse("curl -X PUT https://api.example.com/items/1 -H 'Authorization: Bearer t' -d '{\"a\":1}'")
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &parsed))
	assert.Equal(t, "PUT", parsed["method"])
	assert.Equal(t, "https://api.example.com/items/1", parsed["url"])
	assert.Equal(t, `{"a":1}`, parsed["body"])
	assert.Equal(t, 0, h.Server().RequestCount(), "parse never sends")
}

func TestJourney_HistoryRoundTrip(t *testing.T) {
	h := newHarness(t, "  keep_last: 3\n")
	a := harness.NewAssertions(t)
	cli := h.CLI()

	for _, path := range []string{"/users", "/missing", "/echo", "/users"} {
		_, err := cli.Curl("curl " + h.ServerURL() + path)
		require.NoError(t, err)
	}

	entries, err := cli.History()
	require.NoError(t, err)
	require.Len(t, entries, 3, "keep_last trims older entries")
	assert.Equal(t, h.ServerURL()+"/users", entries[0].RequestURL)
	assert.Equal(t, 404, entries[2].ResponseStatus)

	list, err := cli.Run("history", "list", "--search", "missing")
	require.NoError(t, err)
	a.OutputContains(list.Stdout, "ID", "404", h.ServerURL()+"/missing")
	a.OutputNotContains(list.Stdout, "/echo")

	before := h.Server().RequestCount()
	replay, err := cli.Run("-o", "json", "history", "replay", entries[2].ID[:8])
	require.NoError(t, err)
	a.OutputContains(replay.Stdout, `"error": "not found"`)
	assert.Equal(t, before+1, h.Server().RequestCount())

	cleared, err := cli.Run("history", "clear")
	require.NoError(t, err)
	assert.Equal(t, "History cleared\n", cleared.Stdout)

	entries, err = cli.History()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
