package cli

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/artpar/curl2json/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type historyFixture struct {
	config string
	server *httptest.Server
	hits   *atomic.Int32
}

func newHistoryFixture(t *testing.T, keepLast int) *historyFixture {
	t.Helper()

	hits := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"path":"`+r.URL.Path+`"}`)
	}))
	t.Cleanup(server.Close)

	dbPath := filepath.Join(t.TempDir(), "history.db")
	cfg := writeConfig(t, "color: false\nhistory:\n  enabled: true\n  path: "+dbPath+"\n  keep_last: "+strconv.Itoa(keepLast)+"\n")

	return &historyFixture{config: cfg, server: server, hits: hits}
}

func (f *historyFixture) run(t *testing.T, args ...string) result {
	t.Helper()
	return execute(t, "", append([]string{"--config", f.config}, args...)...)
}

func (f *historyFixture) entries(t *testing.T) []history.Entry {
	t.Helper()
	res := f.run(t, "history", "list", "--json", "--limit", "0")
	require.NoError(t, res.err)

	var entries []history.Entry
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &entries))
	return entries
}

func TestHistory_RecordsRequests(t *testing.T) {
	f := newHistoryFixture(t, 0)

	require.NoError(t, f.run(t, "curl "+f.server.URL+"/one").err)
	require.NoError(t, f.run(t, "--assert", "response.status === 200", "curl -X POST "+f.server.URL+"/two -d x=1").err)

	entries := f.entries(t)
	require.Len(t, entries, 2)

	newest := entries[0]
	assert.Equal(t, "POST", newest.RequestMethod)
	assert.Equal(t, f.server.URL+"/two", newest.RequestURL)
	assert.Equal(t, "x=1", newest.RequestBody)
	assert.Equal(t, 200, newest.ResponseStatus)
	assert.Equal(t, `{"path":"/two"}`, newest.ResponseBody)
	assert.Equal(t, 1, newest.AssertionsPassed)
	assert.Equal(t, "curl -X POST "+f.server.URL+"/two --data-raw x=1", newest.Command)

	assert.Equal(t, f.server.URL+"/one", entries[1].RequestURL)
}

func TestHistory_NoHistoryFlag(t *testing.T) {
	f := newHistoryFixture(t, 0)

	require.NoError(t, f.run(t, "--no-history", "curl "+f.server.URL).err)
	assert.Empty(t, f.entries(t))
}

func TestHistory_FailedRequestsAreNotRecorded(t *testing.T) {
	f := newHistoryFixture(t, 0)

	require.Error(t, f.run(t, "curl -X POST").err)
	assert.Empty(t, f.entries(t))
}

func TestHistory_KeepLast(t *testing.T) {
	f := newHistoryFixture(t, 2)

	for _, p := range []string{"/a", "/b", "/c"} {
		require.NoError(t, f.run(t, "curl "+f.server.URL+p).err)
	}

	entries := f.entries(t)
	require.Len(t, entries, 2)
	assert.Equal(t, f.server.URL+"/c", entries[0].RequestURL)
	assert.Equal(t, f.server.URL+"/b", entries[1].RequestURL)
}

func TestHistory_List(t *testing.T) {
	f := newHistoryFixture(t, 0)

	t.Run("empty", func(t *testing.T) {
		res := f.run(t, "history", "list")
		require.NoError(t, res.err)
		assert.Equal(t, "No history entries\n", res.stdout)
	})

	require.NoError(t, f.run(t, "curl "+f.server.URL+"/users").err)
	require.NoError(t, f.run(t, "curl -X DELETE "+f.server.URL+"/users/1").err)

	t.Run("table", func(t *testing.T) {
		res := f.run(t, "history", "list")
		require.NoError(t, res.err)

		lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
		require.Len(t, lines, 3)
		assert.Regexp(t, `^ID\s+TIME\s+METHOD\s+STATUS\s+DURATION\s+URL$`, lines[0])
		assert.Contains(t, lines[1], "DELETE")
		assert.Contains(t, lines[1], f.server.URL+"/users/1")
		assert.Contains(t, lines[2], "GET")
	})

	t.Run("method filter", func(t *testing.T) {
		res := f.run(t, "history", "list", "--method", "delete")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "DELETE")
		assert.NotContains(t, res.stdout, " GET ")
	})

	t.Run("search", func(t *testing.T) {
		res := f.run(t, "history", "list", "--search", "users/1")
		require.NoError(t, res.err)
		assert.Len(t, strings.Split(strings.TrimSpace(res.stdout), "\n"), 2)
	})

	t.Run("fuzzy", func(t *testing.T) {
		res := f.run(t, "history", "list", "--fuzzy", "usrs1", "--json")
		require.NoError(t, res.err)

		var entries []history.Entry
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, f.server.URL+"/users/1", entries[0].RequestURL)
	})

	t.Run("fuzzy and search conflict", func(t *testing.T) {
		res := f.run(t, "history", "list", "--fuzzy", "a", "--search", "b")
		require.Error(t, res.err)
	})

	t.Run("limit", func(t *testing.T) {
		res := f.run(t, "history", "list", "-n", "1", "--json")
		require.NoError(t, res.err)

		var entries []history.Entry
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &entries))
		assert.Len(t, entries, 1)
	})
}

func TestHistory_Show(t *testing.T) {
	f := newHistoryFixture(t, 0)
	require.NoError(t, f.run(t, "curl "+f.server.URL+"/show").err)
	id := f.entries(t)[0].ID

	t.Run("by prefix", func(t *testing.T) {
		res := f.run(t, "history", "show", id[:shortIDLen])
		require.NoError(t, res.err)

		var entry history.Entry
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &entry))
		assert.Equal(t, id, entry.ID)
		assert.Equal(t, "curl "+f.server.URL+"/show", entry.Command)
	})

	t.Run("unknown", func(t *testing.T) {
		res := f.run(t, "history", "show", "does-not-exist")
		require.Error(t, res.err)
		assert.True(t, errors.Is(res.err, history.ErrNotFound))
	})
}

func TestHistory_Replay(t *testing.T) {
	f := newHistoryFixture(t, 0)
	require.NoError(t, f.run(t, "curl "+f.server.URL+"/again").err)
	id := f.entries(t)[0].ID

	res := f.run(t, "-o", "json", "history", "replay", id)
	require.NoError(t, res.err)

	assert.Equal(t, "{\n  \"path\": \"/again\"\n}\n", res.stdout)
	assert.Equal(t, int32(2), f.hits.Load())
	assert.Len(t, f.entries(t), 2, "replays are recorded")

	require.NoError(t, f.run(t, "--no-history", "history", "replay", id).err)
	assert.Len(t, f.entries(t), 2)
}

func TestHistory_PruneAndClear(t *testing.T) {
	f := newHistoryFixture(t, 0)
	for i := 0; i < 3; i++ {
		require.NoError(t, f.run(t, "curl "+f.server.URL).err)
	}

	t.Run("prune needs a limit", func(t *testing.T) {
		res := f.run(t, "history", "prune")
		require.Error(t, res.err)
	})

	t.Run("prune keep", func(t *testing.T) {
		res := f.run(t, "history", "prune", "--keep", "1")
		require.NoError(t, res.err)
		assert.Equal(t, "Removed 2 entries\n", res.stdout)
		assert.Len(t, f.entries(t), 1)
	})

	t.Run("clear", func(t *testing.T) {
		res := f.run(t, "history", "clear")
		require.NoError(t, res.err)
		assert.Equal(t, "History cleared\n", res.stdout)
		assert.Empty(t, f.entries(t))
	})
}

func TestHistory_Disabled(t *testing.T) {
	cfg := writeConfig(t, "history:\n  enabled: false\n")

	res := execute(t, "", "--config", cfg, "history", "list")
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, ErrHistoryDisabled))
}

func TestFuzzyFilter(t *testing.T) {
	entries := []history.Entry{
		{ID: "1", RequestURL: "https://api.example.com/orders"},
		{ID: "2", RequestURL: "https://api.example.com/users/7"},
		{ID: "3", RequestURL: "https://api.example.com/users"},
		{ID: "4", RequestURL: "https://other.org/"},
	}

	got := fuzzyFilter(entries, "users", 0)
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []string{"2", "3"}, []string{got[0].ID, got[1].ID})

	assert.Len(t, fuzzyFilter(entries, "users", 1), 1)
	assert.Empty(t, fuzzyFilter(entries, "zzz", 0))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "12345678", shortID("1234567890"))
	assert.Equal(t, "abc", shortID("abc"))
}
