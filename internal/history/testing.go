package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreTests runs the standard store test suite against any Store implementation.
// Use this to verify that a Store implementation correctly implements the interface.
func RunStoreTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("Add", func(t *testing.T) {
		runAddTests(t, newStore)
	})
	t.Run("Get", func(t *testing.T) {
		runGetTests(t, newStore)
	})
	t.Run("List", func(t *testing.T) {
		runListTests(t, newStore)
	})
	t.Run("Delete", func(t *testing.T) {
		runDeleteTests(t, newStore)
	})
	t.Run("Search", func(t *testing.T) {
		runSearchTests(t, newStore)
	})
	t.Run("Prune", func(t *testing.T) {
		runPruneTests(t, newStore)
	})
	t.Run("Closed", func(t *testing.T) {
		runClosedTests(t, newStore)
	})
}

func sampleEntry(method, url string, status int, ts time.Time) Entry {
	return Entry{
		Timestamp:      ts,
		Command:        "curl -X " + method + " " + url,
		RequestMethod:  method,
		RequestURL:     url,
		ResponseStatus: status,
	}
}

func runAddTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("adds entry and returns ID", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		id, err := store.Add(context.Background(), sampleEntry("GET", "https://api.example.com/users", 200, time.Now()))

		require.NoError(t, err)
		assert.NotEmpty(t, id)
	})

	t.Run("adds entry with all fields", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		entry := Entry{
			Timestamp:           time.Now(),
			Command:             `curl -X POST https://api.example.com/users -H 'Content-Type: application/json' --data-raw '{"name": "John"}'`,
			RequestMethod:       "POST",
			RequestURL:          "https://api.example.com/users",
			RequestHeaders:      map[string]string{"Content-Type": "application/json"},
			RequestBody:         `{"name": "John"}`,
			ResponseStatus:      201,
			ResponseStatusText:  "Created",
			ResponseHeaders:     map[string]string{"X-Request-Id": "abc123"},
			ResponseBody:        `{"id": 1, "name": "John"}`,
			ResponseContentType: "application/json",
			ResponseTime:        234,
			ResponseSize:        25,
			AssertionsPassed:    2,
			AssertionsFailed:    1,
		}

		id, err := store.Add(context.Background(), entry)
		require.NoError(t, err)

		retrieved, err := store.Get(context.Background(), id)
		require.NoError(t, err)

		assert.Equal(t, id, retrieved.ID)
		assert.Equal(t, entry.Command, retrieved.Command)
		assert.Equal(t, entry.RequestMethod, retrieved.RequestMethod)
		assert.Equal(t, entry.RequestURL, retrieved.RequestURL)
		assert.Equal(t, entry.RequestHeaders, retrieved.RequestHeaders)
		assert.Equal(t, entry.RequestBody, retrieved.RequestBody)
		assert.Equal(t, entry.ResponseStatus, retrieved.ResponseStatus)
		assert.Equal(t, entry.ResponseStatusText, retrieved.ResponseStatusText)
		assert.Equal(t, entry.ResponseHeaders, retrieved.ResponseHeaders)
		assert.Equal(t, entry.ResponseBody, retrieved.ResponseBody)
		assert.Equal(t, entry.ResponseContentType, retrieved.ResponseContentType)
		assert.Equal(t, entry.ResponseTime, retrieved.ResponseTime)
		assert.Equal(t, entry.ResponseSize, retrieved.ResponseSize)
		assert.Equal(t, entry.AssertionsPassed, retrieved.AssertionsPassed)
		assert.Equal(t, entry.AssertionsFailed, retrieved.AssertionsFailed)
		assert.WithinDuration(t, entry.Timestamp, retrieved.Timestamp, time.Millisecond)
	})

	t.Run("keeps caller ID", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		entry := sampleEntry("GET", "https://api.example.com", 200, time.Now())
		entry.ID = "fixed-id"

		id, err := store.Add(context.Background(), entry)
		require.NoError(t, err)
		assert.Equal(t, "fixed-id", id)
	})

	t.Run("generates unique IDs", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		ids := make(map[string]bool)
		for i := 0; i < 10; i++ {
			id, err := store.Add(context.Background(), sampleEntry("GET", "https://api.example.com", 200, time.Now()))
			require.NoError(t, err)
			assert.False(t, ids[id], "Duplicate ID generated")
			ids[id] = true
		}
	})
}

func runGetTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("retrieves existing entry", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		id, err := store.Add(context.Background(), sampleEntry("DELETE", "https://api.example.com/users/1", 204, time.Now()))
		require.NoError(t, err)

		entry, err := store.Get(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, id, entry.ID)
		assert.Equal(t, "DELETE", entry.RequestMethod)
		assert.Equal(t, 204, entry.ResponseStatus)
	})

	t.Run("retrieves by unique prefix", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		entry := sampleEntry("GET", "https://api.example.com", 200, time.Now())
		entry.ID = "abcdef-1"
		_, err := store.Add(context.Background(), entry)
		require.NoError(t, err)

		got, err := store.Get(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, "abcdef-1", got.ID)
	})

	t.Run("ambiguous prefix is invalid", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		for _, id := range []string{"abc-1", "abc-2"} {
			entry := sampleEntry("GET", "https://api.example.com", 200, time.Now())
			entry.ID = id
			_, err := store.Add(context.Background(), entry)
			require.NoError(t, err)
		}

		_, err := store.Get(context.Background(), "abc")
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("returns error for non-existent entry", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		_, err := store.Get(context.Background(), "non-existent-id")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("returns error for empty ID", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		_, err := store.Get(context.Background(), "")

		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func runListTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("lists all entries", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		for i := 0; i < 5; i++ {
			_, err := store.Add(context.Background(), sampleEntry("GET", "https://api.example.com", 200, time.Now()))
			require.NoError(t, err)
		}

		entries, err := store.List(context.Background(), QueryOptions{})

		require.NoError(t, err)
		assert.Len(t, entries, 5)

		count, err := store.Count(context.Background(), QueryOptions{})
		require.NoError(t, err)
		assert.Equal(t, int64(5), count)
	})

	t.Run("filters by method", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		methods := []string{"GET", "POST", "GET", "PUT", "GET"}
		for _, method := range methods {
			_, err := store.Add(context.Background(), sampleEntry(method, "https://api.example.com", 200, time.Now()))
			require.NoError(t, err)
		}

		entries, err := store.List(context.Background(), QueryOptions{Method: "GET"})

		require.NoError(t, err)
		assert.Len(t, entries, 3)
		for _, e := range entries {
			assert.Equal(t, "GET", e.RequestMethod)
		}

		count, err := store.Count(context.Background(), QueryOptions{Method: "POST"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("filters by status range", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		statuses := []int{200, 201, 400, 404, 500}
		for _, status := range statuses {
			_, err := store.Add(context.Background(), sampleEntry("GET", "https://api.example.com", status, time.Now()))
			require.NoError(t, err)
		}

		entries, err := store.List(context.Background(), QueryOptions{
			StatusMin: 400,
			StatusMax: 499,
		})

		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("filters by time range", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		now := time.Now()
		times := []time.Time{
			now.Add(-48 * time.Hour),
			now.Add(-24 * time.Hour),
			now.Add(-1 * time.Hour),
			now,
		}
		for _, ts := range times {
			_, err := store.Add(context.Background(), sampleEntry("GET", "https://api.example.com", 200, ts))
			require.NoError(t, err)
		}

		entries, err := store.List(context.Background(), QueryOptions{
			After: now.Add(-25 * time.Hour),
		})
		require.NoError(t, err)
		assert.Len(t, entries, 3)

		entries, err = store.List(context.Background(), QueryOptions{
			Before: now.Add(-30 * time.Minute),
		})
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	})

	t.Run("filters by URL pattern", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		urls := []string{
			"https://api.example.com/users",
			"https://api.example.com/users/1",
			"https://api.example.com/orders",
		}
		for _, url := range urls {
			_, err := store.Add(context.Background(), sampleEntry("GET", url, 200, time.Now()))
			require.NoError(t, err)
		}

		entries, err := store.List(context.Background(), QueryOptions{
			URLPattern: "%/users%",
		})

		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("applies pagination", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		now := time.Now()
		for i := 0; i < 10; i++ {
			_, err := store.Add(context.Background(), sampleEntry("GET", "https://api.example.com", 200, now.Add(time.Duration(i)*time.Second)))
			require.NoError(t, err)
		}

		page1, err := store.List(context.Background(), QueryOptions{Limit: 3})
		require.NoError(t, err)
		assert.Len(t, page1, 3)

		page2, err := store.List(context.Background(), QueryOptions{Limit: 3, Offset: 3})
		require.NoError(t, err)
		assert.Len(t, page2, 3)

		assert.NotEqual(t, page1[0].ID, page2[0].ID)
	})

	t.Run("sorts newest first", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		now := time.Now()
		for i := 0; i < 3; i++ {
			_, err := store.Add(context.Background(), sampleEntry("GET", "https://api.example.com", 200, now.Add(time.Duration(i)*time.Hour)))
			require.NoError(t, err)
		}

		entries, err := store.List(context.Background(), QueryOptions{})

		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.True(t, entries[0].Timestamp.After(entries[1].Timestamp))
		assert.True(t, entries[1].Timestamp.After(entries[2].Timestamp))
	})

	t.Run("empty store", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		entries, err := store.List(context.Background(), QueryOptions{})
		require.NoError(t, err)
		assert.Empty(t, entries)

		count, err := store.Count(context.Background(), QueryOptions{})
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func runDeleteTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("deletes existing entry", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		id, err := store.Add(context.Background(), sampleEntry("GET", "https://api.example.com", 200, time.Now()))
		require.NoError(t, err)

		require.NoError(t, store.Delete(context.Background(), id))

		_, err = store.Get(context.Background(), id)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("returns error for non-existent entry", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		err := store.Delete(context.Background(), "non-existent-id")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("clear removes all entries", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		for i := 0; i < 5; i++ {
			_, err := store.Add(context.Background(), sampleEntry("GET", "https://api.example.com", 200, time.Now()))
			require.NoError(t, err)
		}

		require.NoError(t, store.Clear(context.Background()))

		count, err := store.Count(context.Background(), QueryOptions{})
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func runSearchTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("searches in URL", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		for _, url := range []string{"https://api.example.com/users", "https://api.example.com/orders"} {
			_, err := store.Add(context.Background(), sampleEntry("GET", url, 200, time.Now()))
			require.NoError(t, err)
		}

		results, err := store.Search(context.Background(), "users", QueryOptions{})

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Contains(t, results[0].RequestURL, "users")
	})

	t.Run("searches in response body", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		entry := sampleEntry("GET", "https://api.example.com/a", 200, time.Now())
		entry.ResponseBody = `{"token": "needle"}`
		_, err := store.Add(context.Background(), entry)
		require.NoError(t, err)
		_, err = store.Add(context.Background(), sampleEntry("GET", "https://api.example.com/b", 200, time.Now()))
		require.NoError(t, err)

		results, err := store.Search(context.Background(), "needle", QueryOptions{})

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "https://api.example.com/a", results[0].RequestURL)
	})

	t.Run("combines search with filters", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		_, err := store.Add(context.Background(), sampleEntry("GET", "https://api.example.com/users", 200, time.Now()))
		require.NoError(t, err)
		_, err = store.Add(context.Background(), sampleEntry("POST", "https://api.example.com/users", 201, time.Now()))
		require.NoError(t, err)

		results, err := store.Search(context.Background(), "users", QueryOptions{Method: "GET"})

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "GET", results[0].RequestMethod)
	})
}

func runPruneTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("prunes entries older than duration", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		now := time.Now()
		times := []time.Time{
			now.Add(-48 * time.Hour),
			now.Add(-47 * time.Hour),
			now.Add(-12 * time.Hour),
			now,
		}
		for _, ts := range times {
			entry := sampleEntry("GET", "https://api.example.com", 200, ts)
			entry.ResponseSize = 10
			_, err := store.Add(context.Background(), entry)
			require.NoError(t, err)
		}

		result, err := store.Prune(context.Background(), PruneOptions{
			OlderThan: 24 * time.Hour,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(2), result.DeletedCount)
		assert.Equal(t, int64(20), result.FreedBytes)

		remaining, err := store.List(context.Background(), QueryOptions{})
		require.NoError(t, err)
		assert.Len(t, remaining, 2)
	})

	t.Run("prunes keeping last N entries", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		now := time.Now()
		var newest string
		for i := 0; i < 10; i++ {
			id, err := store.Add(context.Background(), sampleEntry("GET", "https://api.example.com", 200, now.Add(time.Duration(i)*time.Second)))
			require.NoError(t, err)
			newest = id
		}

		result, err := store.Prune(context.Background(), PruneOptions{
			KeepLast: 5,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(5), result.DeletedCount)

		remaining, err := store.List(context.Background(), QueryOptions{})
		require.NoError(t, err)
		require.Len(t, remaining, 5)
		assert.Equal(t, newest, remaining[0].ID)
	})

	t.Run("keep last above count deletes nothing", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		_, err := store.Add(context.Background(), sampleEntry("GET", "https://api.example.com", 200, time.Now()))
		require.NoError(t, err)

		result, err := store.Prune(context.Background(), PruneOptions{KeepLast: 5})
		require.NoError(t, err)
		assert.Zero(t, result.DeletedCount)
	})
}

func runClosedTests(t *testing.T, newStore func() (Store, func())) {
	t.Run("operations fail after close", func(t *testing.T) {
		store, cleanup := newStore()
		defer cleanup()

		require.NoError(t, store.Close())
		require.NoError(t, store.Close())

		_, err := store.Add(context.Background(), sampleEntry("GET", "https://api.example.com", 200, time.Now()))
		assert.ErrorIs(t, err, ErrStoreClosed)

		_, err = store.Get(context.Background(), "id")
		assert.ErrorIs(t, err, ErrStoreClosed)

		_, err = store.List(context.Background(), QueryOptions{})
		assert.ErrorIs(t, err, ErrStoreClosed)

		assert.ErrorIs(t, store.Clear(context.Background()), ErrStoreClosed)
	})
}
