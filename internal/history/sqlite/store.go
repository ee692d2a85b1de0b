package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/artpar/curl2json/internal/history"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const entryColumns = `id, timestamp, command, request_method, request_url, request_headers,
	request_body, response_status, response_status_text, response_headers, response_body,
	response_content_type, response_time, response_size, assertions_passed, assertions_failed`

// Store implements history.Store using SQLite.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// New creates a new SQLite-based history store, creating the parent
// directory when needed.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// NewInMemory creates a new in-memory SQLite store (useful for testing).
func NewInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables and indexes.
func (s *Store) initialize() error {
	schema := `
		CREATE TABLE IF NOT EXISTS history (
			id TEXT PRIMARY KEY,
			timestamp DATETIME NOT NULL,
			command TEXT NOT NULL,
			request_method TEXT NOT NULL,
			request_url TEXT NOT NULL,
			request_headers TEXT,
			request_body TEXT,
			response_status INTEGER NOT NULL,
			response_status_text TEXT,
			response_headers TEXT,
			response_body TEXT,
			response_content_type TEXT,
			response_time INTEGER,
			response_size INTEGER,
			assertions_passed INTEGER DEFAULT 0,
			assertions_failed INTEGER DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_history_method ON history(request_method);
		CREATE INDEX IF NOT EXISTS idx_history_status ON history(response_status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Add adds a new history entry and returns its ID.
func (s *Store) Add(ctx context.Context, entry history.Entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", history.ErrStoreClosed
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	headersJSON, _ := json.Marshal(entry.RequestHeaders)
	respHeadersJSON, _ := json.Marshal(entry.ResponseHeaders)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID, entry.Timestamp.UTC(), entry.Command, entry.RequestMethod, entry.RequestURL,
		string(headersJSON), entry.RequestBody, entry.ResponseStatus, entry.ResponseStatusText,
		string(respHeadersJSON), entry.ResponseBody, entry.ResponseContentType,
		entry.ResponseTime, entry.ResponseSize, entry.AssertionsPassed, entry.AssertionsFailed,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert history entry: %w", err)
	}

	return entry.ID, nil
}

// Get retrieves a single history entry by ID or unique ID prefix.
func (s *Store) Get(ctx context.Context, id string) (history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return history.Entry{}, history.ErrStoreClosed
	}

	if id == "" {
		return history.Entry{}, history.ErrInvalidID
	}

	entry, err := scanEntry(s.db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM history WHERE id = ?", id))
	if err == nil {
		return entry, nil
	}
	if err != sql.ErrNoRows {
		return history.Entry{}, fmt.Errorf("failed to get history entry: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM history WHERE id LIKE ? ESCAPE '\\' LIMIT 2",
		escapeLike(id)+"%")
	if err != nil {
		return history.Entry{}, fmt.Errorf("failed to get history entry: %w", err)
	}
	matches, err := collect(rows)
	if err != nil {
		return history.Entry{}, fmt.Errorf("failed to get history entry: %w", err)
	}

	switch len(matches) {
	case 0:
		return history.Entry{}, history.ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return history.Entry{}, fmt.Errorf("%w: prefix %q matches several entries", history.ErrInvalidID, id)
	}
}

// List retrieves history entries matching the query options.
func (s *Store) List(ctx context.Context, opts history.QueryOptions) ([]history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, history.ErrStoreClosed
	}

	query, args := buildListQuery(opts, false)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history entries: %w", err)
	}

	entries, err := collect(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan history entry: %w", err)
	}
	return entries, nil
}

// Count returns the number of entries matching the query options.
func (s *Store) Count(ctx context.Context, opts history.QueryOptions) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, history.ErrStoreClosed
	}

	query, args := buildListQuery(opts, true)
	var count int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count history entries: %w", err)
	}

	return count, nil
}

// Delete removes a history entry by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return history.ErrStoreClosed
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return history.ErrNotFound
	}

	return nil
}

// Search performs a LIKE search over URL, method, bodies and command.
func (s *Store) Search(ctx context.Context, query string, opts history.QueryOptions) ([]history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, history.ErrStoreClosed
	}

	sqlQuery, args := buildSearchQuery(query, opts)
	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search history: %w", err)
	}

	entries, err := collect(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan search result: %w", err)
	}
	return entries, nil
}

// Prune removes old entries based on the prune options.
func (s *Store) Prune(ctx context.Context, opts history.PruneOptions) (history.PruneResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return history.PruneResult{}, history.ErrStoreClosed
	}

	var result history.PruneResult
	var where string
	var args []interface{}

	switch {
	case opts.OlderThan > 0:
		where = "timestamp < ?"
		args = []interface{}{time.Now().Add(-opts.OlderThan).UTC()}
	case opts.KeepLast > 0:
		where = "id NOT IN (SELECT id FROM history ORDER BY timestamp DESC, rowid DESC LIMIT ?)"
		args = []interface{}{opts.KeepLast}
	default:
		return result, nil
	}

	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(response_size), 0) FROM history WHERE "+where, args...,
	).Scan(&result.FreedBytes)
	if err != nil {
		return result, fmt.Errorf("failed to prune history: %w", err)
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM history WHERE "+where, args...)
	if err != nil {
		return result, fmt.Errorf("failed to prune history: %w", err)
	}
	result.DeletedCount, _ = res.RowsAffected()

	return result, nil
}

// Clear removes all history entries.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return history.ErrStoreClosed
	}

	_, err := s.db.ExecContext(ctx, "DELETE FROM history")
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	return nil
}

// Close closes the store and releases resources.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// Helper functions

func buildListQuery(opts history.QueryOptions, countOnly bool) (string, []interface{}) {
	query := "SELECT " + entryColumns + " FROM history WHERE 1=1"
	if countOnly {
		query = "SELECT COUNT(*) FROM history WHERE 1=1"
	}

	filters, args := buildFilters(opts)
	query += filters

	if !countOnly {
		query += " ORDER BY timestamp DESC, rowid DESC"
		query, args = paginate(query, args, opts)
	}

	return query, args
}

func buildSearchQuery(searchTerm string, opts history.QueryOptions) (string, []interface{}) {
	searchPattern := "%" + escapeLike(searchTerm) + "%"

	query := `
		SELECT ` + entryColumns + `
		FROM history
		WHERE (
			request_url LIKE ? ESCAPE '\' OR
			request_method LIKE ? ESCAPE '\' OR
			request_body LIKE ? ESCAPE '\' OR
			response_body LIKE ? ESCAPE '\' OR
			command LIKE ? ESCAPE '\'
		)
	`
	args := []interface{}{
		searchPattern, searchPattern, searchPattern, searchPattern, searchPattern,
	}

	filters, filterArgs := buildFilters(opts)
	query += filters
	args = append(args, filterArgs...)

	query += " ORDER BY timestamp DESC, rowid DESC"
	return paginate(query, args, opts)
}

func buildFilters(opts history.QueryOptions) (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}

	if opts.Method != "" {
		sb.WriteString(" AND request_method = ?")
		args = append(args, strings.ToUpper(opts.Method))
	}

	if opts.URLPattern != "" {
		sb.WriteString(" AND request_url LIKE ?")
		args = append(args, opts.URLPattern)
	}

	if opts.StatusMin > 0 {
		sb.WriteString(" AND response_status >= ?")
		args = append(args, opts.StatusMin)
	}

	if opts.StatusMax > 0 {
		sb.WriteString(" AND response_status <= ?")
		args = append(args, opts.StatusMax)
	}

	if !opts.After.IsZero() {
		sb.WriteString(" AND timestamp > ?")
		args = append(args, opts.After.UTC())
	}

	if !opts.Before.IsZero() {
		sb.WriteString(" AND timestamp < ?")
		args = append(args, opts.Before.UTC())
	}

	return sb.String(), args
}

func paginate(query string, args []interface{}, opts history.QueryOptions) (string, []interface{}) {
	switch {
	case opts.Limit > 0:
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	case opts.Offset > 0:
		// SQLite needs a LIMIT before OFFSET.
		query += " LIMIT -1"
	}

	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	return query, args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func collect(rows *sql.Rows) ([]history.Entry, error) {
	defer rows.Close()

	var entries []history.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func scanEntry(row rowScanner) (history.Entry, error) {
	var entry history.Entry
	var headersJSON, respHeadersJSON sql.NullString
	var reqBody, statusText, respBody, contentType sql.NullString

	err := row.Scan(
		&entry.ID, &entry.Timestamp, &entry.Command, &entry.RequestMethod, &entry.RequestURL,
		&headersJSON, &reqBody, &entry.ResponseStatus, &statusText,
		&respHeadersJSON, &respBody, &contentType,
		&entry.ResponseTime, &entry.ResponseSize, &entry.AssertionsPassed, &entry.AssertionsFailed,
	)
	if err != nil {
		return entry, err
	}

	entry.RequestBody = reqBody.String
	entry.ResponseStatusText = statusText.String
	entry.ResponseBody = respBody.String
	entry.ResponseContentType = contentType.String

	if headersJSON.Valid {
		json.Unmarshal([]byte(headersJSON.String), &entry.RequestHeaders)
	}
	if respHeadersJSON.Valid {
		json.Unmarshal([]byte(respHeadersJSON.String), &entry.ResponseHeaders)
	}

	return entry, nil
}
