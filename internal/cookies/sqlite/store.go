package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/artpar/curl2json/internal/cookies"
	_ "modernc.org/sqlite"
)

// Store implements cookies.Store using SQLite.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
	now    func() time.Time
}

// New opens or creates the cookie database at dbPath.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cookie directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie database: %w", err)
	}
	return open(db)
}

// NewInMemory creates a new in-memory SQLite store (useful for testing).
func NewInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return open(db)
}

func open(db *sql.DB) (*Store, error) {
	s := &Store{db: db, now: time.Now}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cookie database: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS cookies (
			domain TEXT NOT NULL,
			path TEXT NOT NULL,
			name TEXT NOT NULL,
			value TEXT NOT NULL,
			host_only INTEGER NOT NULL DEFAULT 0,
			secure INTEGER NOT NULL DEFAULT 0,
			http_only INTEGER NOT NULL DEFAULT 0,
			expires DATETIME,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (domain, path, name)
		);
	`)
	return err
}

// Save inserts or replaces a cookie.
func (s *Store) Save(ctx context.Context, c cookies.Cookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return cookies.ErrStoreClosed
	}

	var expires interface{}
	if !c.Expires.IsZero() {
		expires = c.Expires.UTC()
	}
	updated := c.UpdatedAt
	if updated.IsZero() {
		updated = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cookies (domain, path, name, value, host_only, secure, http_only, expires, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (domain, path, name) DO UPDATE SET
			value = excluded.value,
			host_only = excluded.host_only,
			secure = excluded.secure,
			http_only = excluded.http_only,
			expires = excluded.expires,
			updated_at = excluded.updated_at
	`, c.Domain, c.Path, c.Name, c.Value, c.HostOnly, c.Secure, c.HTTPOnly, expires, updated.UTC())
	if err != nil {
		return fmt.Errorf("failed to save cookie %s: %w", c.Name, err)
	}
	return nil
}

// List returns unexpired cookies ordered by domain, path and name.
func (s *Store) List(ctx context.Context, domain string) ([]cookies.Cookie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, cookies.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT domain, path, name, value, host_only, secure, http_only, expires, updated_at
		FROM cookies
		WHERE (expires IS NULL OR expires > ?) AND (? = '' OR domain = ?)
		ORDER BY domain, path, name
	`, s.now().UTC(), domain, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to list cookies: %w", err)
	}
	defer rows.Close()

	result := []cookies.Cookie{}
	for rows.Next() {
		var (
			c       cookies.Cookie
			expires sql.NullTime
		)
		if err := rows.Scan(&c.Domain, &c.Path, &c.Name, &c.Value,
			&c.HostOnly, &c.Secure, &c.HTTPOnly, &expires, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cookie: %w", err)
		}
		if expires.Valid {
			c.Expires = expires.Time
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// Delete removes one cookie.
func (s *Store) Delete(ctx context.Context, domain, path, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return cookies.ErrStoreClosed
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cookies WHERE domain = ? AND path = ? AND name = ?`, domain, path, name)
	if err != nil {
		return fmt.Errorf("failed to delete cookie %s: %w", name, err)
	}
	return nil
}

// Clear removes the cookies of domain, or every cookie when domain is empty.
func (s *Store) Clear(ctx context.Context, domain string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, cookies.ErrStoreClosed
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM cookies WHERE ? = '' OR domain = ?`, domain, domain)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cookies: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
