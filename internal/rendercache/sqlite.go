package rendercache

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-backed cache.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS renders (
		key TEXT PRIMARY KEY,
		html BLOB NOT NULL,
		created INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_renders_created ON renders(created);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the fragment cached under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var html []byte
	err := s.db.QueryRowContext(ctx, "SELECT html FROM renders WHERE key = ?", key).Scan(&html)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query render: %w", err)
	}
	return html, true, nil
}

// Put stores a rendered fragment under key.
func (s *SQLiteStore) Put(ctx context.Context, key string, html []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO renders (key, html, created) VALUES (?, ?, ?)",
		key, html, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert render: %w", err)
	}
	return nil
}

// Prune removes entries created more than retention ago.
func (s *SQLiteStore) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-retention).Unix()
	res, err := s.db.ExecContext(ctx, "DELETE FROM renders WHERE created < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune renders: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune renders: %w", err)
	}
	return n, nil
}

// Ping verifies the store is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
