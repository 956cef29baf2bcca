// Package metacache persists extracted item metadata between runs so that
// generated documents, catalogs, and usage locations survive a fresh source
// scan.
package metacache

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"git.home.luguber.info/inful/docweaver/internal/item"
	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed item metadata cache, one row per (kind, id).
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens (or creates) the cache database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		kind TEXT NOT NULL,
		id TEXT NOT NULL,
		payload BLOB NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (kind, id)
	);
	CREATE INDEX IF NOT EXISTS idx_items_kind ON items(kind);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load returns all cached items of one kind, ordered by identifier.
func (s *Store) Load(ctx context.Context, kind item.Kind) ([]item.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT payload FROM items WHERE kind = ? ORDER BY id",
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []item.Item
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it, err := item.Decode(kind, payload)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return items, nil
}

// Save upserts the given items under kind in one transaction.
func (s *Store) Save(ctx context.Context, kind item.Kind, items []item.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (kind, id, payload, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(kind, id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, it := range items {
		payload, err := item.Encode(it)
		if err != nil {
			return fmt.Errorf("encode item %s: %w", it.ID(), err)
		}
		if _, err := stmt.ExecContext(ctx, string(kind), it.ID(), payload, now); err != nil {
			return fmt.Errorf("upsert item %s: %w", it.ID(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
