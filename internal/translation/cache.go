package translation

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Cache stores finished translations keyed by source text and target
// language. Hits skip the remote call entirely, which makes interrupted runs
// and changed records cheap: every unit translated before a crash is still
// there. Lookups go through an in-memory map first; the sqlite file persists
// across runs.
type Cache struct {
	db *sql.DB

	mu  sync.RWMutex
	mem map[string]string
}

// OpenCache opens (creating if needed) the translation cache at path.
func OpenCache(path string) (*Cache, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open translation cache: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS translations (
		source_text TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		translated  TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		PRIMARY KEY (source_text, target_lang)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create translations table: %w", err)
	}

	return &Cache{
		db:  db,
		mem: make(map[string]string),
	}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get retrieves a cached translation.
func (c *Cache) Get(ctx context.Context, text, targetLang string) (string, bool) {
	key := text + "\x00" + targetLang

	c.mu.RLock()
	if translated, ok := c.mem[key]; ok {
		c.mu.RUnlock()
		return translated, true
	}
	c.mu.RUnlock()

	row := c.db.QueryRowContext(ctx,
		`SELECT translated FROM translations WHERE source_text = ? AND target_lang = ?`,
		text, targetLang)

	var translated string
	if err := row.Scan(&translated); err != nil {
		return "", false
	}

	c.mu.Lock()
	c.mem[key] = translated
	c.mu.Unlock()
	return translated, true
}

// Put stores a translation. Database errors are returned but a failed write
// never loses the in-memory entry for the rest of the run.
func (c *Cache) Put(ctx context.Context, text, targetLang, translated string) error {
	key := text + "\x00" + targetLang

	c.mu.Lock()
	c.mem[key] = translated
	c.mu.Unlock()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO translations (source_text, target_lang, translated, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(source_text, target_lang) DO UPDATE SET
		   translated = excluded.translated,
		   created_at = excluded.created_at`,
		text, targetLang, translated, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store translation: %w", err)
	}
	return nil
}

// Size returns the number of persisted translations.
func (c *Cache) Size(ctx context.Context) (int, error) {
	row := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM translations`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
