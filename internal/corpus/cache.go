package corpus

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// Cache is a content-addressed embedding cache backed by SQLite. Corpus
// embeddings survive process restarts, so a remote encoder is only called
// for snippets it has not seen before. Keys are SHA-256 over the engine
// name and the snippet text, so switching encoders never serves stale
// vectors.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (or creates) the cache database at path. Use ":memory:"
// for an ephemeral cache.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding cache: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS embeddings (
		content_hash TEXT PRIMARY KEY,
		engine TEXT NOT NULL,
		vector TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize embedding cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key computes the content-addressed cache key for an engine/text pair.
func Key(engine, text string) string {
	h := sha256.New()
	h.Write([]byte(engine))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached embedding. Returns (nil, false, nil) on a miss.
func (c *Cache) Get(key string) ([]float32, bool, error) {
	var vectorJSON string
	err := c.db.QueryRow("SELECT vector FROM embeddings WHERE content_hash = ?", key).Scan(&vectorJSON)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup failed: %w", err)
	}

	var vec []float32
	if err := json.Unmarshal([]byte(vectorJSON), &vec); err != nil {
		return nil, false, fmt.Errorf("corrupt cached vector: %w", err)
	}
	return vec, true, nil
}

// Put stores an embedding under the given key.
func (c *Cache) Put(key, engine string, vec []float32) error {
	vectorJSON, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("failed to serialize vector: %w", err)
	}

	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO embeddings (content_hash, engine, vector) VALUES (?, ?, ?)",
		key, engine, string(vectorJSON),
	)
	if err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}
	return nil
}
