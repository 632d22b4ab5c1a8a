package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"caseforge/internal/embedding"
	"caseforge/internal/types"
)

// Config holds corpus configuration.
type Config struct {
	// SnippetsPath is the JSON file holding {standard, text} pairs.
	SnippetsPath string `yaml:"snippets_path"`

	// CachePath is the SQLite embedding cache. Empty disables caching.
	CachePath string `yaml:"cache_path"`

	// TopK and Threshold are the tagger's query parameters.
	TopK      int     `yaml:"top_k"`
	Threshold float64 `yaml:"threshold"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SnippetsPath: "data/compliance_snippets.json",
		CachePath:    "data/embeddings.db",
		TopK:         3,
		Threshold:    0.30,
	}
}

// Store owns the loaded compliance snippets and their similarity index.
// Built once at process start, shared read-only by all requests.
type Store struct {
	snippets []types.ComplianceSnippet
	index    *Index
	engine   embedding.Engine
	logger   *zap.Logger
}

// NewStore loads snippets from cfg.SnippetsPath, embeds them with engine
// (consulting the cache first) and builds the similarity index.
func NewStore(ctx context.Context, cfg Config, engine embedding.Engine, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	snippets, err := loadSnippets(cfg.SnippetsPath)
	if err != nil {
		return nil, err
	}
	if len(snippets) == 0 {
		return nil, fmt.Errorf("no compliance snippets in %s", cfg.SnippetsPath)
	}

	s := &Store{snippets: snippets, engine: engine, logger: logger}
	if err := s.embedAll(ctx, cfg.CachePath); err != nil {
		return nil, err
	}

	s.index = NewIndex(s.snippets)
	logger.Info("Compliance corpus ready",
		zap.Int("snippets", len(s.snippets)),
		zap.String("engine", engine.Name()),
		zap.Int("dimensions", engine.Dimensions()))
	return s, nil
}

// NewStoreFromSnippets builds a store from in-memory snippets, embedding
// them without a cache. Intended for tests with a small synthetic corpus.
func NewStoreFromSnippets(ctx context.Context, snippets []types.ComplianceSnippet, engine embedding.Engine) (*Store, error) {
	s := &Store{snippets: snippets, engine: engine, logger: zap.NewNop()}
	if err := s.embedAll(ctx, ""); err != nil {
		return nil, err
	}
	s.index = NewIndex(s.snippets)
	return s, nil
}

// Index returns the similarity index.
func (s *Store) Index() *Index {
	return s.index
}

// Snippets returns the loaded snippets.
func (s *Store) Snippets() []types.ComplianceSnippet {
	return s.snippets
}

func loadSnippets(path string) ([]types.ComplianceSnippet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read compliance snippets: %w", err)
	}

	var snippets []types.ComplianceSnippet
	if err := json.Unmarshal(data, &snippets); err != nil {
		return nil, fmt.Errorf("failed to parse compliance snippets: %w", err)
	}
	return snippets, nil
}

// embedAll fills in snippet embeddings, unit-normalized. Cache failures
// are logged and embedding proceeds without the cache; a missing cache
// must never take the corpus down with it.
func (s *Store) embedAll(ctx context.Context, cachePath string) error {
	var cache *Cache
	if cachePath != "" {
		var err error
		cache, err = OpenCache(cachePath)
		if err != nil {
			s.logger.Warn("Embedding cache unavailable, recomputing all embeddings", zap.Error(err))
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	// Collect texts that miss the cache.
	var missing []int
	for i := range s.snippets {
		if cache != nil {
			key := Key(s.engine.Name(), s.snippets[i].Text)
			vec, ok, err := cache.Get(key)
			if err != nil {
				s.logger.Warn("Embedding cache read failed", zap.Error(err))
			}
			if ok && len(vec) == s.engine.Dimensions() {
				s.snippets[i].Embedding = embedding.Normalize(vec)
				continue
			}
		}
		missing = append(missing, i)
	}

	if len(missing) == 0 {
		return nil
	}

	texts := make([]string, len(missing))
	for j, i := range missing {
		texts[j] = s.snippets[i].Text
	}

	vecs, err := s.engine.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed compliance snippets: %w", err)
	}
	if len(vecs) != len(missing) {
		return fmt.Errorf("expected %d embeddings, got %d", len(missing), len(vecs))
	}

	for j, i := range missing {
		if cache != nil {
			if err := cache.Put(Key(s.engine.Name(), s.snippets[i].Text), s.engine.Name(), vecs[j]); err != nil {
				s.logger.Warn("Embedding cache write failed", zap.Error(err))
			}
		}
		s.snippets[i].Embedding = embedding.Normalize(vecs[j])
	}
	return nil
}
