// Package embedding turns text into fixed-dimension vectors for the
// compliance similarity index. Backends: Google GenAI (cloud), Ollama
// (local server), and a deterministic hashing encoder that needs no
// network at all.
package embedding

import (
	"context"
	"fmt"
	"math"
)

// Engine generates vector embeddings for text. Implementations must be
// pure with respect to input text: the same text always yields the same
// vector.
type Engine interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of produced embeddings.
	Dimensions() int

	// Name returns the engine name, e.g. "genai:gemini-embedding-001".
	Name() string
}

// Config holds embedding engine configuration.
type Config struct {
	// Provider: "genai", "ollama" or "local"
	Provider string `yaml:"provider"`

	// GenAI configuration
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`

	// Ollama configuration
	Endpoint string `yaml:"endpoint"`

	// Dimensions for the local hashing encoder.
	Dimensions int `yaml:"dimensions"`
}

// DefaultConfig returns sensible defaults. The local encoder is the
// default so the pipeline works without any external service.
func DefaultConfig() Config {
	return Config{
		Provider:   "local",
		Model:      "gemini-embedding-001",
		Endpoint:   "http://localhost:11434",
		Dimensions: 256,
	}
}

// NewEngine creates an embedding engine based on configuration.
func NewEngine(cfg Config) (Engine, error) {
	switch cfg.Provider {
	case "genai":
		return NewGenAIEngine(cfg.APIKey, cfg.Model)
	case "ollama":
		return NewOllamaEngine(cfg.Endpoint, cfg.Model)
	case "local", "":
		return NewLocalEngine(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (use 'genai', 'ollama' or 'local')", cfg.Provider)
	}
}

// Normalize scales vec to unit length in place and returns it. Zero
// vectors are returned unchanged. The index stores and queries unit
// vectors only, so cosine similarity reduces to an inner product.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

// CosineSimilarity calculates the cosine similarity between two vectors.
// Returns a value between -1 and 1.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same length: %d != %d", len(a), len(b))
	}

	var dot, aMag, bMag float64
	for i := 0; i < len(a); i++ {
		dot += float64(a[i]) * float64(b[i])
		aMag += float64(a[i]) * float64(a[i])
		bMag += float64(b[i]) * float64(b[i])
	}

	if aMag == 0 || bMag == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(aMag) * math.Sqrt(bMag)), nil
}
