package embedding

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"
)

// LocalEngine is a deterministic token-hashing encoder. Each token is
// hashed into a fixed-dimension term-frequency vector which is then
// L2-normalized. It captures lexical overlap only, not semantics, but it
// is fast, needs no network, and the same text always produces the same
// vector. Suitable as a degraded-mode encoder and for tests.
type LocalEngine struct {
	dims int
}

const defaultLocalDims = 256

var tokenRE = regexp.MustCompile(`[^a-z0-9]+`)

// NewLocalEngine creates a hashing encoder with the given dimensionality.
func NewLocalEngine(dims int) *LocalEngine {
	if dims <= 0 {
		dims = defaultLocalDims
	}
	return &LocalEngine{dims: dims}
}

// Embed generates an embedding for a single text.
func (e *LocalEngine) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dims]++
	}
	return Normalize(vec), nil
}

// EmbedBatch generates embeddings for multiple texts.
func (e *LocalEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vecs[i] = vec
	}
	return vecs, nil
}

// Dimensions returns the dimensionality of embeddings.
func (e *LocalEngine) Dimensions() int {
	return e.dims
}

// Name returns the engine name.
func (e *LocalEngine) Name() string {
	return "local:hashing-tf"
}

func tokenize(s string) []string {
	parts := tokenRE.Split(strings.ToLower(s), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		// single characters carry no signal
		if len(p) > 1 {
			out = append(out, p)
		}
	}
	return out
}
