// Package tagger attaches compliance standard tags to generated test
// cases by embedding their descriptive text and querying the compliance
// similarity index.
package tagger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"caseforge/internal/corpus"
	"caseforge/internal/embedding"
	"caseforge/internal/types"
)

// Tagger maps test case text to compliance standards. It is safe for
// concurrent use: the index is immutable and the engine is stateless.
type Tagger struct {
	engine    embedding.Engine
	index     *corpus.Index
	topK      int
	threshold float64
	logger    *zap.Logger
}

// New creates a tagger. index may be nil when corpus initialization
// failed; tagging then degrades to an empty tag set instead of failing
// generation, since compliance tagging is an enrichment.
func New(engine embedding.Engine, index *corpus.Index, topK int, threshold float64, logger *zap.Logger) *Tagger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if topK <= 0 {
		topK = 3
	}
	return &Tagger{
		engine:    engine,
		index:     index,
		topK:      topK,
		threshold: threshold,
		logger:    logger,
	}
}

// Tag returns the distinct compliance standards relevant to the test
// case, in first-seen order. An empty slice means no snippet cleared the
// threshold, which is a valid outcome, not an error.
func (t *Tagger) Tag(ctx context.Context, tc *types.TestCase) ([]string, error) {
	if t.index == nil || t.engine == nil {
		t.logger.Warn("Compliance tagging skipped",
			zap.String("test_id", tc.TestID),
			zap.Error(corpus.ErrIndexUnavailable))
		return []string{}, nil
	}

	vec, err := t.engine.Embed(ctx, tc.DescriptiveText())
	if err != nil {
		return nil, fmt.Errorf("failed to embed test case %s: %w", tc.TestID, err)
	}

	matches := t.index.Query(embedding.Normalize(vec), t.topK, t.threshold)

	tags := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.Snippet.Standard]; ok {
			continue
		}
		seen[m.Snippet.Standard] = struct{}{}
		tags = append(tags, m.Snippet.Standard)
	}
	return tags, nil
}

// ContextHints returns standards relevant to a requirement's raw text,
// used to enrich the generation prompt. Best effort: any failure yields
// no hints.
func (t *Tagger) ContextHints(ctx context.Context, text string) []string {
	if t.index == nil || t.engine == nil {
		return nil
	}
	vec, err := t.engine.Embed(ctx, text)
	if err != nil {
		return nil
	}
	matches := t.index.Query(embedding.Normalize(vec), t.topK, t.threshold)
	hints := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.Snippet.Standard]; ok {
			continue
		}
		seen[m.Snippet.Standard] = struct{}{}
		hints = append(hints, m.Snippet.Standard)
	}
	return hints
}
