// Package corpus manages the compliance reference data: snippet loading,
// embedding (with a persistent cache), and the in-memory similarity index
// queried by the tagger. The corpus is built once at startup and is
// read-only afterwards, so concurrent queries need no locking.
package corpus

import (
	"errors"
	"sort"

	"caseforge/internal/types"
)

// ErrIndexUnavailable is returned when the similarity index was never
// built, typically because corpus or encoder initialization failed.
// Callers are expected to degrade gracefully rather than abort.
var ErrIndexUnavailable = errors.New("similarity index not initialized")

// Index is an immutable inner-product index over unit-normalized snippet
// embeddings. Inner product on unit vectors equals cosine similarity.
type Index struct {
	entries []indexEntry
}

type indexEntry struct {
	snippet *types.ComplianceSnippet
	vec     []float32
}

// NewIndex builds an index from snippets whose Embedding fields are
// already unit-normalized. Snippet order is preserved and used as the
// tie-break for equal scores.
func NewIndex(snippets []types.ComplianceSnippet) *Index {
	entries := make([]indexEntry, 0, len(snippets))
	for i := range snippets {
		if len(snippets[i].Embedding) == 0 {
			continue
		}
		entries = append(entries, indexEntry{
			snippet: &snippets[i],
			vec:     snippets[i].Embedding,
		})
	}
	return &Index{entries: entries}
}

// Len returns the number of indexed snippets.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Query returns up to k snippets whose similarity to the query vector is
// at least threshold, scores descending. Ties keep snippet insertion
// order. Fewer than k results are returned when fewer clear the
// threshold; the index never pads with low-relevance matches.
func (ix *Index) Query(vec []float32, k int, threshold float64) []types.ComplianceMatch {
	if k <= 0 || len(vec) == 0 {
		return nil
	}

	matches := make([]types.ComplianceMatch, 0, len(ix.entries))
	for _, e := range ix.entries {
		if len(e.vec) != len(vec) {
			continue
		}
		var dot float64
		for i := range vec {
			dot += float64(vec[i]) * float64(e.vec[i])
		}
		if dot >= threshold {
			matches = append(matches, types.ComplianceMatch{Snippet: e.snippet, Score: dot})
		}
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}
