package embedding

import (
	"context"
	"math"
	"testing"
)

func TestLocalEngine_Deterministic(t *testing.T) {
	eng := NewLocalEngine(128)
	ctx := context.Background()

	a, err := eng.Embed(ctx, "user login with password")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	b, err := eng.Embed(ctx, "user login with password")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(a) != 128 || len(b) != 128 {
		t.Fatalf("Expected 128 dimensions, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Embedding not deterministic at dim %d: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestLocalEngine_UnitNorm(t *testing.T) {
	eng := NewLocalEngine(64)

	vec, err := eng.Embed(context.Background(), "access control for audit logs")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1.0) > 1e-5 {
		t.Errorf("Expected unit-length vector, got squared norm %f", sum)
	}
}

func TestLocalEngine_RelatedTextsScoreHigher(t *testing.T) {
	eng := NewLocalEngine(256)
	ctx := context.Background()

	base, _ := eng.Embed(ctx, "user authentication with password")
	near, _ := eng.Embed(ctx, "password authentication for users")
	far, _ := eng.Embed(ctx, "quarterly revenue report export")

	nearSim, err := CosineSimilarity(base, near)
	if err != nil {
		t.Fatalf("CosineSimilarity failed: %v", err)
	}
	farSim, err := CosineSimilarity(base, far)
	if err != nil {
		t.Fatalf("CosineSimilarity failed: %v", err)
	}
	if nearSim <= farSim {
		t.Errorf("Related texts should score higher: near=%f far=%f", nearSim, farSim)
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{1, 0, 0}
	c := []float32{0, 1, 0}

	got, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatalf("CosineSimilarity failed: %v", err)
	}
	if math.Abs(got-1.0) > 1e-6 {
		t.Errorf("Identical vectors: expected 1.0, got %f", got)
	}

	got, err = CosineSimilarity(a, c)
	if err != nil {
		t.Fatalf("CosineSimilarity failed: %v", err)
	}
	if math.Abs(got) > 1e-6 {
		t.Errorf("Orthogonal vectors: expected 0.0, got %f", got)
	}

	if _, err := CosineSimilarity(a, nil); err == nil {
		t.Error("Expected error for mismatched lengths")
	}
}

func TestNormalize(t *testing.T) {
	vec := []float32{3, 4}
	Normalize(vec)
	if math.Abs(float64(vec[0])-0.6) > 1e-6 || math.Abs(float64(vec[1])-0.8) > 1e-6 {
		t.Errorf("Expected [0.6 0.8], got %v", vec)
	}

	// Zero vectors stay untouched.
	zero := []float32{0, 0, 0}
	Normalize(zero)
	for _, v := range zero {
		if v != 0 {
			t.Fatalf("Zero vector should remain zero, got %v", zero)
		}
	}
}

func TestNewEngine_UnsupportedProvider(t *testing.T) {
	_, err := NewEngine(Config{Provider: "quantum"})
	if err == nil {
		t.Fatal("Expected error for unsupported provider")
	}
}

func TestEmbedBatch_Local(t *testing.T) {
	eng := NewLocalEngine(32)

	vecs, err := eng.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("Expected 3 vectors, got %d", len(vecs))
	}
}
