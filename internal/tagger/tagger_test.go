package tagger

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"caseforge/internal/corpus"
	"caseforge/internal/embedding"
	"caseforge/internal/types"
)

func buildIndex(t *testing.T, engine embedding.Engine) *corpus.Index {
	t.Helper()
	snippets := []types.ComplianceSnippet{
		{Standard: "Security", Text: "Users must authenticate with a username and password before access is granted."},
		{Standard: "Security", Text: "Accounts lock after repeated failed login attempts."},
		{Standard: "HIPAA", Text: "Protected health information must be encrypted at rest and in transit."},
	}
	store, err := corpus.NewStoreFromSnippets(context.Background(), snippets, engine)
	if err != nil {
		t.Fatalf("Failed to build corpus: %v", err)
	}
	return store.Index()
}

func loginCase() *types.TestCase {
	return &types.TestCase{
		TestID:          "TC-REQ-001-001",
		Title:           "Login with valid username and password",
		Description:     "Verify a user can authenticate with a valid username and password.",
		ExpectedOutcome: "The user is logged in and redirected to the dashboard.",
	}
}

func TestTag_MatchesRelevantStandard(t *testing.T) {
	engine := embedding.NewLocalEngine(256)
	tg := New(engine, buildIndex(t, engine), 3, 0.1, nil)

	tags, err := tg.Tag(context.Background(), loginCase())
	if err != nil {
		t.Fatalf("Tag failed: %v", err)
	}
	found := false
	for _, tag := range tags {
		if tag == "Security" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected Security tag for a login test case, got %v", tags)
	}
}

func TestTag_Deterministic(t *testing.T) {
	engine := embedding.NewLocalEngine(256)
	tg := New(engine, buildIndex(t, engine), 3, 0.1, nil)

	first, err := tg.Tag(context.Background(), loginCase())
	if err != nil {
		t.Fatalf("Tag failed: %v", err)
	}
	second, err := tg.Tag(context.Background(), loginCase())
	if err != nil {
		t.Fatalf("Tag failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Tagging not deterministic: %v vs %v", first, second)
	}
}

func TestTag_DeduplicatesStandards(t *testing.T) {
	engine := embedding.NewLocalEngine(256)
	// Threshold 0 admits every snippet; both Security snippets match.
	tg := New(engine, buildIndex(t, engine), 10, 0.0, nil)

	tags, err := tg.Tag(context.Background(), loginCase())
	if err != nil {
		t.Fatalf("Tag failed: %v", err)
	}
	seen := map[string]int{}
	for _, tag := range tags {
		seen[tag]++
	}
	if seen["Security"] != 1 {
		t.Errorf("Expected Security exactly once, got %d in %v", seen["Security"], tags)
	}
}

func TestTag_EmptyBelowThreshold(t *testing.T) {
	engine := embedding.NewLocalEngine(256)
	tg := New(engine, buildIndex(t, engine), 3, 0.99, nil)

	tc := &types.TestCase{
		TestID:          "TC-REQ-002-001",
		Title:           "Export quarterly totals",
		Description:     "Verify report export produces a file.",
		ExpectedOutcome: "The exported file downloads successfully.",
	}
	tags, err := tg.Tag(context.Background(), tc)
	if err != nil {
		t.Fatalf("Tag failed: %v", err)
	}
	if tags == nil {
		t.Fatal("Expected empty slice, not nil")
	}
	if len(tags) != 0 {
		t.Errorf("Expected no tags above threshold 0.99, got %v", tags)
	}
}

func TestTag_NilIndexDegrades(t *testing.T) {
	tg := New(embedding.NewLocalEngine(64), nil, 3, 0.3, nil)

	tags, err := tg.Tag(context.Background(), loginCase())
	if err != nil {
		t.Fatalf("Tag with nil index should degrade, got error: %v", err)
	}
	if tags == nil || len(tags) != 0 {
		t.Errorf("Expected empty tag set, got %v", tags)
	}
}

type failingEngine struct{}

func (failingEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("encoder offline")
}
func (failingEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("encoder offline")
}
func (failingEngine) Dimensions() int { return 64 }
func (failingEngine) Name() string    { return "failing" }

func TestTag_EncoderError(t *testing.T) {
	engine := embedding.NewLocalEngine(64)
	tg := New(failingEngine{}, buildIndex(t, engine), 3, 0.3, nil)

	if _, err := tg.Tag(context.Background(), loginCase()); err == nil {
		t.Fatal("Expected error when the encoder fails")
	}
}

func TestContextHints_BestEffort(t *testing.T) {
	engine := embedding.NewLocalEngine(256)
	tg := New(engine, buildIndex(t, engine), 3, 0.1, nil)

	hints := tg.ContextHints(context.Background(), "The system shall allow users to login with username and password.")
	if len(hints) == 0 {
		t.Error("Expected at least one hint for a login requirement")
	}

	// A failing encoder yields no hints, never an error.
	broken := New(failingEngine{}, buildIndex(t, engine), 3, 0.1, nil)
	if hints := broken.ContextHints(context.Background(), "anything"); hints != nil {
		t.Errorf("Expected nil hints on encoder failure, got %v", hints)
	}
}
