package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaEngine_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.Model != "embeddinggemma" {
			t.Errorf("Unexpected model %s", req.Model)
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	eng, err := NewOllamaEngine(srv.URL, "")
	if err != nil {
		t.Fatalf("NewOllamaEngine failed: %v", err)
	}

	vec, err := eng.Embed(context.Background(), "some requirement")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 3 || vec[2] != 0.3 {
		t.Errorf("Unexpected embedding %v", vec)
	}
}

func TestOllamaEngine_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	eng, _ := NewOllamaEngine(srv.URL, "missing")
	if _, err := eng.Embed(context.Background(), "text"); err == nil {
		t.Fatal("Expected error for non-200 response")
	}
}

func TestOllamaEngine_EmbedBatchSequential(t *testing.T) {
	var count int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count++
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{float32(count)}})
	}))
	defer srv.Close()

	eng, _ := NewOllamaEngine(srv.URL, "embeddinggemma")
	vecs, err := eng.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if len(vecs) != 3 || count != 3 {
		t.Fatalf("Expected 3 sequential calls, got %d vectors from %d calls", len(vecs), count)
	}
	// Order of results matches input order.
	if vecs[0][0] != 1 || vecs[2][0] != 3 {
		t.Errorf("Results out of order: %v", vecs)
	}
}
