package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"caseforge/internal/config"
	"caseforge/internal/generator"
	"caseforge/internal/types"
)

// scriptedClient returns one canned response for every model call.
type scriptedClient struct {
	response string
	err      error
}

func (c scriptedClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.response, c.err
}

func (c scriptedClient) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	return c.response, c.err
}

const cannedResponse = `{
  "test_cases": [
    {
      "title": "Login with valid credentials",
      "description": "Verify a user can log in.",
      "preconditions": ["A registered account exists"],
      "test_steps": [
        {"step_number": 1, "description": "Open the login page", "expected_result": "Form is shown"},
        {"step_number": 2, "description": "Enter credentials", "expected_result": "Fields accept input"},
        {"step_number": 3, "description": "Submit the form", "expected_result": "Dashboard loads"}
      ],
      "expected_outcome": "User is authenticated.",
      "priority": "High"
    }
  ]
}`

func newTestServer(client scriptedClient, health generator.Health) *Server {
	gen := generator.New(client, nil, generator.DefaultOptions(), nil)
	svc := generator.NewService(gen, health, nil)
	return New(config.ServerConfig{Host: "127.0.0.1", Port: 0}, svc, nil)
}

func healthyServer() *Server {
	return newTestServer(scriptedClient{response: cannedResponse}, generator.Health{Ready: true})
}

func TestGenerateEndpoint(t *testing.T) {
	srv := httptest.NewServer(healthyServer().Handler())
	defer srv.Close()

	body := `{"text": "The system shall allow users to login with username and password."}`
	resp, err := http.Post(srv.URL+"/generate", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /generate failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("Expected an X-Request-ID header")
	}

	var result types.GenerationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.Count != 1 || len(result.TestCases) != 1 {
		t.Fatalf("Expected 1 test case, got count=%d len=%d", result.Count, len(result.TestCases))
	}
	if result.TestCases[0].TestID != "TC-REQ-001-001" {
		t.Errorf("Unexpected test id %s", result.TestCases[0].TestID)
	}
}

func TestGenerateEndpoint_EmptyText(t *testing.T) {
	srv := httptest.NewServer(healthyServer().Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/generate", "application/json", strings.NewReader(`{"text": "   "}`))
	if err != nil {
		t.Fatalf("POST /generate failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400 for empty text, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	if body["detail"] == "" {
		t.Error("Expected a detail message in the error body")
	}
}

func TestGenerateEndpoint_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(healthyServer().Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/generate", "application/json", strings.NewReader("not json"))
	if err != nil {
		t.Fatalf("POST /generate failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid JSON, got %d", resp.StatusCode)
	}
}

func TestGenerateEndpoint_MethodNotAllowed(t *testing.T) {
	srv := httptest.NewServer(healthyServer().Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/generate")
	if err != nil {
		t.Fatalf("GET /generate failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", resp.StatusCode)
	}
}

func TestGenerateEndpoint_PartialFailureStillOK(t *testing.T) {
	// Every model call errors: all requirements fail, the call succeeds.
	srv := httptest.NewServer(newTestServer(
		scriptedClient{err: errors.New("model offline")},
		generator.Health{Ready: true},
	).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/generate", "application/json",
		strings.NewReader(`{"text": "The system shall send notifications."}`))
	if err != nil {
		t.Fatalf("POST /generate failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Per-requirement failures must not fail the call, got %d", resp.StatusCode)
	}
	var result types.GenerationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.Count != 0 || len(result.Failures) != 1 {
		t.Errorf("Expected 0 cases and 1 failure, got count=%d failures=%d",
			result.Count, len(result.Failures))
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := httptest.NewServer(healthyServer().Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode health body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("Expected healthy, got %q", body["status"])
	}
}

func TestHealthEndpoint_Degraded(t *testing.T) {
	srv := httptest.NewServer(newTestServer(
		scriptedClient{response: cannedResponse},
		generator.Health{Ready: false, Message: "compliance corpus unavailable"},
	).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode health body: %v", err)
	}
	if body["status"] != "degraded" {
		t.Errorf("Expected degraded, got %q", body["status"])
	}
	if body["message"] == "" {
		t.Error("Degraded health should carry a diagnostic message")
	}
}

func TestRootEndpoint(t *testing.T) {
	srv := httptest.NewServer(healthyServer().Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	// Unknown paths fall through to 404.
	resp2, err := http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatalf("GET /nope failed: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", resp2.StatusCode)
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := httptest.NewServer(healthyServer().Handler())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/generate", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS /generate failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204 for preflight, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard CORS origin, got %q", got)
	}
}
