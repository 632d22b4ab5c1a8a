package llm

import "context"

// MockClient returns a fixed, schema-valid completion without calling
// any external service. It lets the full pipeline run offline: local
// development, demos, smoke tests.
type MockClient struct{}

// NewMockClient creates a mock client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

const mockCompletion = `{
  "test_cases": [
    {
      "title": "Verify the primary flow succeeds",
      "description": "Exercise the requirement's main path with valid input.",
      "preconditions": ["The system is running and reachable"],
      "test_steps": [
        {"step_number": 1, "description": "Prepare valid input for the requirement", "expected_result": "Input is accepted"},
        {"step_number": 2, "description": "Perform the described operation", "expected_result": "The operation completes without error"},
        {"step_number": 3, "description": "Inspect the outcome", "expected_result": "The outcome matches the requirement"}
      ],
      "expected_outcome": "The requirement's primary behavior works as described.",
      "priority": "High"
    },
    {
      "title": "Verify invalid input is rejected",
      "description": "Exercise the requirement with malformed input.",
      "preconditions": ["The system is running and reachable"],
      "test_steps": [
        {"step_number": 1, "description": "Prepare malformed input", "expected_result": "Input is ready"},
        {"step_number": 2, "description": "Perform the described operation", "expected_result": "The operation is rejected"},
        {"step_number": 3, "description": "Inspect the error reported", "expected_result": "A clear validation error is shown"}
      ],
      "expected_outcome": "Malformed input is rejected with a clear error and no side effects.",
      "priority": "Medium"
    },
    {
      "title": "Verify behavior at boundary values",
      "description": "Exercise the requirement at the edges of its accepted range.",
      "preconditions": ["The system is running and reachable"],
      "test_steps": [
        {"step_number": 1, "description": "Prepare input at the smallest accepted value", "expected_result": "Input is accepted"},
        {"step_number": 2, "description": "Prepare input at the largest accepted value", "expected_result": "Input is accepted"},
        {"step_number": 3, "description": "Perform the operation with each boundary input", "expected_result": "Both complete without error"}
      ],
      "expected_outcome": "Boundary values are handled the same as interior values.",
      "priority": "Low"
    }
  ]
}`

// Complete returns the canned completion.
func (c *MockClient) Complete(_ context.Context, _ string) (string, error) {
	return mockCompletion, nil
}

// CompleteWithSystem returns the canned completion.
func (c *MockClient) CompleteWithSystem(_ context.Context, _, _ string) (string, error) {
	return mockCompletion, nil
}
