// Package types defines the data model shared by the generation pipeline:
// requirements, test cases, compliance snippets, and generation results.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Priority is the execution priority of a test case.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// NormalizePriority maps a model-supplied priority string onto the known
// enum. Unrecognized or empty values default to Medium; the model is not
// trusted to spell these consistently.
func NormalizePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	case "medium":
		return PriorityMedium
	default:
		return PriorityMedium
	}
}

// Requirement is one discrete unit of natural-language input describing
// desired system behavior. Immutable once parsed.
type Requirement struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	SequenceIndex int    `json:"sequence_index"`
}

// RequirementID formats the canonical requirement identifier for a
// 1-based sequence index.
func RequirementID(seq int) string {
	return fmt.Sprintf("REQ-%03d", seq)
}

// TestCaseID formats the canonical test case identifier for a requirement
// sequence and a 1-based per-requirement test sequence.
func TestCaseID(reqSeq, caseSeq int) string {
	return fmt.Sprintf("TC-REQ-%03d-%03d", reqSeq, caseSeq)
}

// TestStep is a single numbered step inside a test case.
type TestStep struct {
	StepNumber     int    `json:"step_number"`
	Description    string `json:"description"`
	ExpectedResult string `json:"expected_result"`
}

// TestCase is a structured test artifact derived from one requirement.
type TestCase struct {
	TestID          string     `json:"test_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Preconditions   []string   `json:"preconditions"`
	TestSteps       []TestStep `json:"test_steps"`
	ExpectedOutcome string     `json:"expected_outcome"`
	Priority        Priority   `json:"priority"`
	RequirementID   string     `json:"requirement_id"`
	ComplianceTags  []string   `json:"compliance_tags"`
	CreatedAt       time.Time  `json:"created_at"`
}

// DescriptiveText returns the combined text used for compliance matching.
// Same test case content always yields the same string, which keeps
// tagging idempotent.
func (tc *TestCase) DescriptiveText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{tc.Title, tc.Description, tc.ExpectedOutcome} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// ComplianceSnippet is a reference text fragment tied to a named standard.
// Snippets are loaded once at startup and read-only afterwards.
type ComplianceSnippet struct {
	Standard  string    `json:"standard"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"-"`
}

// ComplianceMatch pairs a snippet with its similarity score for one query.
type ComplianceMatch struct {
	Snippet *ComplianceSnippet
	Score   float64
}

// FailureStage identifies which phase of per-requirement processing failed.
type FailureStage string

const (
	StageGeneration FailureStage = "generation"
	StageValidation FailureStage = "validation"
)

// GenerationFailure records a per-requirement failure. Failures ride along
// with the successful results instead of aborting the batch.
type GenerationFailure struct {
	RequirementID string       `json:"requirement_id"`
	Stage         FailureStage `json:"stage"`
	Reason        string       `json:"reason"`
}

// GenerationResult is the outcome of one generation call. It is
// request-scoped and never persisted.
type GenerationResult struct {
	TestCases          []TestCase          `json:"test_cases"`
	Count              int                 `json:"count"`
	SourceRequirements []Requirement       `json:"source_requirements"`
	Failures           []GenerationFailure `json:"failures,omitempty"`
}
