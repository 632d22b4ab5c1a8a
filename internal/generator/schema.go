package generator

import (
	"encoding/json"
	"fmt"
	"time"

	"caseforge/internal/types"
)

// rawEnvelope mirrors the JSON shape requested from the model. Field
// types are deliberately loose where the model cannot be trusted:
// step_number accepts anything since steps are renumbered anyway, and
// priority is normalized later.
type rawEnvelope struct {
	TestCases []rawTestCase `json:"test_cases"`
}

type rawTestCase struct {
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Preconditions   []string      `json:"preconditions"`
	TestSteps       []rawTestStep `json:"test_steps"`
	ExpectedOutcome string        `json:"expected_outcome"`
	Priority        string        `json:"priority"`
}

type rawTestStep struct {
	StepNumber     json.RawMessage `json:"step_number"`
	Description    string          `json:"description"`
	ExpectedResult string          `json:"expected_result"`
}

// decodeEnvelope extracts and parses the JSON envelope from a model
// response. A nil envelope with issues means the response was not usable
// JSON at all.
func decodeEnvelope(response string) (*rawEnvelope, []string) {
	payload := extractJSON(response)
	if payload == "" {
		return nil, []string{"no JSON object found in response"}
	}

	var env rawEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		// One local fix before asking the model to try again.
		if err2 := json.Unmarshal([]byte(sanitizeJSON(payload)), &env); err2 != nil {
			return nil, []string{fmt.Sprintf("response is not valid JSON: %v", err)}
		}
	}
	return &env, nil
}

// validateEnvelope checks the decoded structure field by field against
// the test case schema. Returns the full list of problems so a repair
// request can name all of them at once.
func validateEnvelope(env *rawEnvelope) []string {
	var issues []string

	if len(env.TestCases) == 0 {
		return []string{"test_cases is empty"}
	}

	for i, tc := range env.TestCases {
		if tc.Title == "" {
			issues = append(issues, fmt.Sprintf("test_cases[%d]: title is empty", i))
		}
		if tc.Description == "" {
			issues = append(issues, fmt.Sprintf("test_cases[%d]: description is empty", i))
		}
		if tc.ExpectedOutcome == "" {
			issues = append(issues, fmt.Sprintf("test_cases[%d]: expected_outcome is empty", i))
		}
		if len(tc.TestSteps) == 0 {
			issues = append(issues, fmt.Sprintf("test_cases[%d]: test_steps is empty", i))
			continue
		}
		for j, step := range tc.TestSteps {
			if step.Description == "" {
				issues = append(issues, fmt.Sprintf("test_cases[%d].test_steps[%d]: description is empty", i, j))
			}
			if step.ExpectedResult == "" {
				issues = append(issues, fmt.Sprintf("test_cases[%d].test_steps[%d]: expected_result is empty", i, j))
			}
		}
	}
	return issues
}

// convertEnvelope turns a validated envelope into final test cases.
// Identifiers are assigned here, never taken from the model: test ids are
// derived from the requirement sequence, steps are renumbered 1..m, and
// unrecognized priorities fall back to Medium.
func convertEnvelope(env *rawEnvelope, req types.Requirement, now time.Time) []types.TestCase {
	cases := make([]types.TestCase, 0, len(env.TestCases))
	for i, raw := range env.TestCases {
		steps := make([]types.TestStep, 0, len(raw.TestSteps))
		for j, rs := range raw.TestSteps {
			steps = append(steps, types.TestStep{
				StepNumber:     j + 1,
				Description:    rs.Description,
				ExpectedResult: rs.ExpectedResult,
			})
		}

		preconditions := raw.Preconditions
		if preconditions == nil {
			preconditions = []string{}
		}

		cases = append(cases, types.TestCase{
			TestID:          types.TestCaseID(req.SequenceIndex, i+1),
			Title:           raw.Title,
			Description:     raw.Description,
			Preconditions:   preconditions,
			TestSteps:       steps,
			ExpectedOutcome: raw.ExpectedOutcome,
			Priority:        types.NormalizePriority(raw.Priority),
			RequirementID:   req.ID,
			ComplianceTags:  []string{},
			CreatedAt:       now,
		})
	}
	return cases
}
