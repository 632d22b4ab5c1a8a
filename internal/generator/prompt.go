package generator

import (
	"fmt"
	"strings"

	"caseforge/internal/types"
)

const systemPrompt = `You are an expert QA engineer generating comprehensive, ` +
	`detailed software test cases that follow best practices for software testing. ` +
	`You always respond with strict JSON and nothing else.`

const schemaExample = `{
  "test_cases": [
    {
      "title": "Verify login with valid credentials",
      "description": "Ensures a user can log in successfully",
      "preconditions": ["User exists in system"],
      "test_steps": [
        {"step_number": 1, "description": "Navigate to login page", "expected_result": "Login page loads"},
        {"step_number": 2, "description": "Enter valid username and password", "expected_result": "Credentials are accepted"},
        {"step_number": 3, "description": "Click login button", "expected_result": "User is redirected to dashboard"}
      ],
      "expected_outcome": "User successfully logs in",
      "priority": "High"
    }
  ]
}`

// buildPrompt constructs the generation request for one requirement.
// Test and step identifiers are deliberately absent from the schema: the
// model is not trusted to produce correct ids, they are assigned after
// validation.
func buildPrompt(req types.Requirement, hints []string, casesMin, stepsMin int) string {
	var sb strings.Builder

	sb.WriteString("Generate detailed test cases for the following software requirement.\n\n")
	fmt.Fprintf(&sb, "Requirement (%s): %s\n\n", req.ID, req.Text)

	if len(hints) > 0 {
		fmt.Fprintf(&sb, "Relevant compliance context: %s\n\n", strings.Join(hints, ", "))
	}

	sb.WriteString("Rules:\n")
	fmt.Fprintf(&sb, "1. Create AT LEAST %d test cases for this requirement.\n", casesMin)
	sb.WriteString("2. Each test case MUST have: title, description, preconditions, " +
		"test_steps (each with step_number, description, expected_result), expected_outcome, " +
		"and priority (High/Medium/Low).\n")
	fmt.Fprintf(&sb, "3. Each test case MUST have MINIMUM %d detailed test steps.\n", stepsMin)
	sb.WriteString("4. Cover positive cases, negative cases, and edge cases.\n")
	sb.WriteString("5. Each step must be atomic and actionable with a specific expected result.\n")
	sb.WriteString("6. Make test cases specific and measurable, not generic statements.\n\n")

	sb.WriteString("Output must be strict JSON in this format:\n\n")
	sb.WriteString(schemaExample)
	sb.WriteString("\n\nRespond with the JSON object only, no commentary.")

	return sb.String()
}

// buildRepairPrompt asks the model to fix its previous response. The
// validation issues are spelled out so the correction is targeted rather
// than a blind re-roll.
func buildRepairPrompt(original string, issues []string) string {
	var sb strings.Builder

	sb.WriteString("Your previous response could not be used. Problems found:\n")
	for _, issue := range issues {
		fmt.Fprintf(&sb, "- %s\n", issue)
	}
	sb.WriteString("\nRe-answer the original request below, correcting every problem. " +
		"Respond with strict JSON only.\n\n")
	sb.WriteString(original)

	return sb.String()
}
