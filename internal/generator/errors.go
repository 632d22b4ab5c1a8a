package generator

import (
	"fmt"
	"strings"
)

// ServiceError reports a language-model call that failed for one
// requirement after the bounded retry: timeout, auth, quota, or a
// malformed/empty response. It never aborts sibling requirements.
type ServiceError struct {
	RequirementID string
	Err           error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("generation service failed for %s: %v", e.RequirementID, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ValidationError reports model output that could not be coerced into the
// test case schema after the configured repair attempts.
type ValidationError struct {
	RequirementID string
	Issues        []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("model output for %s failed schema validation: %s",
		e.RequirementID, strings.Join(e.Issues, "; "))
}
