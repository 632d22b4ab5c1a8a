package generator

import (
	"regexp"
	"strings"
)

var trailingCommaRE = regexp.MustCompile(`,\s*([}\]])`)

// extractJSON pulls the outermost JSON object out of a model response.
// Models wrap payloads in markdown fences or prose often enough that a
// strict parse of the raw response is not worth attempting first.
func extractJSON(response string) string {
	response = stripCodeFences(response)

	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}

	// Find the matching closing brace, ignoring braces inside strings.
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		ch := response[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}
	return ""
}

// sanitizeJSON removes trailing commas, the one malformation cheap enough
// to fix locally instead of burning a repair round-trip on.
func sanitizeJSON(s string) string {
	return trailingCommaRE.ReplaceAllString(s, "$1")
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
