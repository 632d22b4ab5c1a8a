// Package parser splits raw requirement text into discrete, identifiable
// requirement units.
//
// Three input shapes are recognized, tried in order: explicit "REQ-<n>:"
// labels, numbered lists ("1." or "1)"), and blank-line separated
// paragraphs as the fallback. Whatever shape matches, sequence indices are
// reassigned 1..n in input order and ids are always REQ-<3 digits>; the
// sequence index is the sole source of requirement identity.
package parser

import (
	"errors"
	"regexp"
	"strings"

	"caseforge/internal/types"
)

// ErrEmptyInput is returned when no usable requirement text remains after
// trimming.
var ErrEmptyInput = errors.New("no requirement text found in input")

var (
	reqLabelRE = regexp.MustCompile(`(?im)REQ-\d+\s*:`)
	numberedRE = regexp.MustCompile(`(?m)^[ \t]*\d+[.)][ \t]+`)
)

// Split parses raw text into requirements in input order.
func Split(raw string) ([]types.Requirement, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInput
	}

	units := splitLabeled(raw, reqLabelRE)
	if len(units) == 0 {
		units = splitLabeled(raw, numberedRE)
	}
	if len(units) == 0 {
		units = splitParagraphs(raw)
	}

	if len(units) == 0 {
		return nil, ErrEmptyInput
	}

	reqs := make([]types.Requirement, 0, len(units))
	for i, text := range units {
		seq := i + 1
		reqs = append(reqs, types.Requirement{
			ID:            types.RequirementID(seq),
			Text:          text,
			SequenceIndex: seq,
		})
	}
	return reqs, nil
}

// splitLabeled slices the text between occurrences of a label pattern.
// The label itself is dropped; only the body after it is kept.
func splitLabeled(raw string, label *regexp.Regexp) []string {
	locs := label.FindAllStringIndex(raw, -1)
	if len(locs) == 0 {
		return nil
	}

	units := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := strings.TrimSpace(raw[loc[1]:end])
		if body != "" {
			units = append(units, body)
		}
	}
	return units
}

// splitParagraphs is the fallback: blank-line separated blocks, with
// header and comment lines skipped.
func splitParagraphs(raw string) []string {
	var units []string
	for _, block := range strings.Split(raw, "\n\n") {
		p := strings.TrimSpace(block)
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, "#") || strings.HasPrefix(p, "//") {
			continue
		}
		units = append(units, p)
	}
	return units
}
