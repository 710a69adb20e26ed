// Package assign implements the designer-time heuristic that pre-populates a
// brand-new layout's steps from the field registry using keyword matching.
package assign

import (
	"strings"

	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/registry"
)

// StepKeywords maps one step to the keywords that pull fields into it. Steps
// are scanned in declared order and the first match wins.
type StepKeywords struct {
	SectionID string   `json:"section_id" yaml:"section_id"`
	Title     string   `json:"title" yaml:"title"`
	Keywords  []string `json:"keywords" yaml:"keywords"`
}

// Mapping is the full keyword-to-step table, passed in explicitly so tenants
// and tests can swap it without shared mutable state.
type Mapping struct {
	Steps []StepKeywords `json:"steps" yaml:"steps"`
	// Fallback, when set, receives every field no step matched. Empty means
	// unmatched fields stay unassigned.
	Fallback string `json:"fallback" yaml:"fallback"`
}

// Populate assigns every registry field to at most one step and returns the
// resulting sections in declared order. It only makes sense for layouts that
// have never been authored; callers must not run it against an existing
// document.
func Populate(fields *registry.Registry, mapping Mapping) []model.SectionDefinition {
	sections := make([]model.SectionDefinition, len(mapping.Steps))
	index := make(map[string]int, len(mapping.Steps))
	for i, step := range mapping.Steps {
		sections[i] = model.SectionDefinition{
			ID:    step.SectionID,
			Title: step.Title,
			Order: i + 1,
		}
		index[step.SectionID] = i
	}

	fallback, hasFallback := index[mapping.Fallback]
	for _, field := range fields.Fields() {
		if at, ok := match(field, mapping.Steps); ok {
			sections[at].FieldNames = append(sections[at].FieldNames, field.Name)
			continue
		}
		if hasFallback {
			sections[fallback].FieldNames = append(sections[fallback].FieldNames, field.Name)
		}
	}
	return sections
}

// match scans steps in order and returns the index of the first whose keyword
// set the field matches.
func match(field model.FieldDefinition, steps []StepKeywords) (int, bool) {
	haystack := strings.ToLower(strings.Join([]string{
		field.Name,
		field.Label,
		field.Description,
		field.Category,
	}, " "))

	for i, step := range steps {
		for _, keyword := range step.Keywords {
			keyword = strings.ToLower(strings.TrimSpace(keyword))
			if keyword == "" {
				continue
			}
			if strings.Contains(haystack, keyword) {
				return i, true
			}
		}
	}
	return 0, false
}
