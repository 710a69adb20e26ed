package render

import (
	"strconv"
	"strings"
)

// ErrorMapping splits a server error payload into field-level messages keyed
// by field name plus form-level messages that no field could claim.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload normalises server error payloads (including JSON pointer
// style paths such as "#/values/llm_vendor") onto the field names present in
// the step view. Unknown paths are treated as form-level errors so messages
// are not lost.
func MapErrorPayload(view StepView, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		return mapping
	}

	names := make(map[string]struct{}, len(view.Fields))
	for _, field := range view.Fields {
		if field.Name != "" {
			names[field.Name] = struct{}{}
		}
	}

	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}

		name, formLevel := mapErrorPath(rawPath, names)
		if formLevel || name == "" {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[name] = append(mapping.Fields[name], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// mapErrorPath strips pointer prefixes, wrapper segments and numeric indices
// from a raw payload key and returns the first segment matching a known field
// name.
func mapErrorPath(raw string, names map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}

	for _, segment := range parsePathSegments(trimmed) {
		if _, ok := names[segment]; ok {
			return segment, false
		}
	}
	return "", true
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "$/")
	clean = strings.TrimPrefix(clean, "$.")
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimPrefix(clean, "#")
		clean = strings.TrimPrefix(clean, "/")
		clean = strings.TrimPrefix(clean, ".")
		clean = strings.TrimPrefix(clean, "$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = replacer.Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
