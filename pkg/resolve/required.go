package resolve

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-intake/pkg/model"
)

// RequiredSatisfied reports whether a raw value satisfies a required field.
// Checkbox fields are satisfied only by an explicit true; every other field is
// satisfied by any value that is neither nil, empty string nor an empty list.
func RequiredSatisfied(field model.FieldDefinition, raw any) bool {
	if field.Type == model.FieldTypeCheckbox {
		return truthy(raw)
	}

	switch value := raw.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(value) != ""
	case []string:
		return len(NormalizeList(value)) > 0
	case []any:
		return len(NormalizeList(value)) > 0
	case bool:
		return true
	default:
		return strings.TrimSpace(fmt.Sprint(value)) != ""
	}
}

// ValidateValue applies the field's optional constraints to a raw value and
// returns human-readable violations. An unset value passes; required-ness is
// checked separately by RequiredSatisfied.
func ValidateValue(field model.FieldDefinition, raw any) []string {
	v := field.Validation
	if v == nil {
		return nil
	}

	scalar := NormalizeScalar(raw)
	if scalar == "" {
		return nil
	}

	label := field.DisplayLabel()
	var violations []string

	if v.MinLength != nil && len(scalar) < *v.MinLength {
		violations = append(violations, fmt.Sprintf("%s must be at least %d characters", label, *v.MinLength))
	}
	if v.MaxLength != nil && len(scalar) > *v.MaxLength {
		violations = append(violations, fmt.Sprintf("%s must be at most %d characters", label, *v.MaxLength))
	}
	if v.Pattern != "" {
		if re, err := regexp.Compile(v.Pattern); err == nil && !re.MatchString(scalar) {
			violations = append(violations, fmt.Sprintf("%s has an invalid format", label))
		}
	}
	if v.MinValue != nil || v.MaxValue != nil {
		if number, err := strconv.ParseFloat(scalar, 64); err == nil {
			if v.MinValue != nil && number < *v.MinValue {
				violations = append(violations, fmt.Sprintf("%s must be at least %s", label, formatBound(*v.MinValue)))
			}
			if v.MaxValue != nil && number > *v.MaxValue {
				violations = append(violations, fmt.Sprintf("%s must be at most %s", label, formatBound(*v.MaxValue)))
			}
		} else if field.Type == model.FieldTypeNumber {
			violations = append(violations, fmt.Sprintf("%s must be a number", label))
		}
	}

	return violations
}

func formatBound(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
