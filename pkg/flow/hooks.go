package flow

import (
	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/resolve"
)

// ResetHook is a cross-field side effect attached to a specific field name.
// It runs before the changed value is stored and may clear or rewrite other
// fields on the state.
type ResetHook func(fieldName string, value any, state *model.SubmissionState)

// ClearOnChange clears child whenever parent changes, regardless of the new
// value. Used for taxonomy pairs where the old child can never remain valid,
// such as category and subcategory.
func ClearOnChange(parent, child string) ResetHook {
	return func(fieldName string, _ any, state *model.SubmissionState) {
		if fieldName != parent {
			return
		}
		state.ClearValue(child)
	}
}

// PreserveValidChoice clears child when parent changes, unless the currently
// stored child value is still listed in catalog for the new parent value.
// Used for vendor and model pickers where a model may be offered by several
// vendors.
func PreserveValidChoice(parent, child string, catalog map[string][]string) ResetHook {
	return func(fieldName string, value any, state *model.SubmissionState) {
		if fieldName != parent {
			return
		}
		current := resolve.NormalizeScalar(state.Value(child))
		if current == "" {
			return
		}
		for _, allowed := range catalog[resolve.NormalizeScalar(value)] {
			if allowed == current {
				return
			}
		}
		state.ClearValue(child)
	}
}
