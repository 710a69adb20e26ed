package resolve

import "github.com/goliatone/go-intake/pkg/model"

// applySelectAll expands a selection containing the select-all option into
// the full option list, keeping the declared option order.
func applySelectAll(selected []string, allValue string, options []model.Option) []string {
	if allValue == "" || !contains(selected, allValue) {
		return selected
	}
	out := make([]string, 0, len(options))
	for _, option := range options {
		out = append(out, option.Value)
	}
	return out
}

// SelectAllTransition applies the select-all rule across a value change.
// Newly choosing the select-all option expands the selection to every option;
// removing any other entry while select-all is still present drops the
// select-all marker so the remaining explicit choices stand.
func SelectAllTransition(prev, next []string, allValue string, options []model.Option) []string {
	if allValue == "" {
		return next
	}

	hadAll := contains(prev, allValue)
	hasAll := contains(next, allValue)

	if hasAll && !hadAll {
		return applySelectAll(next, allValue, options)
	}

	if hasAll && hadAll {
		for _, entry := range prev {
			if entry == allValue {
				continue
			}
			if !contains(next, entry) {
				return without(next, allValue)
			}
		}
	}

	return next
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func without(values []string, target string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value == target {
			continue
		}
		out = append(out, value)
	}
	return out
}
