package resolve

import (
	"strings"

	"github.com/goliatone/go-intake/pkg/model"
)

// DependentResult is the outcome of resolving a dependent select against its
// parent's current value.
type DependentResult struct {
	Options []model.Option
	Mode    DependentMode
}

// ResolveDependent computes a child field's option set from its parent's
// current value. It is total: every (parentValue, dependency) pair yields
// exactly one of blocked, options or free_text, and it never fails.
//
// No parent value means the child is blocked. An empty option set for the
// parent value falls back to free text when custom values are allowed and
// stays blocked otherwise.
func ResolveDependent(parentValue string, dep model.Dependency) DependentResult {
	if strings.TrimSpace(parentValue) == "" {
		return DependentResult{Mode: ModeBlocked}
	}

	options := dep.OptionsByParentValue[parentValue]
	if len(options) == 0 {
		if dep.AllowCustomValue {
			return DependentResult{Mode: ModeFreeText}
		}
		return DependentResult{Mode: ModeBlocked}
	}

	out := make([]model.Option, len(options))
	copy(out, options)
	return DependentResult{Options: out, Mode: ModeOptions}
}
