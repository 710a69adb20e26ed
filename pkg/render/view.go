package render

import (
	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/resolve"
)

// FieldView is one fully resolved control on a step: definition, access,
// dependency state and normalized value folded into the shape renderers
// consume. Renderers never reach back into the registry.
type FieldView struct {
	Name        string
	Label       string
	Description string
	Category    resolve.RenderCategory
	Required    bool
	List        bool
	Value       string
	Values      []string
	Options     []model.Option
	Mode        resolve.DependentMode
	Placeholder string
	Editable    bool
	Errors      []string
	// Widget names the presentation component that owns this control, for
	// the rich types (rich-text, diagram, file) delegated to external
	// editors. Set by the widget registry; empty means the renderer's
	// default control for the category.
	Widget string
}

// HasOptions reports whether the control offers a fixed choice set.
func (f FieldView) HasOptions() bool {
	return len(f.Options) > 0
}

// Blocked reports whether a dependent control is waiting on its parent.
func (f FieldView) Blocked() bool {
	return f.Mode == resolve.ModeBlocked
}

// StepView is the render model for one step of a multi-step form. It carries
// only what the step shows; other steps are reachable through the navigation
// hints.
type StepView struct {
	LayoutID    string
	LayoutName  string
	SectionID   string
	Title       string
	Description string
	Step        int
	Steps       int
	Fields      []FieldView
	// FormErrors carries messages that could not be attributed to any field
	// on this step; renderers surface them in a step-level alert.
	FormErrors []string
	// Loading is set while the provenance join for the controlling context is
	// still in flight; renderers show a progress state instead of controls.
	Loading bool
	// NotConfigured is set when the screen has no active layout. Fatal to
	// rendering the form; renderers show an explicit empty state.
	NotConfigured bool
}

// HasPrevious reports whether backward navigation is possible.
func (v StepView) HasPrevious() bool { return v.Step > 1 }

// HasNext reports whether this is not the final step.
func (v StepView) HasNext() bool { return v.Step < v.Steps }

// Field returns the view for a named field on this step.
func (v StepView) Field(name string) (FieldView, bool) {
	for _, field := range v.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldView{}, false
}
