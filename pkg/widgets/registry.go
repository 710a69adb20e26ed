// Package widgets selects the presentation component for each resolved field.
// The rich widget types (rich-text editor, diagram editor, file picker) are
// delegated entirely to external components; the registry only decides which
// component name a field maps to.
package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/resolve"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetToggle         = "toggle"
	WidgetSelect         = "select"
	WidgetChips          = "chips"
	WidgetJSONEditor     = "json-editor"
	WidgetRichTextEditor = "rich-text-editor"
	WidgetDiagramEditor  = "diagram-editor"
	WidgetFilePicker     = "file-picker"
)

// Matcher decides whether a widget should handle the supplied field view.
type Matcher func(field render.FieldView) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields based on registered matchers. Higher
// priority wins; ties fall back to registration order. An empty registry
// never resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in widget matchers
// registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a field. A widget already set on the
// view is honoured before matcher evaluation.
func (r *Registry) Resolve(field render.FieldView) (string, bool) {
	if explicit := strings.TrimSpace(field.Widget); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Decorate applies registry resolution to every field on the step, preserving
// widgets already chosen upstream.
func (r *Registry) Decorate(view *render.StepView) {
	if r == nil || view == nil {
		return
	}
	for i := range view.Fields {
		if view.Fields[i].Widget != "" {
			continue
		}
		if widget, ok := r.Resolve(view.Fields[i]); ok {
			view.Fields[i].Widget = widget
		}
	}
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetRichTextEditor, 90, func(field render.FieldView) bool {
		return field.Category == resolve.CategoryRichText
	})

	r.Register(WidgetDiagramEditor, 90, func(field render.FieldView) bool {
		return field.Category == resolve.CategoryDiagram
	})

	r.Register(WidgetFilePicker, 90, func(field render.FieldView) bool {
		return field.Category == resolve.CategoryFile
	})

	r.Register(WidgetToggle, 80, func(field render.FieldView) bool {
		return field.Category == resolve.CategoryCheckbox
	})

	r.Register(WidgetChips, 70, func(field render.FieldView) bool {
		return field.Category == resolve.CategoryMultiSelect && field.HasOptions()
	})

	r.Register(WidgetSelect, 60, func(field render.FieldView) bool {
		switch field.Category {
		case resolve.CategorySelect, resolve.CategoryDependent:
			return field.Mode != resolve.ModeFreeText
		default:
			return false
		}
	})

	r.Register(WidgetJSONEditor, 50, func(field render.FieldView) bool {
		return field.Category == resolve.CategoryJSON && !field.List
	})
}
