// Package resolve decides how a merged field definition is drawn and how its
// stored value is shaped. A single dispatch table keyed by field type is the
// source of truth for rendering and validation decisions; nothing downstream
// special-cases a field by name.
package resolve

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-intake/pkg/model"
)

// RenderCategory is the closed set of rendering decisions a resolved field
// can land on.
type RenderCategory string

const (
	CategoryText        RenderCategory = "text"
	CategoryTextarea    RenderCategory = "textarea"
	CategoryNumber      RenderCategory = "number"
	CategoryDate        RenderCategory = "date"
	CategorySelect      RenderCategory = "select"
	CategoryMultiSelect RenderCategory = "multi_select"
	CategoryDependent   RenderCategory = "dependent_select"
	CategoryCheckbox    RenderCategory = "checkbox"
	CategoryFile        RenderCategory = "file"
	CategoryJSON        RenderCategory = "json"
	CategoryRichText    RenderCategory = "rich_text"
	CategoryDiagram     RenderCategory = "diagram"
)

// DependentMode describes the fallback state of a dependent select.
type DependentMode string

const (
	ModeBlocked  DependentMode = "blocked"
	ModeOptions  DependentMode = "options"
	ModeFreeText DependentMode = "free_text"
)

// Resolution is the runtime representation of one field: its render category,
// the normalized value shape and, for select-like fields, the option set.
type Resolution struct {
	Category RenderCategory
	// Value is a string for scalar categories and []string for list ones.
	Value any
	// List reports whether Value carries the list shape.
	List    bool
	Options []model.Option
	// Mode is set for dependent selects only.
	Mode DependentMode
	// Placeholder explains a blocked dependent field in place of its input.
	Placeholder string
	// Editable is false only for blocked dependent fields.
	Editable bool
}

// Strings returns the normalized list value, nil for scalar resolutions.
func (r Resolution) Strings() []string {
	if values, ok := r.Value.([]string); ok {
		return values
	}
	return nil
}

// Scalar returns the normalized scalar value, "" for list resolutions.
func (r Resolution) Scalar() string {
	if value, ok := r.Value.(string); ok {
		return value
	}
	return ""
}

// Config carries the tenant-swappable tables the resolver consults. Explicit
// configuration instead of package state, so tests and tenants can swap it.
type Config struct {
	// SelectAll maps a multi-select field name to the option value that, when
	// chosen, expands the selection to every option (e.g. region "Global").
	SelectAll map[string]string
}

// Option customises the resolver.
type Option func(*Resolver)

// WithConfig installs the tenant configuration tables.
func WithConfig(cfg Config) Option {
	return func(r *Resolver) {
		r.config = cfg
	}
}

// Resolver applies the dispatch table. The zero configuration is fully
// functional; configuration only adds tenant-specific behaviour.
type Resolver struct {
	config   Config
	dispatch map[model.FieldType]func(*Resolver, model.FieldDefinition, any, map[string]any) Resolution
}

// New constructs a Resolver applying any provided options.
func New(options ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	r.dispatch = dispatchTable()
	return r
}

// Resolve produces the runtime representation for a field given the raw
// stored value and the full current value map (needed for dependencies).
func (r *Resolver) Resolve(field model.FieldDefinition, raw any, values map[string]any) Resolution {
	if field.Dependency != nil {
		return r.resolveDependentField(field, raw, values)
	}
	handler, ok := r.dispatch[field.Type]
	if !ok {
		handler = (*Resolver).resolveText
	}
	return handler(r, field, raw, values)
}

func dispatchTable() map[model.FieldType]func(*Resolver, model.FieldDefinition, any, map[string]any) Resolution {
	return map[model.FieldType]func(*Resolver, model.FieldDefinition, any, map[string]any) Resolution{
		model.FieldTypeText:            (*Resolver).resolveText,
		model.FieldTypeTextarea:        (*Resolver).resolveTextarea,
		model.FieldTypeNumber:          (*Resolver).resolveNumber,
		model.FieldTypeEmail:           (*Resolver).resolveText,
		model.FieldTypeURL:             (*Resolver).resolveText,
		model.FieldTypeDate:            (*Resolver).resolveDate,
		model.FieldTypeSelect:          (*Resolver).resolveSelect,
		model.FieldTypeMultiSelect:     (*Resolver).resolveMultiSelect,
		model.FieldTypeDependentSelect: (*Resolver).resolveDependentDispatch,
		model.FieldTypeCheckbox:        (*Resolver).resolveCheckbox,
		model.FieldTypeFile:            (*Resolver).resolveFile,
		model.FieldTypeJSON:            (*Resolver).resolveJSON,
		model.FieldTypeRichText:        (*Resolver).resolveRichText,
		model.FieldTypeDiagram:         (*Resolver).resolveDiagram,
	}
}

func (r *Resolver) resolveText(field model.FieldDefinition, raw any, _ map[string]any) Resolution {
	return scalarResolution(CategoryText, raw)
}

func (r *Resolver) resolveTextarea(field model.FieldDefinition, raw any, _ map[string]any) Resolution {
	return scalarResolution(CategoryTextarea, raw)
}

func (r *Resolver) resolveNumber(field model.FieldDefinition, raw any, _ map[string]any) Resolution {
	return scalarResolution(CategoryNumber, raw)
}

func (r *Resolver) resolveDate(field model.FieldDefinition, raw any, _ map[string]any) Resolution {
	return scalarResolution(CategoryDate, raw)
}

func (r *Resolver) resolveCheckbox(field model.FieldDefinition, raw any, _ map[string]any) Resolution {
	value := "false"
	if truthy(raw) {
		value = "true"
	}
	return Resolution{Category: CategoryCheckbox, Value: value, Editable: true}
}

func (r *Resolver) resolveFile(field model.FieldDefinition, raw any, _ map[string]any) Resolution {
	return scalarResolution(CategoryFile, raw)
}

func (r *Resolver) resolveRichText(field model.FieldDefinition, raw any, _ map[string]any) Resolution {
	res := scalarResolution(CategoryRichText, raw)
	res.Value = sanitizeRichText(res.Scalar())
	return res
}

func (r *Resolver) resolveDiagram(field model.FieldDefinition, raw any, _ map[string]any) Resolution {
	return scalarResolution(CategoryDiagram, raw)
}

func (r *Resolver) resolveSelect(field model.FieldDefinition, raw any, _ map[string]any) Resolution {
	res := scalarResolution(CategorySelect, raw)
	res.Options = append([]model.Option(nil), field.Options...)
	return res
}

func (r *Resolver) resolveMultiSelect(field model.FieldDefinition, raw any, values map[string]any) Resolution {
	selected := NormalizeList(raw)
	if expandWith, ok := r.config.SelectAll[field.Name]; ok {
		selected = applySelectAll(selected, expandWith, field.Options)
	}
	return Resolution{
		Category: CategoryMultiSelect,
		Value:    selected,
		List:     true,
		Options:  append([]model.Option(nil), field.Options...),
		Editable: true,
	}
}

func (r *Resolver) resolveJSON(field model.FieldDefinition, raw any, _ map[string]any) Resolution {
	// A JSON field with options behaves like a multi-select over those
	// options; without options it stays a structured scalar blob.
	if len(field.Options) > 0 {
		return Resolution{
			Category: CategoryJSON,
			Value:    NormalizeList(raw),
			List:     true,
			Options:  append([]model.Option(nil), field.Options...),
			Editable: true,
		}
	}
	return scalarResolution(CategoryJSON, raw)
}

func (r *Resolver) resolveDependentDispatch(field model.FieldDefinition, raw any, values map[string]any) Resolution {
	// dependent_select without dependency config degrades to a plain select.
	if field.Dependency == nil {
		return r.resolveSelect(field, raw, values)
	}
	return r.resolveDependentField(field, raw, values)
}

func (r *Resolver) resolveDependentField(field model.FieldDefinition, raw any, values map[string]any) Resolution {
	parentValue := NormalizeScalar(valueOf(values, field.Dependency.DependsOn))
	result := ResolveDependent(parentValue, *field.Dependency)

	res := Resolution{
		Category: CategoryDependent,
		Value:    NormalizeScalar(raw),
		Options:  result.Options,
		Mode:     result.Mode,
		Editable: result.Mode != ModeBlocked,
	}
	if result.Mode == ModeBlocked {
		res.Placeholder = blockedPlaceholder(field.Dependency.DependsOn)
	}
	return res
}

func blockedPlaceholder(parentName string) string {
	return fmt.Sprintf("Select %s first", model.HumanizeName(parentName))
}

func scalarResolution(category RenderCategory, raw any) Resolution {
	return Resolution{
		Category: category,
		Value:    NormalizeScalar(raw),
		Editable: true,
	}
}

func valueOf(values map[string]any, name string) any {
	if values == nil {
		return nil
	}
	return values[name]
}

// NormalizeScalar collapses any raw stored value into a single string: an
// array collapses to its first element (empty string when empty), everything
// else is stringified.
func NormalizeScalar(raw any) string {
	switch value := raw.(type) {
	case nil:
		return ""
	case string:
		return value
	case []string:
		if len(value) == 0 {
			return ""
		}
		return value[0]
	case []any:
		if len(value) == 0 {
			return ""
		}
		return NormalizeScalar(value[0])
	case bool:
		if value {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(value)
	}
}

// NormalizeList coerces any raw stored value into an ordered string list: a
// scalar becomes a single-element list, a comma-joined string is split, and a
// JSON-array-shaped string is parsed.
func NormalizeList(raw any) []string {
	switch value := raw.(type) {
	case nil:
		return []string{}
	case []string:
		out := make([]string, len(value))
		copy(out, value)
		return out
	case []any:
		out := make([]string, 0, len(value))
		for _, entry := range value {
			if scalar := NormalizeScalar(entry); scalar != "" {
				out = append(out, scalar)
			}
		}
		return out
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return []string{}
		}
		if strings.HasPrefix(trimmed, "[") {
			var parsed []any
			if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
				return NormalizeList(parsed)
			}
		}
		if strings.Contains(trimmed, ",") {
			parts := strings.Split(trimmed, ",")
			out := make([]string, 0, len(parts))
			for _, part := range parts {
				if clean := strings.TrimSpace(part); clean != "" {
					out = append(out, clean)
				}
			}
			return out
		}
		return []string{trimmed}
	default:
		return []string{fmt.Sprint(value)}
	}
}

func truthy(raw any) bool {
	switch value := raw.(type) {
	case bool:
		return value
	case string:
		return value == "true"
	default:
		return false
	}
}
