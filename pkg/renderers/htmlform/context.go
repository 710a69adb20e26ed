package htmlform

import (
	"sort"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/resolve"
)

// buildContext flattens the step view into the map pongo2 templates consume.
// Per-field control decisions happen here so templates stay declarative.
func buildContext(view render.StepView, options render.RenderOptions) map[string]any {
	fields := make([]map[string]any, 0, len(view.Fields))
	for _, field := range view.Fields {
		fields = append(fields, fieldContext(field))
	}

	return map[string]any{
		"form": map[string]any{
			"layoutID":    view.LayoutID,
			"layoutName":  view.LayoutName,
			"sectionID":   view.SectionID,
			"title":       view.Title,
			"description": view.Description,
			// Formatted here: numeric context values round-trip through
			// JSON inside the template adapter and would print as floats.
			"step":        strconv.Itoa(view.Step),
			"steps":       strconv.Itoa(view.Steps),
			"hasPrevious": view.HasPrevious(),
			"hasNext":     view.HasNext(),
		},
		"fields":     fields,
		"formErrors": view.FormErrors,
		"hidden":     render.SortedHiddenFields(options.HiddenFields),
		"theme":      themeContext(options.Theme),
	}
}

func fieldContext(field render.FieldView) map[string]any {
	ctx := map[string]any{
		"name":        field.Name,
		"label":       field.Label,
		"description": field.Description,
		"placeholder": field.Placeholder,
		"required":    field.Required,
		"editable":    field.Editable,
		"widget":      widgetClass(field),
		"control":     controlFor(field),
		"inputType":   inputTypeFor(field.Category),
		"value":       field.Value,
		"values":      field.Values,
		"checked":     field.Value == "true",
		"multiple":    field.List,
		"options":     optionContexts(field),
		"errors":      field.Errors,
	}
	return ctx
}

// controlFor maps a decorated field onto the template control that renders
// it. Unknown widgets fall through to the category-driven default so new
// matchers degrade gracefully.
func controlFor(field render.FieldView) string {
	if field.Blocked() {
		return "blocked"
	}
	switch field.Widget {
	case "toggle":
		return "checkbox"
	case "chips":
		return "chips"
	case "select":
		return "select"
	case "json-editor", "rich-text-editor", "diagram-editor":
		return "editor"
	case "file-picker":
		return "file"
	}

	switch field.Category {
	case resolve.CategoryCheckbox:
		return "checkbox"
	case resolve.CategoryTextarea:
		return "textarea"
	case resolve.CategoryFile:
		return "file"
	case resolve.CategoryJSON, resolve.CategoryRichText, resolve.CategoryDiagram:
		return "editor"
	case resolve.CategorySelect, resolve.CategoryMultiSelect:
		if field.HasOptions() {
			return "select"
		}
	case resolve.CategoryDependent:
		if field.Mode == resolve.ModeOptions {
			return "select"
		}
	}
	return "input"
}

func inputTypeFor(category resolve.RenderCategory) string {
	switch category {
	case resolve.CategoryNumber:
		return "number"
	case resolve.CategoryDate:
		return "date"
	default:
		return "text"
	}
}

func widgetClass(field render.FieldView) string {
	if field.Widget != "" {
		return field.Widget
	}
	return string(field.Category)
}

func optionContexts(field render.FieldView) []map[string]any {
	if len(field.Options) == 0 {
		return nil
	}
	selected := make(map[string]struct{}, len(field.Values))
	for _, value := range field.Values {
		selected[value] = struct{}{}
	}

	out := make([]map[string]any, 0, len(field.Options))
	for _, option := range field.Options {
		label := option.Label
		if label == "" {
			label = option.Value
		}
		_, inList := selected[option.Value]
		out = append(out, map[string]any{
			"value":    option.Value,
			"label":    label,
			"selected": inList || (!field.List && option.Value == field.Value),
		})
	}
	return out
}

func themeContext(cfg *theme.RendererConfig) map[string]any {
	ctx := map[string]any{
		"name":       "",
		"variant":    "",
		"style":      "",
		"stylesheet": "",
		"inlineCSS":  defaultStylesheet(),
	}
	if cfg == nil {
		return ctx
	}

	ctx["name"] = cfg.Theme
	ctx["variant"] = cfg.Variant
	ctx["style"] = cssVarsStyle(cfg.CSSVars)
	if cfg.AssetURL != nil {
		if href := cfg.AssetURL(StylesheetName); href != "" {
			ctx["stylesheet"] = href
			ctx["inlineCSS"] = ""
		}
	}
	return ctx
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
