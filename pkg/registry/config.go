package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-intake/pkg/model"
)

// applyFieldConfig decodes the per-provenance field_config payload into the
// closed option/dependency/validation variants. This is the only place the
// nested configuration maps are inspected; downstream code works with typed
// structs exclusively.
func applyFieldConfig(def *model.FieldDefinition, config map[string]any) {
	if def == nil || len(config) == 0 {
		return
	}

	if options := decodeOptions(config["options"]); len(options) > 0 {
		def.Options = options
	}
	if dependency := decodeDependency(config["dependency"]); dependency != nil {
		def.Dependency = dependency
	}
	if validation := decodeValidation(config["validation"]); validation != nil {
		def.Validation = validation
	}
	if required, ok := config["required"].(bool); ok {
		def.Required = required
	}
}

// decodeOptions accepts the option shapes the catalogs emit: a list of
// {value,label} maps, a list of bare strings, or a value-to-label map
// serialised as JSON.
func decodeOptions(raw any) []model.Option {
	switch value := raw.(type) {
	case nil:
		return nil
	case []model.Option:
		out := make([]model.Option, len(value))
		copy(out, value)
		return out
	case []any:
		out := make([]model.Option, 0, len(value))
		for _, entry := range value {
			if option, ok := decodeOption(entry); ok {
				out = append(out, option)
			}
		}
		return out
	case []string:
		out := make([]model.Option, 0, len(value))
		for _, entry := range value {
			if trimmed := strings.TrimSpace(entry); trimmed != "" {
				out = append(out, model.Option{Value: trimmed, Label: trimmed})
			}
		}
		return out
	case string:
		var parsed []any
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			return nil
		}
		return decodeOptions(parsed)
	default:
		return nil
	}
}

func decodeOption(raw any) (model.Option, bool) {
	switch value := raw.(type) {
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return model.Option{}, false
		}
		return model.Option{Value: trimmed, Label: trimmed}, true
	case map[string]any:
		option := model.Option{
			Value: stringValue(value["value"]),
			Label: stringValue(value["label"]),
		}
		if option.Value == "" {
			option.Value = option.Label
		}
		if option.Label == "" {
			option.Label = option.Value
		}
		if option.Value == "" {
			return model.Option{}, false
		}
		return option, true
	default:
		return model.Option{}, false
	}
}

// decodeDependency reads the nested dependency JSON: depends_on,
// options_by_parent_value, allow_custom_value, clear_on_parent_change.
func decodeDependency(raw any) *model.Dependency {
	config, ok := raw.(map[string]any)
	if !ok || len(config) == 0 {
		return nil
	}

	dependsOn := stringValue(config["depends_on"])
	if dependsOn == "" {
		return nil
	}

	dep := &model.Dependency{DependsOn: dependsOn}

	if byParent, ok := config["options_by_parent_value"].(map[string]any); ok {
		dep.OptionsByParentValue = make(map[string][]model.Option, len(byParent))
		for parentValue, options := range byParent {
			dep.OptionsByParentValue[parentValue] = decodeOptions(options)
		}
	}
	if allow, ok := config["allow_custom_value"].(bool); ok {
		dep.AllowCustomValue = allow
	}
	if clear, ok := config["clear_on_parent_change"].(bool); ok {
		dep.ClearOnParentChange = clear
	}

	return dep
}

func decodeValidation(raw any) *model.Validation {
	config, ok := raw.(map[string]any)
	if !ok || len(config) == 0 {
		return nil
	}

	validation := &model.Validation{}
	populated := false

	if value, ok := intValue(config["min_length"]); ok {
		validation.MinLength = &value
		populated = true
	}
	if value, ok := intValue(config["max_length"]); ok {
		validation.MaxLength = &value
		populated = true
	}
	if pattern := stringValue(config["pattern"]); pattern != "" {
		validation.Pattern = pattern
		populated = true
	}
	if value, ok := floatValue(config["min_value"]); ok {
		validation.MinValue = &value
		populated = true
	}
	if value, ok := floatValue(config["max_value"]); ok {
		validation.MaxValue = &value
		populated = true
	}

	if !populated {
		return nil
	}
	return validation
}

func stringValue(raw any) string {
	switch value := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	case fmt.Stringer:
		return strings.TrimSpace(value.String())
	default:
		return ""
	}
}

func intValue(raw any) (int, bool) {
	switch value := raw.(type) {
	case int:
		return value, true
	case int64:
		return int(value), true
	case float64:
		return int(value), true
	case json.Number:
		parsed, err := value.Int64()
		if err != nil {
			return 0, false
		}
		return int(parsed), true
	default:
		return 0, false
	}
}

func floatValue(raw any) (float64, bool) {
	switch value := raw.(type) {
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case float64:
		return value, true
	case json.Number:
		parsed, err := value.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
