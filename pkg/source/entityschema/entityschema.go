// Package entityschema provides the entity-schema provenance source. It parses
// an OpenAPI document with kin-openapi and flattens the properties of a named
// component schema into raw field descriptors, carrying canonical select
// options for enumerated properties.
package entityschema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/source"
)

// Option customises the source before construction.
type Option func(*Source)

// WithSchemaName selects which component schema supplies the entity fields.
func WithSchemaName(name string) Option {
	return func(s *Source) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			s.schemaName = trimmed
		}
	}
}

// Source implements source.Source backed by an OpenAPI document payload.
type Source struct {
	name       string
	schemaName string
	raw        []byte
}

var _ source.Source = (*Source)(nil)

// New constructs an entity schema source from a raw OpenAPI payload (JSON or
// YAML). The document is parsed lazily on the first fetch.
func New(name string, raw []byte, options ...Option) *Source {
	s := &Source{name: name, raw: raw}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Name reports the source identifier used in load diagnostics.
func (s *Source) Name() string { return s.name }

// Provenance tags every descriptor as schema-backed, the most authoritative
// catalog in merge precedence.
func (s *Source) Provenance() model.Provenance { return model.ProvenanceEntitySchema }

// Fetch parses the document and converts the selected component schema's
// properties into field descriptors.
func (s *Source) Fetch(ctx context.Context, _ source.Context) ([]source.FieldDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.raw) == 0 {
		return nil, errors.New("entityschema: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(s.raw)
	if err != nil {
		return nil, fmt.Errorf("entityschema: load document: %w", err)
	}
	if spec.Components == nil || len(spec.Components.Schemas) == 0 {
		return nil, errors.New("entityschema: document has no component schemas")
	}

	ref, ok := spec.Components.Schemas[s.schemaName]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("entityschema: schema %q not found", s.schemaName)
	}

	return descriptorsFromSchema(ref.Value), nil
}

func descriptorsFromSchema(schema *openapi3.Schema) []source.FieldDescriptor {
	if schema == nil || len(schema.Properties) == 0 {
		return nil
	}

	requiredSet := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		requiredSet[name] = struct{}{}
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	descriptors := make([]source.FieldDescriptor, 0, len(names))
	for _, name := range names {
		prop := schema.Properties[name]
		if prop == nil || prop.Value == nil {
			continue
		}
		_, required := requiredSet[name]
		descriptors = append(descriptors, descriptorFromProperty(name, prop.Value, required))
	}
	return descriptors
}

func descriptorFromProperty(name string, prop *openapi3.Schema, required bool) source.FieldDescriptor {
	desc := source.FieldDescriptor{
		FieldName:   name,
		Label:       prop.Title,
		Description: prop.Description,
		Required:    required,
		FieldType:   mapPropertyType(prop),
	}

	config := make(map[string]any)
	if options := enumOptions(prop.Enum); len(options) > 0 {
		config["options"] = options
	}
	if prop.Items != nil && prop.Items.Value != nil {
		if options := enumOptions(prop.Items.Value.Enum); len(options) > 0 {
			config["options"] = options
		}
	}
	if validation := validationConfig(prop); len(validation) > 0 {
		config["validation"] = validation
	}
	if len(config) > 0 {
		desc.FieldConfig = config
	}
	return desc
}

func mapPropertyType(prop *openapi3.Schema) string {
	switch firstSchemaType(prop.Type) {
	case "boolean":
		return string(model.FieldTypeCheckbox)
	case "integer", "number":
		return string(model.FieldTypeNumber)
	case "array":
		return string(model.FieldTypeMultiSelect)
	case "object":
		return string(model.FieldTypeJSON)
	default:
		if len(prop.Enum) > 0 {
			return string(model.FieldTypeSelect)
		}
		switch strings.ToLower(prop.Format) {
		case "email":
			return string(model.FieldTypeEmail)
		case "uri", "url":
			return string(model.FieldTypeURL)
		case "date", "date-time":
			return string(model.FieldTypeDate)
		default:
			return string(model.FieldTypeText)
		}
	}
}

func enumOptions(enum []any) []any {
	if len(enum) == 0 {
		return nil
	}
	options := make([]any, 0, len(enum))
	for _, entry := range enum {
		value := fmt.Sprint(entry)
		if strings.TrimSpace(value) == "" {
			continue
		}
		options = append(options, map[string]any{"value": value, "label": value})
	}
	return options
}

func validationConfig(prop *openapi3.Schema) map[string]any {
	validation := make(map[string]any)
	if prop.MinLength != 0 {
		validation["min_length"] = int(prop.MinLength)
	}
	if prop.MaxLength != nil {
		validation["max_length"] = int(*prop.MaxLength)
	}
	if prop.Pattern != "" {
		validation["pattern"] = prop.Pattern
	}
	if prop.Min != nil {
		validation["min_value"] = *prop.Min
	}
	if prop.Max != nil {
		validation["max_value"] = *prop.Max
	}
	if len(validation) == 0 {
		return nil
	}
	return validation
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
