package model

import (
	"regexp"
	"strings"
)

// FieldType enumerates the rendering types a field definition may declare.
type FieldType string

const (
	FieldTypeText            FieldType = "text"
	FieldTypeTextarea        FieldType = "textarea"
	FieldTypeNumber          FieldType = "number"
	FieldTypeEmail           FieldType = "email"
	FieldTypeURL             FieldType = "url"
	FieldTypeDate            FieldType = "date"
	FieldTypeSelect          FieldType = "select"
	FieldTypeMultiSelect     FieldType = "multi_select"
	FieldTypeDependentSelect FieldType = "dependent_select"
	FieldTypeCheckbox        FieldType = "checkbox"
	FieldTypeFile            FieldType = "file"
	FieldTypeJSON            FieldType = "json"
	FieldTypeRichText        FieldType = "rich_text"
	FieldTypeDiagram         FieldType = "diagram"
)

// KnownFieldType reports whether the supplied type is part of the closed
// enumeration. Unknown types are normalised to text at the registry boundary
// rather than rejected.
func KnownFieldType(ft FieldType) bool {
	switch ft {
	case FieldTypeText, FieldTypeTextarea, FieldTypeNumber, FieldTypeEmail,
		FieldTypeURL, FieldTypeDate, FieldTypeSelect, FieldTypeMultiSelect,
		FieldTypeDependentSelect, FieldTypeCheckbox, FieldTypeFile,
		FieldTypeJSON, FieldTypeRichText, FieldTypeDiagram:
		return true
	default:
		return false
	}
}

// Provenance identifies the catalog a field definition originated from. The
// registry merges catalogs in declared precedence order, schema-backed
// definitions first.
type Provenance string

const (
	ProvenanceEntitySchema   Provenance = "entity_schema"
	ProvenanceEntityMetadata Provenance = "entity_metadata"
	ProvenanceCustomField    Provenance = "custom_field"
	ProvenanceMasterData     Provenance = "master_data"
	ProvenanceRequirement    Provenance = "requirement"
	ProvenanceCurrentUser    Provenance = "current_user"
	ProvenanceWorkflowTicket Provenance = "workflow_ticket"
)

// ProvenancePrecedence lists every provenance in merge order. Earlier entries
// carry the more authoritative field configuration.
func ProvenancePrecedence() []Provenance {
	return []Provenance{
		ProvenanceEntitySchema,
		ProvenanceEntityMetadata,
		ProvenanceCustomField,
		ProvenanceMasterData,
		ProvenanceRequirement,
		ProvenanceCurrentUser,
		ProvenanceWorkflowTicket,
	}
}

// Option is one selectable entry of a select-like field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Validation captures the optional constraints a field definition may carry.
// Pointer members distinguish "absent" from zero values.
type Validation struct {
	MinLength *int     `json:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	MinValue  *float64 `json:"min_value,omitempty"`
	MaxValue  *float64 `json:"max_value,omitempty"`
}

// Dependency describes a child field whose option set is derived from another
// field's current value.
type Dependency struct {
	DependsOn            string              `json:"depends_on"`
	OptionsByParentValue map[string][]Option `json:"options_by_parent_value,omitempty"`
	AllowCustomValue     bool                `json:"allow_custom_value,omitempty"`
	ClearOnParentChange  bool                `json:"clear_on_parent_change,omitempty"`
}

// FieldDefinition is the canonical, merged description of one form field.
type FieldDefinition struct {
	Name        string      `json:"name"`
	Label       string      `json:"label,omitempty"`
	Description string      `json:"description,omitempty"`
	Type        FieldType   `json:"type"`
	Required    bool        `json:"required"`
	Validation  *Validation `json:"validation,omitempty"`
	Options     []Option    `json:"options,omitempty"`
	Dependency  *Dependency `json:"dependency,omitempty"`
	Provenance  Provenance  `json:"provenance,omitempty"`
	// Category is a free-form grouping hint used by designer-time heuristics.
	Category string `json:"category,omitempty"`
}

// HasConfig reports whether the definition carries a specific configuration
// (options or a dependency). The registry uses it to decide whether a later
// descriptor may fill gaps in an earlier one.
func (f FieldDefinition) HasConfig() bool {
	return len(f.Options) > 0 || f.Dependency != nil
}

// SelectLike reports whether the field renders one or more choices.
func (f FieldDefinition) SelectLike() bool {
	switch f.Type {
	case FieldTypeSelect, FieldTypeMultiSelect, FieldTypeDependentSelect:
		return true
	default:
		return false
	}
}

// DisplayLabel returns the label, falling back to a humanised field name.
func (f FieldDefinition) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return HumanizeName(f.Name)
}

var fieldNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// ValidFieldName reports whether name matches the stable identifier format.
func ValidFieldName(name string) bool {
	return fieldNamePattern.MatchString(name)
}

// HumanizeName converts a snake_case field name into a display string.
func HumanizeName(name string) string {
	parts := strings.Split(strings.TrimSpace(name), "_")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		out = append(out, strings.ToUpper(part[:1])+part[1:])
	}
	return strings.Join(out, " ")
}
