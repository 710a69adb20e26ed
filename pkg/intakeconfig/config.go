// Package intakeconfig loads the ambient configuration tables the engine is
// parameterised with: keyword-to-step mappings for designer-time
// auto-assignment, the vendor-to-model catalog, select-all markers, and the
// fallback sections used to populate fresh default layouts. Tables are plain
// structs passed into the components that consume them; nothing here is
// module-level state.
package intakeconfig

import (
	"github.com/goliatone/go-intake/pkg/assign"
	"github.com/goliatone/go-intake/pkg/model"
)

// SelectAllRule names a multi-select field whose marker entry expands the
// selection to every option.
type SelectAllRule struct {
	FieldName string `json:"field" yaml:"field"`
	Marker    string `json:"marker" yaml:"marker"`
}

// ResetRule wires a cross-field reset: changing Parent clears Child. When
// PreserveValid is true the child survives if its value is still listed in
// the vendor catalog for the new parent value.
type ResetRule struct {
	Parent        string `json:"parent" yaml:"parent"`
	Child         string `json:"child" yaml:"child"`
	PreserveValid bool   `json:"preserve_valid" yaml:"preserve_valid"`
}

// Config is the merged configuration for one tenant/screen.
type Config struct {
	Assignment       assign.Mapping                     `json:"assignment" yaml:"assignment"`
	VendorModels     map[string][]string                `json:"vendor_models" yaml:"vendor_models"`
	SelectAll        []SelectAllRule                    `json:"select_all" yaml:"select_all"`
	Resets           []ResetRule                        `json:"resets" yaml:"resets"`
	FallbackSections []model.SectionDefinition          `json:"fallback_sections" yaml:"fallback_sections"`
	AccessBypass     map[string]bool                    `json:"access_bypass" yaml:"access_bypass"`
	AccessRules      map[string][]model.FieldAccessRule `json:"access_rules" yaml:"access_rules"`
}

// Empty reports whether the config carries any tables at all.
func (c Config) Empty() bool {
	return len(c.Assignment.Steps) == 0 &&
		len(c.VendorModels) == 0 &&
		len(c.SelectAll) == 0 &&
		len(c.Resets) == 0 &&
		len(c.FallbackSections) == 0 &&
		len(c.AccessBypass) == 0 &&
		len(c.AccessRules) == 0
}

// SelectAllMarker returns the marker configured for fieldName, "" when none.
func (c Config) SelectAllMarker(fieldName string) string {
	for _, rule := range c.SelectAll {
		if rule.FieldName == fieldName {
			return rule.Marker
		}
	}
	return ""
}
