package model

import "fmt"

// FieldAccessRule stores the view/edit permission for one (field, role) pair.
// Absence of a rule means fail-open: the field is fully usable until an
// administrator configures it.
type FieldAccessRule struct {
	FieldName string `json:"field_name" yaml:"field_name"`
	Role      string `json:"role" yaml:"role"`
	CanView   bool   `json:"can_view" yaml:"can_view"`
	CanEdit   bool   `json:"can_edit" yaml:"can_edit"`
}

// Normalize enforces the write-time invariant that an editable field must
// also be viewable. Rules are stored normalised so reads can apply them
// verbatim.
func (r *FieldAccessRule) Normalize() {
	if r.CanEdit && !r.CanView {
		r.CanEdit = false
	}
}

// Validate rejects rules missing their identifying pair.
func (r FieldAccessRule) Validate() error {
	if r.FieldName == "" {
		return fmt.Errorf("model: access rule missing field name")
	}
	if r.Role == "" {
		return fmt.Errorf("model: access rule for field %q missing role", r.FieldName)
	}
	return nil
}
