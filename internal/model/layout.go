package model

import (
	"sort"
	"strings"
)

// LayoutType identifies which screen a layout document drives.
type LayoutType string

const (
	LayoutTypeSubmission LayoutType = "submission"
	LayoutTypeApprover   LayoutType = "approver"
	LayoutTypeRejection  LayoutType = "rejection"
	LayoutTypeCompleted  LayoutType = "completed"
)

// SectionDefinition is one ordered step of a layout. Field names reference
// FieldDefinition entries in the registry; a name may appear in at most one
// section of the whole layout.
type SectionDefinition struct {
	ID                string   `json:"id" yaml:"id"`
	Title             string   `json:"title" yaml:"title"`
	Description       string   `json:"description,omitempty" yaml:"description,omitempty"`
	Order             int      `json:"order" yaml:"order"`
	FieldNames        []string `json:"field_names" yaml:"field_names"`
	RequiredOverrides []string `json:"required_overrides,omitempty" yaml:"required_overrides,omitempty"`
}

// RequiresField reports whether name is forced required by this section.
func (s SectionDefinition) RequiresField(name string) bool {
	for _, override := range s.RequiredOverrides {
		if override == name {
			return true
		}
	}
	return false
}

// LayoutDocument is the ordered-steps presentation model authored by an
// administrator and consumed by the submission renderer.
type LayoutDocument struct {
	ID         string              `json:"id" yaml:"id"`
	Name       string              `json:"name" yaml:"name"`
	TenantID   string              `json:"tenant_id,omitempty" yaml:"tenant_id,omitempty"`
	LayoutType LayoutType          `json:"layout_type" yaml:"layout_type"`
	Sections   []SectionDefinition `json:"sections" yaml:"sections"`
	IsActive   bool                `json:"is_active" yaml:"is_active"`
	IsDefault  bool                `json:"is_default" yaml:"is_default"`
}

// SortSections orders sections by their declared order in place.
func (l *LayoutDocument) SortSections() {
	sort.SliceStable(l.Sections, func(i, j int) bool {
		return l.Sections[i].Order < l.Sections[j].Order
	})
}

// FieldNames returns every field referenced by the layout, in section order.
func (l LayoutDocument) FieldNames() []string {
	var names []string
	for _, section := range l.Sections {
		names = append(names, section.FieldNames...)
	}
	return names
}

// SectionIssue describes one structural problem found while validating a
// layout document. Saves are rejected with the full issue list so authors can
// fix everything in one pass.
type SectionIssue struct {
	SectionID string `json:"section_id" yaml:"section_id"`
	Field     string `json:"field,omitempty" yaml:"field,omitempty"`
	Reason    string `json:"reason" yaml:"reason"`
}

// ValidateLayout checks the structural invariants of a layout document:
// sections need an id, title and unique order, and no field may appear in two
// sections. The returned slice is empty for a valid document.
func ValidateLayout(doc LayoutDocument) []SectionIssue {
	var issues []SectionIssue

	ordersSeen := make(map[int]string, len(doc.Sections))
	fieldsSeen := make(map[string]string)

	for _, section := range doc.Sections {
		sectionID := section.ID
		if strings.TrimSpace(sectionID) == "" {
			issues = append(issues, SectionIssue{
				SectionID: sectionID,
				Reason:    "missing id",
			})
		}
		if strings.TrimSpace(section.Title) == "" {
			issues = append(issues, SectionIssue{
				SectionID: sectionID,
				Reason:    "missing title",
			})
		}
		if section.Order <= 0 {
			issues = append(issues, SectionIssue{
				SectionID: sectionID,
				Reason:    "missing order",
			})
		} else if other, dup := ordersSeen[section.Order]; dup {
			issues = append(issues, SectionIssue{
				SectionID: sectionID,
				Reason:    "duplicate order with section " + other,
			})
		} else {
			ordersSeen[section.Order] = sectionID
		}

		for _, name := range section.FieldNames {
			if other, dup := fieldsSeen[name]; dup {
				issues = append(issues, SectionIssue{
					SectionID: sectionID,
					Field:     name,
					Reason:    "field already present in section " + other,
				})
				continue
			}
			fieldsSeen[name] = sectionID
		}
	}

	return issues
}
