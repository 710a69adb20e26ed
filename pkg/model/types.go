package model

import internalmodel "github.com/goliatone/go-intake/internal/model"

// FieldType re-exports the internal FieldType enumeration.
type FieldType = internalmodel.FieldType

const (
	FieldTypeText            = internalmodel.FieldTypeText
	FieldTypeTextarea        = internalmodel.FieldTypeTextarea
	FieldTypeNumber          = internalmodel.FieldTypeNumber
	FieldTypeEmail           = internalmodel.FieldTypeEmail
	FieldTypeURL             = internalmodel.FieldTypeURL
	FieldTypeDate            = internalmodel.FieldTypeDate
	FieldTypeSelect          = internalmodel.FieldTypeSelect
	FieldTypeMultiSelect     = internalmodel.FieldTypeMultiSelect
	FieldTypeDependentSelect = internalmodel.FieldTypeDependentSelect
	FieldTypeCheckbox        = internalmodel.FieldTypeCheckbox
	FieldTypeFile            = internalmodel.FieldTypeFile
	FieldTypeJSON            = internalmodel.FieldTypeJSON
	FieldTypeRichText        = internalmodel.FieldTypeRichText
	FieldTypeDiagram         = internalmodel.FieldTypeDiagram
)

// Provenance re-exports the catalog identifiers used for merge precedence.
type Provenance = internalmodel.Provenance

const (
	ProvenanceEntitySchema   = internalmodel.ProvenanceEntitySchema
	ProvenanceEntityMetadata = internalmodel.ProvenanceEntityMetadata
	ProvenanceCustomField    = internalmodel.ProvenanceCustomField
	ProvenanceMasterData     = internalmodel.ProvenanceMasterData
	ProvenanceRequirement    = internalmodel.ProvenanceRequirement
	ProvenanceCurrentUser    = internalmodel.ProvenanceCurrentUser
	ProvenanceWorkflowTicket = internalmodel.ProvenanceWorkflowTicket
)

// LayoutType re-exports the screen identifiers a layout may target.
type LayoutType = internalmodel.LayoutType

const (
	LayoutTypeSubmission = internalmodel.LayoutTypeSubmission
	LayoutTypeApprover   = internalmodel.LayoutTypeApprover
	LayoutTypeRejection  = internalmodel.LayoutTypeRejection
	LayoutTypeCompleted  = internalmodel.LayoutTypeCompleted
)

type SubmissionStatus = internalmodel.SubmissionStatus

const (
	SubmissionStatusDraft     = internalmodel.SubmissionStatusDraft
	SubmissionStatusSubmitted = internalmodel.SubmissionStatusSubmitted
)

type Option = internalmodel.Option
type Validation = internalmodel.Validation
type Dependency = internalmodel.Dependency
type FieldDefinition = internalmodel.FieldDefinition
type SectionDefinition = internalmodel.SectionDefinition
type LayoutDocument = internalmodel.LayoutDocument
type SectionIssue = internalmodel.SectionIssue
type FieldAccessRule = internalmodel.FieldAccessRule
type SubmissionState = internalmodel.SubmissionState

// ProvenancePrecedence returns every provenance in merge order.
func ProvenancePrecedence() []Provenance {
	return internalmodel.ProvenancePrecedence()
}

// ValidateLayout checks a layout document's structural invariants.
func ValidateLayout(doc LayoutDocument) []SectionIssue {
	return internalmodel.ValidateLayout(doc)
}

// NewSubmissionState starts a fresh draft session at step one.
func NewSubmissionState() *SubmissionState {
	return internalmodel.NewSubmissionState()
}

// ValidFieldName reports whether a name matches the stable identifier format.
func ValidFieldName(name string) bool {
	return internalmodel.ValidFieldName(name)
}

// HumanizeName converts a snake_case field name into a display string.
func HumanizeName(name string) string {
	return internalmodel.HumanizeName(name)
}

// KnownFieldType reports whether a field type is part of the closed set.
func KnownFieldType(ft FieldType) bool {
	return internalmodel.KnownFieldType(ft)
}
