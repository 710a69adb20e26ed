package model

// SubmissionStatus tracks the lifecycle of a form-filling session.
type SubmissionStatus string

const (
	SubmissionStatusDraft     SubmissionStatus = "draft"
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
)

// SubmissionState holds the in-memory values of one form-filling session.
// RecordID stays empty until the draft has been durably persisted at the
// checkpoint step.
type SubmissionState struct {
	RecordID    string           `json:"record_id,omitempty"`
	Values      map[string]any   `json:"values"`
	CurrentStep int              `json:"current_step"`
	Status      SubmissionStatus `json:"status"`
}

// NewSubmissionState starts a fresh draft session at step one.
func NewSubmissionState() *SubmissionState {
	return &SubmissionState{
		Values:      make(map[string]any),
		CurrentStep: 1,
		Status:      SubmissionStatusDraft,
	}
}

// Value returns the current raw value for a field, nil when unset.
func (s *SubmissionState) Value(name string) any {
	if s == nil || s.Values == nil {
		return nil
	}
	return s.Values[name]
}

// SetValue stores a raw value, initialising the map lazily so zero-value
// states loaded from persistence remain usable.
func (s *SubmissionState) SetValue(name string, value any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[name] = value
}

// ClearValue removes a stored value entirely rather than writing nil.
func (s *SubmissionState) ClearValue(name string) {
	if s.Values == nil {
		return
	}
	delete(s.Values, name)
}

// CloneValues returns a shallow copy of the stored values for persistence,
// so in-flight saves are isolated from later edits.
func (s *SubmissionState) CloneValues() map[string]any {
	if s == nil || len(s.Values) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(s.Values))
	for key, value := range s.Values {
		switch v := value.(type) {
		case []string:
			copied := make([]string, len(v))
			copy(copied, v)
			out[key] = copied
		case []any:
			copied := make([]any, len(v))
			copy(copied, v)
			out[key] = copied
		default:
			out[key] = v
		}
	}
	return out
}
