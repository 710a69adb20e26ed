// Package flow drives a single form-filling session across the ordered steps
// of an active layout: forward/back navigation gated on required fields,
// checkpointed draft creation, and the cross-field reset rules that fire on
// value changes.
package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/registry"
	"github.com/goliatone/go-intake/pkg/resolve"
)

// ValidationFailure blocks a forward transition when the current step has
// unmet required fields or constraint violations. It carries the human labels
// of the missing fields plus any violation messages, and is recovered locally
// by staying on the same step.
type ValidationFailure struct {
	Step       int
	Missing    []string
	Violations []string
}

func (e *ValidationFailure) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Violations) > 0 {
		parts = append(parts, strings.Join(e.Violations, "; "))
	}
	if len(parts) == 0 {
		parts = append(parts, "validation failed")
	}
	return fmt.Sprintf("flow: step %d %s", e.Step, strings.Join(parts, "; "))
}

// Option configures a Session.
type Option func(*Session)

// WithDraftSaver attaches the persistence boundary. Without it the session
// stays purely in memory.
func WithDraftSaver(saver *Saver) Option {
	return func(s *Session) {
		s.saver = saver
	}
}

// WithCheckpointStep sets the step after which the backing draft record must
// exist. Advancing past it creates the draft if one does not yet exist.
func WithCheckpointStep(step int) Option {
	return func(s *Session) {
		s.checkpoint = step
	}
}

// WithResetHooks registers cross-field side effects that run whenever a value
// changes, before the new value is stored.
func WithResetHooks(hooks ...ResetHook) Option {
	return func(s *Session) {
		s.hooks = append(s.hooks, hooks...)
	}
}

// WithSelectAll registers a select-all marker value for a multi-select field,
// e.g. a "Global" region that expands to the whole region list.
func WithSelectAll(fieldName, marker string) Option {
	return func(s *Session) {
		s.selectAll[fieldName] = marker
	}
}

// WithState resumes the session from a previously loaded draft state.
func WithState(state model.SubmissionState) Option {
	return func(s *Session) {
		s.state = state
	}
}

// Session is the step navigation state machine for one user filling one
// layout. All mutation happens sequentially in response to discrete user
// actions; Session is not safe for concurrent use.
type Session struct {
	layout     model.LayoutDocument
	fields     *registry.Registry
	state      model.SubmissionState
	saver      *Saver
	hooks      []ResetHook
	selectAll  map[string]string
	checkpoint int
}

// NewSession builds a session over doc and the resolved field registry.
func NewSession(doc model.LayoutDocument, fields *registry.Registry, opts ...Option) *Session {
	doc.SortSections()
	s := &Session{
		layout:     doc,
		fields:     fields,
		state:      *model.NewSubmissionState(),
		selectAll:  make(map[string]string),
		checkpoint: len(doc.Sections),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.state.CurrentStep < 1 {
		s.state.CurrentStep = 1
	}
	return s
}

// CurrentStep returns the 1-based step the session is on.
func (s *Session) CurrentStep() int { return s.state.CurrentStep }

// Steps returns the total number of steps in the layout.
func (s *Session) Steps() int { return len(s.layout.Sections) }

// State returns a snapshot of the submission state.
func (s *Session) State() model.SubmissionState {
	snapshot := s.state
	snapshot.Values = s.state.CloneValues()
	return snapshot
}

// Section returns the definition of the given 1-based step.
func (s *Session) Section(step int) (model.SectionDefinition, bool) {
	if step < 1 || step > len(s.layout.Sections) {
		return model.SectionDefinition{}, false
	}
	return s.layout.Sections[step-1], true
}

// Value returns the stored value for a field.
func (s *Session) Value(fieldName string) any {
	return s.state.Value(fieldName)
}

// SetValue runs the reset hooks and the select-all expansion, then stores the
// value and schedules a draft save when a backing record exists.
func (s *Session) SetValue(fieldName string, value any) {
	value = s.expandSelectAll(fieldName, value)
	for _, hook := range s.hooks {
		hook(fieldName, value, &s.state)
	}
	s.clearDependents(fieldName)
	s.state.SetValue(fieldName, value)
	s.scheduleSave()
}

// Next validates the current step's required fields and advances by one,
// capped at the last step. A refused transition returns *ValidationFailure
// with the missing field labels.
func (s *Session) Next(ctx context.Context) error {
	if failure := s.validateStep(s.state.CurrentStep); failure != nil {
		return failure
	}
	if s.state.CurrentStep < len(s.layout.Sections) {
		s.state.CurrentStep++
	}
	return s.afterAdvance(ctx)
}

// Previous moves back one step, floored at step 1. It never validates.
func (s *Session) Previous() {
	if s.state.CurrentStep > 1 {
		s.state.CurrentStep--
	}
}

// JumpTo moves to an arbitrary step. Backward jumps are unconditional;
// forward jumps validate the current step first.
func (s *Session) JumpTo(ctx context.Context, step int) error {
	if step < 1 {
		step = 1
	}
	if step > len(s.layout.Sections) {
		step = len(s.layout.Sections)
	}
	if step <= s.state.CurrentStep {
		s.state.CurrentStep = step
		return nil
	}
	if failure := s.validateStep(s.state.CurrentStep); failure != nil {
		return failure
	}
	s.state.CurrentStep = step
	return s.afterAdvance(ctx)
}

// Submit validates every step and marks the submission terminal. The draft,
// if any, receives a final synchronous save.
func (s *Session) Submit(ctx context.Context) error {
	for step := 1; step <= len(s.layout.Sections); step++ {
		if failure := s.validateStep(step); failure != nil {
			return failure
		}
	}
	s.state.Status = model.SubmissionStatusSubmitted
	if s.saver != nil && s.state.RecordID != "" {
		return s.saver.SaveNow(ctx, s.state.RecordID, s.state.CloneValues(), s.state.CurrentStep)
	}
	return nil
}

// afterAdvance creates the backing draft once the session moves past the
// checkpoint step, then schedules the step save.
func (s *Session) afterAdvance(ctx context.Context) error {
	if s.saver != nil && s.state.RecordID == "" && s.state.CurrentStep > s.checkpoint {
		recordID, err := s.saver.Create(ctx, s.state.CloneValues())
		if err != nil {
			return fmt.Errorf("flow: create draft: %w", err)
		}
		s.state.RecordID = recordID
	}
	s.scheduleSave()
	return nil
}

func (s *Session) scheduleSave() {
	if s.saver == nil || s.state.RecordID == "" {
		return
	}
	s.saver.Save(s.state.RecordID, s.state.CloneValues(), s.state.CurrentStep)
}

// validateStep checks the given step's required fields and value constraints
// in section order, returning nil when the step may be left.
func (s *Session) validateStep(step int) *ValidationFailure {
	section, ok := s.Section(step)
	if !ok {
		return nil
	}
	var missing, violations []string
	for _, name := range section.FieldNames {
		def, ok := s.fields.Get(name)
		if !ok {
			continue
		}
		value := s.state.Value(name)
		required := def.Required || section.RequiresField(name)
		if required && !resolve.RequiredSatisfied(def, value) {
			missing = append(missing, def.DisplayLabel())
			continue
		}
		violations = append(violations, resolve.ValidateValue(def, value)...)
	}
	if len(missing) == 0 && len(violations) == 0 {
		return nil
	}
	return &ValidationFailure{Step: step, Missing: missing, Violations: violations}
}

// expandSelectAll applies the marker expansion and deselection rule for
// multi-select fields that carry a select-all entry.
func (s *Session) expandSelectAll(fieldName string, value any) any {
	marker, ok := s.selectAll[fieldName]
	if !ok {
		return value
	}
	def, ok := s.fields.Get(fieldName)
	if !ok || def.Type != model.FieldTypeMultiSelect {
		return value
	}
	prev := resolve.NormalizeList(s.state.Value(fieldName))
	next := resolve.NormalizeList(value)
	return resolve.SelectAllTransition(prev, next, marker, def.Options)
}

// clearDependents wipes dependent fields configured to reset when their
// parent changes.
func (s *Session) clearDependents(parentName string) {
	for _, def := range s.fields.Fields() {
		dep := def.Dependency
		if dep == nil || dep.DependsOn != parentName || !dep.ClearOnParentChange {
			continue
		}
		s.state.ClearValue(def.Name)
	}
}
