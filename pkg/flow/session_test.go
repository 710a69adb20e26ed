package flow_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/flow"
	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/registry"
	"github.com/goliatone/go-intake/pkg/source"
)

func buildRegistry(t *testing.T, descriptors []source.FieldDescriptor) *registry.Registry {
	t.Helper()

	result := source.Result{
		Collections: map[model.Provenance][]source.FieldDescriptor{
			model.ProvenanceEntitySchema: descriptors,
		},
	}
	return registry.NewBuilder().Build(result)
}

func twoStepLayout() model.LayoutDocument {
	return model.LayoutDocument{
		ID:         "layout-1",
		Name:       "Submission",
		LayoutType: model.LayoutTypeSubmission,
		IsActive:   true,
		Sections: []model.SectionDefinition{
			{ID: "basics", Title: "Basics", Order: 1, FieldNames: []string{"name", "type"}},
			{ID: "details", Title: "Details", Order: 2, FieldNames: []string{"description"}},
		},
	}
}

func basicFields() []source.FieldDescriptor {
	return []source.FieldDescriptor{
		{FieldName: "name", Label: "Name", FieldType: "text", Required: true},
		{FieldName: "type", Label: "Type", FieldType: "select", Required: true},
		{FieldName: "description", FieldType: "textarea"},
	}
}

func TestNextBlockedReportsMissingLabels(t *testing.T) {
	session := flow.NewSession(twoStepLayout(), buildRegistry(t, basicFields()))
	session.SetValue("name", "Agent X")
	session.SetValue("type", "")

	err := session.Next(context.Background())
	var failure *flow.ValidationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("Next() error = %v, want *ValidationFailure", err)
	}
	if diff := cmp.Diff([]string{"Type"}, failure.Missing); diff != "" {
		t.Fatalf("missing labels mismatch (-want +got):\n%s", diff)
	}
	if session.CurrentStep() != 1 {
		t.Fatalf("CurrentStep() = %d, want 1 after refused transition", session.CurrentStep())
	}
}

func TestNextValidationIsIdempotent(t *testing.T) {
	session := flow.NewSession(twoStepLayout(), buildRegistry(t, basicFields()))
	session.SetValue("name", "Agent X")
	session.SetValue("type", "assistant")

	if err := session.Next(context.Background()); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	session.Previous()
	if err := session.Next(context.Background()); err != nil {
		t.Fatalf("Next() with unchanged accepted values error = %v", err)
	}
	if session.CurrentStep() != 2 {
		t.Fatalf("CurrentStep() = %d, want 2", session.CurrentStep())
	}
}

func TestNextCappedAtLastStep(t *testing.T) {
	session := flow.NewSession(twoStepLayout(), buildRegistry(t, basicFields()))
	session.SetValue("name", "Agent X")
	session.SetValue("type", "assistant")

	for i := 0; i < 4; i++ {
		if err := session.Next(context.Background()); err != nil {
			t.Fatalf("Next() error = %v", err)
		}
	}
	if session.CurrentStep() != 2 {
		t.Fatalf("CurrentStep() = %d, want cap at 2", session.CurrentStep())
	}
}

func TestPreviousFlooredAtOne(t *testing.T) {
	session := flow.NewSession(twoStepLayout(), buildRegistry(t, basicFields()))

	session.Previous()
	session.Previous()
	if session.CurrentStep() != 1 {
		t.Fatalf("CurrentStep() = %d, want floor at 1", session.CurrentStep())
	}
}

func TestJumpToBackwardUnconditional(t *testing.T) {
	session := flow.NewSession(twoStepLayout(), buildRegistry(t, basicFields()))
	session.SetValue("name", "Agent X")
	session.SetValue("type", "assistant")
	if err := session.Next(context.Background()); err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	session.SetValue("type", "")
	if err := session.JumpTo(context.Background(), 1); err != nil {
		t.Fatalf("backward JumpTo() error = %v", err)
	}
	if session.CurrentStep() != 1 {
		t.Fatalf("CurrentStep() = %d, want 1", session.CurrentStep())
	}
}

func TestJumpToForwardValidatesCurrentStep(t *testing.T) {
	session := flow.NewSession(twoStepLayout(), buildRegistry(t, basicFields()))

	err := session.JumpTo(context.Background(), 2)
	var failure *flow.ValidationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("forward JumpTo() error = %v, want *ValidationFailure", err)
	}
	if failure.Step != 1 {
		t.Fatalf("failure step = %d, want 1", failure.Step)
	}
}

func TestRequiredOverrideForcesOptionalField(t *testing.T) {
	doc := twoStepLayout()
	doc.Sections[1].RequiredOverrides = []string{"description"}
	session := flow.NewSession(doc, buildRegistry(t, basicFields()))
	session.SetValue("name", "Agent X")
	session.SetValue("type", "assistant")
	if err := session.Next(context.Background()); err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	err := session.Submit(context.Background())
	var failure *flow.ValidationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("Submit() error = %v, want *ValidationFailure for overridden field", err)
	}
	if diff := cmp.Diff([]string{"Description"}, failure.Missing); diff != "" {
		t.Fatalf("missing labels mismatch (-want +got):\n%s", diff)
	}
}

func TestNextBlockedOnConstraintViolation(t *testing.T) {
	fields := basicFields()
	fields[0].FieldConfig = map[string]any{
		"validation": map[string]any{"min_length": 3},
	}
	session := flow.NewSession(twoStepLayout(), buildRegistry(t, fields))
	session.SetValue("name", "AX")
	session.SetValue("type", "assistant")

	err := session.Next(context.Background())
	var failure *flow.ValidationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("Next() error = %v, want *ValidationFailure", err)
	}
	if diff := cmp.Diff([]string{"Name must be at least 3 characters"}, failure.Violations); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}

	session.SetValue("name", "Agent X")
	if err := session.Next(context.Background()); err != nil {
		t.Fatalf("Next() after fixing the value error = %v", err)
	}
}

func TestCheckpointCreatesDraftOnce(t *testing.T) {
	store := flow.NewMemoryDraftStore()
	saver := flow.NewSaver(store)
	session := flow.NewSession(
		twoStepLayout(),
		buildRegistry(t, basicFields()),
		flow.WithDraftSaver(saver),
		flow.WithCheckpointStep(1),
	)
	session.SetValue("name", "Agent X")
	session.SetValue("type", "assistant")

	if session.State().RecordID != "" {
		t.Fatal("draft must not exist before the checkpoint is crossed")
	}
	if err := session.Next(context.Background()); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	recordID := session.State().RecordID
	if recordID == "" {
		t.Fatal("crossing the checkpoint must create the draft record")
	}

	session.Previous()
	if err := session.Next(context.Background()); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if got := session.State().RecordID; got != recordID {
		t.Fatalf("record id changed across transitions: %q -> %q", recordID, got)
	}

	saver.Wait()
	draft, err := store.LoadDraft(context.Background(), recordID)
	if err != nil {
		t.Fatalf("LoadDraft() error = %v", err)
	}
	if draft == nil || draft.Values["name"] != "Agent X" {
		t.Fatalf("persisted draft = %+v, want name=Agent X", draft)
	}
}

func TestCategoryChangeClearsSubcategory(t *testing.T) {
	fields := append(basicFields(),
		source.FieldDescriptor{FieldName: "category", FieldType: "select"},
		source.FieldDescriptor{FieldName: "subcategory", FieldType: "select"},
	)
	session := flow.NewSession(
		twoStepLayout(),
		buildRegistry(t, fields),
		flow.WithResetHooks(flow.ClearOnChange("category", "subcategory")),
	)
	session.SetValue("category", "ml")
	session.SetValue("subcategory", "nlp")

	session.SetValue("category", "infra")
	if got := session.Value("subcategory"); got != nil {
		t.Fatalf("subcategory = %v, want cleared after category change", got)
	}
}

func TestVendorChangeKeepsStillValidModel(t *testing.T) {
	catalog := map[string][]string{
		"OpenAI":    {"gpt-4o", "o3"},
		"Anthropic": {"claude-sonnet", "gpt-4o"},
	}
	fields := append(basicFields(),
		source.FieldDescriptor{FieldName: "llm_vendor", FieldType: "select"},
		source.FieldDescriptor{FieldName: "llm_model", FieldType: "select"},
	)
	session := flow.NewSession(
		twoStepLayout(),
		buildRegistry(t, fields),
		flow.WithResetHooks(flow.PreserveValidChoice("llm_vendor", "llm_model", catalog)),
	)

	session.SetValue("llm_vendor", "OpenAI")
	session.SetValue("llm_model", "gpt-4o")
	session.SetValue("llm_vendor", "Anthropic")
	if got := session.Value("llm_model"); got != "gpt-4o" {
		t.Fatalf("llm_model = %v, want preserved while valid for new vendor", got)
	}

	session.SetValue("llm_model", "claude-sonnet")
	session.SetValue("llm_vendor", "OpenAI")
	if got := session.Value("llm_model"); got != nil {
		t.Fatalf("llm_model = %v, want cleared when invalid for new vendor", got)
	}
}

func TestSelectAllExpansionAndDeselection(t *testing.T) {
	fields := append(basicFields(), source.FieldDescriptor{
		FieldName: "regions",
		FieldType: "multi_select",
		FieldConfig: map[string]any{
			"options": []any{"Global", "NA", "EU", "APAC"},
		},
	})
	session := flow.NewSession(
		twoStepLayout(),
		buildRegistry(t, fields),
		flow.WithSelectAll("regions", "Global"),
	)

	session.SetValue("regions", []string{"Global"})
	if diff := cmp.Diff([]string{"Global", "NA", "EU", "APAC"}, session.Value("regions")); diff != "" {
		t.Fatalf("select-all expansion mismatch (-want +got):\n%s", diff)
	}

	session.SetValue("regions", []string{"Global", "NA", "APAC"})
	if diff := cmp.Diff([]string{"NA", "APAC"}, session.Value("regions")); diff != "" {
		t.Fatalf("deselection must drop the marker (-want +got):\n%s", diff)
	}
}

func TestSubmitValidatesEverything(t *testing.T) {
	session := flow.NewSession(twoStepLayout(), buildRegistry(t, basicFields()))
	session.SetValue("name", "Agent X")

	err := session.Submit(context.Background())
	var failure *flow.ValidationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("Submit() error = %v, want *ValidationFailure", err)
	}

	session.SetValue("type", "assistant")
	if err := session.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got := session.State().Status; got != model.SubmissionStatusSubmitted {
		t.Fatalf("status = %q, want submitted", got)
	}
}

func TestSaverSerializesPerRecord(t *testing.T) {
	store := &slowDraftStore{inner: flow.NewMemoryDraftStore()}
	saver := flow.NewSaver(store)

	recordID, err := saver.Create(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	for step := 1; step <= 10; step++ {
		saver.Save(recordID, map[string]any{"name": "Agent X"}, step)
	}
	saver.Wait()

	if store.maxConcurrent > 1 {
		t.Fatalf("concurrent writes per record = %d, want 1", store.maxConcurrent)
	}
	draft, err := store.inner.LoadDraft(context.Background(), recordID)
	if err != nil {
		t.Fatalf("LoadDraft() error = %v", err)
	}
	if draft.CurrentStep != 10 {
		t.Fatalf("persisted step = %d, want the latest snapshot 10", draft.CurrentStep)
	}
}

// slowDraftStore tracks concurrent UpdateDraft calls.
type slowDraftStore struct {
	inner *flow.MemoryDraftStore

	mu            sync.Mutex
	active        int
	maxConcurrent int
}

func (s *slowDraftStore) LoadDraft(ctx context.Context, recordID string) (*model.SubmissionState, error) {
	return s.inner.LoadDraft(ctx, recordID)
}

func (s *slowDraftStore) CreateDraft(ctx context.Context, values map[string]any) (string, error) {
	return s.inner.CreateDraft(ctx, values)
}

func (s *slowDraftStore) UpdateDraft(ctx context.Context, recordID string, values map[string]any, currentStep int) error {
	s.mu.Lock()
	s.active++
	if s.active > s.maxConcurrent {
		s.maxConcurrent = s.active
	}
	s.mu.Unlock()

	err := s.inner.UpdateDraft(ctx, recordID, values, currentStep)

	s.mu.Lock()
	s.active--
	s.mu.Unlock()
	return err
}
