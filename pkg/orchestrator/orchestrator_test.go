package orchestrator_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/access"
	"github.com/goliatone/go-intake/pkg/intakeconfig"
	"github.com/goliatone/go-intake/pkg/layout"
	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/orchestrator"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/source"
)

const screenID = "ai_intake"

func intakeContext() source.Context {
	return source.Context{TenantID: "acme", ScreenID: screenID, Role: "requester"}
}

func adminActor() layout.Actor {
	return layout.Actor{ID: "admin", TenantID: "acme", Admin: true}
}

func intakeDescriptors() []source.FieldDescriptor {
	return []source.FieldDescriptor{
		{FieldName: "name", Label: "Name", FieldType: "text", Required: true},
		{FieldName: "internal_notes", Label: "Internal Notes", FieldType: "textarea"},
		{FieldName: "llm_vendor", Label: "Vendor", FieldType: "select", FieldConfig: map[string]any{
			"options": []any{"openai", "anthropic"},
		}},
		{FieldName: "llm_model", Label: "Model", FieldType: "select", FieldConfig: map[string]any{
			"options": []any{"gpt-4", "claude"},
		}},
		{FieldName: "regions", Label: "Regions", FieldType: "multi_select", FieldConfig: map[string]any{
			"options": []any{"Global", "NA", "EU", "APAC"},
		}},
	}
}

func intakeLayout() model.LayoutDocument {
	return model.LayoutDocument{
		Name:       "AI Intake",
		TenantID:   "acme",
		LayoutType: model.LayoutTypeSubmission,
		Sections: []model.SectionDefinition{
			{ID: "basics", Title: "Basics", Order: 1, FieldNames: []string{"name", "internal_notes"}},
			{ID: "vendor", Title: "Vendor", Order: 2, FieldNames: []string{"llm_vendor", "llm_model", "regions"}},
		},
	}
}

func seededStore(t *testing.T) layout.Store {
	t.Helper()
	store := layout.NewMemoryStore()
	if _, err := store.SaveLayout(context.Background(), screenID, intakeLayout(), adminActor()); err != nil {
		t.Fatalf("seed layout: %v", err)
	}
	return store
}

type stubRenderer struct {
	name string
	view render.StepView
}

func (s *stubRenderer) Name() string        { return s.name }
func (s *stubRenderer) ContentType() string { return "text/plain" }

func (s *stubRenderer) Render(_ context.Context, view render.StepView, _ render.RenderOptions) ([]byte, error) {
	s.view = view
	return []byte(view.Title), nil
}

func TestEngine_LoadPublishesSnapshot(t *testing.T) {
	engine := orchestrator.New(
		orchestrator.WithSources(source.Static("entity-schema", model.ProvenanceEntitySchema, intakeDescriptors())),
		orchestrator.WithLayouts(seededStore(t)),
	)

	snapshot, err := engine.Load(context.Background(), intakeContext(), layout.Actor{ID: "u1", TenantID: "acme"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snapshot.NotConfigured() {
		t.Fatalf("seeded screen must report a configured layout")
	}
	if !snapshot.Fields.Has("llm_vendor") {
		t.Fatalf("registry missing merged field llm_vendor")
	}
	if len(snapshot.Degraded) != 0 {
		t.Fatalf("no source failed, degraded = %v", snapshot.Degraded)
	}
	if engine.Current() != snapshot {
		t.Fatalf("Current must return the published snapshot")
	}
}

func TestEngine_LoadRecordsDegradedSources(t *testing.T) {
	failing := func(name string, p model.Provenance) source.Source {
		return source.Func(name, p, func(context.Context, source.Context) ([]source.FieldDescriptor, error) {
			return nil, errors.New("catalog offline")
		})
	}

	engine := orchestrator.New(
		orchestrator.WithSources(
			source.Static("entity-schema", model.ProvenanceEntitySchema, intakeDescriptors()),
			failing("master-data", model.ProvenanceMasterData),
			failing("custom-fields", model.ProvenanceCustomField),
		),
		orchestrator.WithLayouts(seededStore(t)),
	)

	snapshot, err := engine.Load(context.Background(), intakeContext(), layout.Actor{ID: "u1", TenantID: "acme"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"custom-fields", "master-data"}
	if diff := cmp.Diff(want, snapshot.Degraded); diff != "" {
		t.Fatalf("degraded sources mismatch (-want +got):\n%s", diff)
	}
	if !snapshot.Fields.Has("name") {
		t.Fatalf("healthy sources must still contribute fields")
	}
}

func TestEngine_LoadSupersededByNewerRequest(t *testing.T) {
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})

	slow := source.Func("entity-schema", model.ProvenanceEntitySchema, func(context.Context, source.Context) ([]source.FieldDescriptor, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
		}
		return intakeDescriptors(), nil
	})

	engine := orchestrator.New(
		orchestrator.WithSources(slow),
		orchestrator.WithLayouts(seededStore(t)),
	)

	firstErr := make(chan error, 1)
	go func() {
		_, err := engine.Load(context.Background(), intakeContext(), layout.Actor{ID: "u1", TenantID: "acme"})
		firstErr <- err
	}()

	<-started
	newer, err := engine.Load(context.Background(), intakeContext(), layout.Actor{ID: "u1", TenantID: "acme"})
	if err != nil {
		t.Fatalf("newer load: %v", err)
	}
	close(release)

	if err := <-firstErr; !errors.Is(err, orchestrator.ErrSuperseded) {
		t.Fatalf("stale load error = %v, want ErrSuperseded", err)
	}
	if engine.Current() != newer {
		t.Fatalf("stale load must not replace the newer snapshot")
	}
}

func TestEngine_StepViewFiltersByAccess(t *testing.T) {
	rules := access.RuleSourceFunc(func(_ context.Context, _ string, role string) ([]model.FieldAccessRule, error) {
		return []model.FieldAccessRule{
			{FieldName: "internal_notes", Role: role, CanView: false, CanEdit: false},
			{FieldName: "name", Role: role, CanView: true, CanEdit: false},
		}, nil
	})

	engine := orchestrator.New(
		orchestrator.WithSources(source.Static("entity-schema", model.ProvenanceEntitySchema, intakeDescriptors())),
		orchestrator.WithLayouts(seededStore(t)),
		orchestrator.WithAccessRules(rules),
	)

	snapshot, err := engine.Load(context.Background(), intakeContext(), layout.Actor{ID: "u1", TenantID: "acme"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	view, err := engine.StepView(snapshot, *model.NewSubmissionState(), 1)
	if err != nil {
		t.Fatalf("step view: %v", err)
	}

	if _, ok := view.Field("internal_notes"); ok {
		t.Fatalf("hidden field must be omitted from the step view")
	}
	name, ok := view.Field("name")
	if !ok {
		t.Fatalf("viewable field missing from step view")
	}
	if name.Editable {
		t.Fatalf("view-only grant must render the field read-only")
	}
	if !name.Required {
		t.Fatalf("required flag lost on %q", name.Name)
	}
}

func TestEngine_StepViewAccessFetchFailureFailsOpen(t *testing.T) {
	rules := access.RuleSourceFunc(func(context.Context, string, string) ([]model.FieldAccessRule, error) {
		return nil, errors.New("rules store offline")
	})

	engine := orchestrator.New(
		orchestrator.WithSources(source.Static("entity-schema", model.ProvenanceEntitySchema, intakeDescriptors())),
		orchestrator.WithLayouts(seededStore(t)),
		orchestrator.WithAccessRules(rules),
	)

	snapshot, err := engine.Load(context.Background(), intakeContext(), layout.Actor{ID: "u1", TenantID: "acme"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	view, err := engine.StepView(snapshot, *model.NewSubmissionState(), 1)
	if err != nil {
		t.Fatalf("step view: %v", err)
	}
	field, ok := view.Field("internal_notes")
	if !ok {
		t.Fatalf("fetch failure must fail open, field hidden")
	}
	if !field.Editable {
		t.Fatalf("fetch failure must fail open, field read-only")
	}
}

func TestEngine_StepViewNotConfigured(t *testing.T) {
	engine := orchestrator.New(
		orchestrator.WithSources(source.Static("entity-schema", model.ProvenanceEntitySchema, intakeDescriptors())),
	)

	snapshot, err := engine.Load(context.Background(), intakeContext(), layout.Actor{ID: "u1", TenantID: "acme"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !snapshot.NotConfigured() {
		t.Fatalf("empty store must report not configured")
	}

	view, err := engine.StepView(snapshot, *model.NewSubmissionState(), 1)
	if err != nil {
		t.Fatalf("step view: %v", err)
	}
	if !view.NotConfigured {
		t.Fatalf("unconfigured screen must render the explicit empty state")
	}
}

func TestEngine_StepViewLoadingBeforeFirstJoin(t *testing.T) {
	engine := orchestrator.New()

	view, err := engine.StepView(nil, *model.NewSubmissionState(), 1)
	if err != nil {
		t.Fatalf("step view: %v", err)
	}
	if !view.Loading {
		t.Fatalf("no snapshot yet must render the loading state")
	}
}

func TestEngine_StepViewRejectsOutOfRangeStep(t *testing.T) {
	engine := orchestrator.New(
		orchestrator.WithSources(source.Static("entity-schema", model.ProvenanceEntitySchema, intakeDescriptors())),
		orchestrator.WithLayouts(seededStore(t)),
	)
	snapshot, err := engine.Load(context.Background(), intakeContext(), layout.Actor{ID: "u1", TenantID: "acme"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, err := engine.StepView(snapshot, *model.NewSubmissionState(), 5); err == nil {
		t.Fatalf("step beyond the layout must error")
	}
}

func TestEngine_RenderAppliesFieldErrors(t *testing.T) {
	stub := &stubRenderer{name: "plain"}
	registry := render.NewRegistry()
	registry.MustRegister(stub)

	engine := orchestrator.New(
		orchestrator.WithSources(source.Static("entity-schema", model.ProvenanceEntitySchema, intakeDescriptors())),
		orchestrator.WithLayouts(seededStore(t)),
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer("plain"),
	)

	snapshot, err := engine.Load(context.Background(), intakeContext(), layout.Actor{ID: "u1", TenantID: "acme"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	output, err := engine.Render(context.Background(), orchestrator.Request{
		Snapshot: snapshot,
		State:    *model.NewSubmissionState(),
		Step:     1,
		RenderOptions: render.RenderOptions{
			Errors: map[string][]string{"#/values/name": {"value is required"}},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(output) != "Basics" {
		t.Fatalf("renderer output = %q", output)
	}

	field, ok := stub.view.Field("name")
	if !ok {
		t.Fatalf("rendered view missing field name")
	}
	if diff := cmp.Diff([]string{"value is required"}, field.Errors); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_RenderFallsBackToOnlyRegisteredRenderer(t *testing.T) {
	stub := &stubRenderer{name: "plain"}
	registry := render.NewRegistry()
	registry.MustRegister(stub)

	engine := orchestrator.New(
		orchestrator.WithSources(source.Static("entity-schema", model.ProvenanceEntitySchema, intakeDescriptors())),
		orchestrator.WithLayouts(seededStore(t)),
		orchestrator.WithRegistry(registry),
	)

	snapshot, err := engine.Load(context.Background(), intakeContext(), layout.Actor{ID: "u1", TenantID: "acme"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	output, err := engine.Render(context.Background(), orchestrator.Request{Snapshot: snapshot, State: *model.NewSubmissionState(), Step: 2})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(output) != "Vendor" {
		t.Fatalf("renderer output = %q", output)
	}
}

func TestEngine_RenderUnknownRendererFails(t *testing.T) {
	stub := &stubRenderer{name: "plain"}
	registry := render.NewRegistry()
	registry.MustRegister(stub)

	engine := orchestrator.New(
		orchestrator.WithSources(source.Static("entity-schema", model.ProvenanceEntitySchema, intakeDescriptors())),
		orchestrator.WithLayouts(seededStore(t)),
		orchestrator.WithRegistry(registry),
	)

	snapshot, err := engine.Load(context.Background(), intakeContext(), layout.Actor{ID: "u1", TenantID: "acme"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, err := engine.Render(context.Background(), orchestrator.Request{Snapshot: snapshot, State: *model.NewSubmissionState(), Renderer: "missing"}); err == nil {
		t.Fatalf("explicitly named unknown renderer must error")
	}
}

func TestEngine_NewSessionWiresConfiguredRules(t *testing.T) {
	cfg := intakeconfig.Config{
		VendorModels: map[string][]string{
			"openai":    {"gpt-4"},
			"anthropic": {"claude"},
		},
		SelectAll: []intakeconfig.SelectAllRule{{FieldName: "regions", Marker: "Global"}},
		Resets: []intakeconfig.ResetRule{
			{Parent: "llm_vendor", Child: "llm_model", PreserveValid: true},
		},
	}

	engine := orchestrator.New(
		orchestrator.WithSources(source.Static("entity-schema", model.ProvenanceEntitySchema, intakeDescriptors())),
		orchestrator.WithLayouts(seededStore(t)),
		orchestrator.WithConfig(cfg),
	)

	snapshot, err := engine.Load(context.Background(), intakeContext(), layout.Actor{ID: "u1", TenantID: "acme"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	session, err := engine.NewSession(snapshot)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	session.SetValue("llm_vendor", "openai")
	session.SetValue("llm_model", "gpt-4")
	session.SetValue("llm_vendor", "anthropic")
	if got := session.Value("llm_model"); got != nil {
		t.Fatalf("invalid model must clear on vendor change, got %v", got)
	}

	session.SetValue("regions", []string{"Global"})
	want := []string{"Global", "NA", "EU", "APAC"}
	if diff := cmp.Diff(want, session.Value("regions")); diff != "" {
		t.Fatalf("select-all expansion mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_NewSessionRequiresConfiguredLayout(t *testing.T) {
	engine := orchestrator.New(
		orchestrator.WithSources(source.Static("entity-schema", model.ProvenanceEntitySchema, intakeDescriptors())),
	)

	snapshot, err := engine.Load(context.Background(), intakeContext(), layout.Actor{ID: "u1", TenantID: "acme"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := engine.NewSession(snapshot); err == nil {
		t.Fatalf("unconfigured screen must not start a session")
	}
}
