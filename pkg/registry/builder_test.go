package registry_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/registry"
	"github.com/goliatone/go-intake/pkg/source"
)

func resultWith(collections map[model.Provenance][]source.FieldDescriptor) source.Result {
	return source.Result{Collections: collections}
}

func TestBuilder_SchemaOptionsSurviveLaterVaguerDescriptor(t *testing.T) {
	result := resultWith(map[model.Provenance][]source.FieldDescriptor{
		model.ProvenanceEntitySchema: {
			{
				FieldName: "type",
				FieldType: "select",
				FieldConfig: map[string]any{
					"options": []any{
						map[string]any{"value": "assistant", "label": "Assistant"},
						map[string]any{"value": "automation", "label": "Automation"},
					},
				},
			},
		},
		model.ProvenanceEntityMetadata: {
			{FieldName: "type", FieldType: "text", Label: "Type"},
		},
	})

	reg := registry.NewBuilder().Build(result)

	def, ok := reg.Get("type")
	if !ok {
		t.Fatalf("field missing from registry")
	}
	if len(def.Options) != 2 {
		t.Fatalf("schema options clobbered: %+v", def)
	}
	if def.Provenance != model.ProvenanceEntitySchema {
		t.Fatalf("expected schema provenance retained, got %s", def.Provenance)
	}
}

func TestBuilder_LaterSpecificDescriptorFillsGaps(t *testing.T) {
	result := resultWith(map[model.Provenance][]source.FieldDescriptor{
		model.ProvenanceEntitySchema: {
			{FieldName: "llm_vendor", FieldType: "text"},
		},
		model.ProvenanceMasterData: {
			{
				FieldName: "llm_vendor",
				FieldType: "select",
				FieldConfig: map[string]any{
					"options": []any{"OpenAI", "Anthropic", "Other"},
				},
			},
		},
	})

	reg := registry.NewBuilder().Build(result)

	def, _ := reg.Get("llm_vendor")
	want := []model.Option{
		{Value: "OpenAI", Label: "OpenAI"},
		{Value: "Anthropic", Label: "Anthropic"},
		{Value: "Other", Label: "Other"},
	}
	if diff := cmp.Diff(want, def.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_MergeIsPrecedenceRespectingRegardlessOfFetchOrder(t *testing.T) {
	specific := source.FieldDescriptor{
		FieldName: "category",
		FieldType: "select",
		FieldConfig: map[string]any{
			"options": []any{"infra", "data", "ml"},
		},
	}
	vague := source.FieldDescriptor{FieldName: "category", FieldType: "text"}

	a := resultWith(map[model.Provenance][]source.FieldDescriptor{
		model.ProvenanceEntitySchema: {specific},
		model.ProvenanceCustomField:  {vague},
	})
	b := resultWith(map[model.Provenance][]source.FieldDescriptor{
		model.ProvenanceEntitySchema: {vague},
		model.ProvenanceCustomField:  {specific},
	})

	builder := registry.NewBuilder()
	defA, _ := builder.Build(a).Get("category")
	defB, _ := builder.Build(b).Get("category")

	if len(defA.Options) != 3 || len(defB.Options) != 3 {
		t.Fatalf("descriptor with config must survive either direction: %+v / %+v", defA, defB)
	}
}

func TestBuilder_UnknownTypeDefaultsToText(t *testing.T) {
	result := resultWith(map[model.Provenance][]source.FieldDescriptor{
		model.ProvenanceWorkflowTicket: {
			{FieldName: "ticket_ref", FieldType: "hyperlink_v2"},
		},
	})

	reg := registry.NewBuilder().Build(result)
	def, ok := reg.Get("ticket_ref")
	if !ok {
		t.Fatalf("unknown-typed field must not be dropped")
	}
	if def.Type != model.FieldTypeText {
		t.Fatalf("unknown type must default to text, got %s", def.Type)
	}
}

func TestBuilder_DecodesNestedDependencyConfig(t *testing.T) {
	result := resultWith(map[model.Provenance][]source.FieldDescriptor{
		model.ProvenanceMasterData: {
			{
				FieldName: "llm_model",
				FieldType: "select",
				FieldConfig: map[string]any{
					"dependency": map[string]any{
						"depends_on": "llm_vendor",
						"options_by_parent_value": map[string]any{
							"OpenAI": []any{"gpt-4o", "gpt-4.1"},
						},
						"allow_custom_value":     true,
						"clear_on_parent_change": true,
					},
				},
			},
		},
	})

	reg := registry.NewBuilder().Build(result)
	def, _ := reg.Get("llm_model")

	if def.Type != model.FieldTypeDependentSelect {
		t.Fatalf("dependency must force dependent_select, got %s", def.Type)
	}
	dep := def.Dependency
	if dep == nil || dep.DependsOn != "llm_vendor" || !dep.AllowCustomValue || !dep.ClearOnParentChange {
		t.Fatalf("dependency decode failed: %+v", dep)
	}
	if got := dep.OptionsByParentValue["OpenAI"]; len(got) != 2 {
		t.Fatalf("parent options decode failed: %+v", got)
	}
}

func TestBuilder_NoFieldSilentlyDropped(t *testing.T) {
	result := resultWith(map[model.Provenance][]source.FieldDescriptor{
		model.ProvenanceEntitySchema: {{FieldName: "name"}, {FieldName: "type"}},
		model.ProvenanceRequirement:  {{FieldName: "dpia_reference"}},
		model.ProvenanceCurrentUser:  {{FieldName: "requested_by"}},
	})

	reg := registry.NewBuilder().Build(result)
	if reg.Len() != 4 {
		t.Fatalf("expected 4 fields, got %d", reg.Len())
	}
	for _, name := range []string{"name", "type", "dpia_reference", "requested_by"} {
		if !reg.Has(name) {
			t.Fatalf("field %q dropped during merge", name)
		}
	}
}

func TestBuilder_ValidationConfigDecoded(t *testing.T) {
	result := resultWith(map[model.Provenance][]source.FieldDescriptor{
		model.ProvenanceEntitySchema: {
			{
				FieldName: "name",
				FieldType: "text",
				FieldConfig: map[string]any{
					"validation": map[string]any{
						"min_length": float64(3),
						"max_length": 64,
						"pattern":    "^[a-z].*$",
					},
				},
			},
		},
	})

	def, _ := registry.NewBuilder().Build(result).Get("name")
	v := def.Validation
	if v == nil || v.MinLength == nil || *v.MinLength != 3 || v.MaxLength == nil || *v.MaxLength != 64 || v.Pattern != "^[a-z].*$" {
		t.Fatalf("validation decode failed: %+v", v)
	}
}
