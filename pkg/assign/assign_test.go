package assign_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/assign"
	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/registry"
	"github.com/goliatone/go-intake/pkg/source"
)

func registryOf(t *testing.T, descriptors ...source.FieldDescriptor) *registry.Registry {
	t.Helper()

	return registry.NewBuilder().Build(source.Result{
		Collections: map[model.Provenance][]source.FieldDescriptor{
			model.ProvenanceEntitySchema: descriptors,
		},
	})
}

func sampleMapping() assign.Mapping {
	return assign.Mapping{
		Steps: []assign.StepKeywords{
			{SectionID: "identity", Title: "Identity", Keywords: []string{"name", "vendor"}},
			{SectionID: "compliance", Title: "Compliance", Keywords: []string{"risk", "policy", "vendor"}},
		},
		Fallback: "identity",
	}
}

func TestPopulateFirstMatchWins(t *testing.T) {
	fields := registryOf(t,
		source.FieldDescriptor{FieldName: "llm_vendor", Label: "Vendor"},
		source.FieldDescriptor{FieldName: "risk_rating", Label: "Risk Rating"},
	)

	sections := assign.Populate(fields, sampleMapping())

	// "vendor" appears in both keyword sets; the earlier step claims it.
	if diff := cmp.Diff([]string{"llm_vendor"}, sections[0].FieldNames); diff != "" {
		t.Fatalf("identity fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"risk_rating"}, sections[1].FieldNames); diff != "" {
		t.Fatalf("compliance fields mismatch (-want +got):\n%s", diff)
	}
}

func TestPopulateAssignsEachFieldAtMostOnce(t *testing.T) {
	fields := registryOf(t,
		source.FieldDescriptor{FieldName: "vendor_policy", Label: "Vendor Policy"},
	)

	sections := assign.Populate(fields, sampleMapping())

	total := 0
	for _, section := range sections {
		total += len(section.FieldNames)
	}
	if total != 1 {
		t.Fatalf("field assigned %d times, want exactly once", total)
	}
}

func TestPopulateMatchesCategoryAndDescription(t *testing.T) {
	fields := registryOf(t,
		source.FieldDescriptor{FieldName: "attestation", Label: "Attestation", Category: "risk"},
	)

	sections := assign.Populate(fields, sampleMapping())
	if diff := cmp.Diff([]string{"attestation"}, sections[1].FieldNames); diff != "" {
		t.Fatalf("category match mismatch (-want +got):\n%s", diff)
	}
}

func TestPopulateFallbackCollectsUnmatched(t *testing.T) {
	fields := registryOf(t,
		source.FieldDescriptor{FieldName: "notes", Label: "Notes"},
	)

	sections := assign.Populate(fields, sampleMapping())
	if diff := cmp.Diff([]string{"notes"}, sections[0].FieldNames); diff != "" {
		t.Fatalf("fallback mismatch (-want +got):\n%s", diff)
	}

	mapping := sampleMapping()
	mapping.Fallback = ""
	sections = assign.Populate(fields, mapping)
	for _, section := range sections {
		if len(section.FieldNames) != 0 {
			t.Fatalf("unmatched field assigned without a fallback: %+v", section)
		}
	}
}
