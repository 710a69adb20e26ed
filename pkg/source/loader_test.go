package source_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/source"
)

func TestLoader_JoinsAllSources(t *testing.T) {
	loader := source.NewLoader(source.WithSources(
		source.Static("schema", model.ProvenanceEntitySchema, []source.FieldDescriptor{
			{FieldName: "name", FieldType: "text"},
		}),
		source.Static("custom", model.ProvenanceCustomField, []source.FieldDescriptor{
			{FieldName: "cost_center", FieldType: "text"},
		}),
	))

	result, err := loader.Load(context.Background(), source.Context{TenantID: "acme"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if result.Degraded() {
		t.Fatalf("unexpected degradation: %+v", result.Errors)
	}
	if got := result.Descriptors(model.ProvenanceEntitySchema); len(got) != 1 || got[0].FieldName != "name" {
		t.Fatalf("unexpected schema collection: %+v", got)
	}
	if got := result.Descriptors(model.ProvenanceCustomField); len(got) != 1 {
		t.Fatalf("unexpected custom collection: %+v", got)
	}
}

func TestLoader_FailingSourceDegradesToEmpty(t *testing.T) {
	boom := errors.New("catalog offline")
	loader := source.NewLoader(source.WithSources(
		source.Func("requirements", model.ProvenanceRequirement, func(context.Context, source.Context) ([]source.FieldDescriptor, error) {
			return nil, boom
		}),
		source.Static("schema", model.ProvenanceEntitySchema, []source.FieldDescriptor{
			{FieldName: "name"},
		}),
	))

	result, err := loader.Load(context.Background(), source.Context{})
	if err != nil {
		t.Fatalf("load must settle despite source failure: %v", err)
	}
	if !result.Degraded() {
		t.Fatalf("expected degraded result")
	}
	if recorded := result.Errors["requirements"]; recorded == nil || !errors.Is(recorded, boom) {
		t.Fatalf("expected recorded error wrapping cause, got %v", recorded)
	}
	if got := result.Descriptors(model.ProvenanceRequirement); len(got) != 0 {
		t.Fatalf("failed source must contribute an empty collection, got %+v", got)
	}
	if got := result.Descriptors(model.ProvenanceEntitySchema); len(got) != 1 {
		t.Fatalf("healthy sources must still contribute, got %+v", got)
	}
}

func TestLoader_SlowSourceTimesOut(t *testing.T) {
	loader := source.NewLoader(
		source.WithTimeout(20*time.Millisecond),
		source.WithSources(
			source.Func("master_data", model.ProvenanceMasterData, func(ctx context.Context, _ source.Context) ([]source.FieldDescriptor, error) {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(5 * time.Second):
					return []source.FieldDescriptor{{FieldName: "region"}}, nil
				}
			}),
		),
	)

	result, err := loader.Load(context.Background(), source.Context{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !result.Degraded() {
		t.Fatalf("expected timeout recorded as degradation")
	}
	if got := result.Descriptors(model.ProvenanceMasterData); len(got) != 0 {
		t.Fatalf("timed-out source must degrade to empty, got %+v", got)
	}
}

func TestLoader_MultipleSourcesSharingProvenanceAppend(t *testing.T) {
	loader := source.NewLoader(source.WithSources(
		source.Static("vendors", model.ProvenanceMasterData, []source.FieldDescriptor{{FieldName: "llm_vendor"}}),
		source.Static("regions", model.ProvenanceMasterData, []source.FieldDescriptor{{FieldName: "region"}}),
	))

	result, err := loader.Load(context.Background(), source.Context{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := result.Descriptors(model.ProvenanceMasterData); len(got) != 2 {
		t.Fatalf("expected both master data sources joined, got %+v", got)
	}
}
