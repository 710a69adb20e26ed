// Package testsupport holds helpers shared by test packages: golden file
// plumbing, template output capture and canned step views.
package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/registry"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/resolve"
	"github.com/goliatone/go-intake/pkg/source"
)

// BuildRegistry merges the supplied descriptors under a single provenance and
// returns the resulting field registry.
func BuildRegistry(t *testing.T, descriptors ...source.FieldDescriptor) *registry.Registry {
	t.Helper()

	return registry.NewBuilder().Build(source.Result{
		Collections: map[model.Provenance][]source.FieldDescriptor{
			model.ProvenanceEntitySchema: descriptors,
		},
	})
}

// SampleStepView returns a small step view with a text, select and checkbox
// control, matching what the resolver emits for those types.
func SampleStepView() render.StepView {
	return render.StepView{
		LayoutID:   "layout-1",
		LayoutName: "Agent Intake",
		SectionID:  "basics",
		Title:      "Basics",
		Step:       1,
		Steps:      2,
		Fields: []render.FieldView{
			{
				Name:     "name",
				Label:    "Name",
				Category: resolve.CategoryText,
				Required: true,
				Value:    "Agent X",
				Editable: true,
			},
			{
				Name:     "llm_vendor",
				Label:    "Vendor",
				Category: resolve.CategorySelect,
				Options: []model.Option{
					{Value: "OpenAI", Label: "OpenAI"},
					{Value: "Anthropic", Label: "Anthropic"},
				},
				Value:    "OpenAI",
				Editable: true,
			},
			{
				Name:     "approved",
				Label:    "Approved",
				Category: resolve.CategoryCheckbox,
				Value:    "false",
				Editable: true,
			},
		},
	}
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
