package orchestrator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-intake/pkg/render"
)

// Transformer mutates a step view after construction but before widget
// decoration and rendering. Implementations can relabel fields, inject
// copy, or perform arbitrary rewrites.
type Transformer interface {
	Transform(view *render.StepView) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(view *render.StepView) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(view *render.StepView) error {
	if fn == nil {
		return nil
	}
	return fn(view)
}

// JSONPresetTransformer applies declarative overrides loaded from a JSON file.
// The document shape supports step-level copy and per-field patches:
//
//	{
//	  "title": "Request Intake",
//	  "description": "Tell us about the request.",
//	  "fields": {
//	    "llm_vendor": {"label": "Vendor", "widget": "chips"}
//	  }
//	}
//
// Field patches target fields by name and apply only when the field is
// present on the step being rendered; patches for fields on other steps
// are ignored rather than treated as errors.
type JSONPresetTransformer struct {
	document jsonTransformDocument
}

type jsonTransformDocument struct {
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Fields      map[string]jsonFieldPatch `json:"fields"`
}

type jsonFieldPatch struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Placeholder string `json:"placeholder"`
	Widget      string `json:"widget"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document jsonTransformDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a JSON transformer document from the
// provided filesystem path.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the declarative patches onto the supplied view.
func (t *JSONPresetTransformer) Transform(view *render.StepView) error {
	if view == nil {
		return errors.New("json preset transformer: step view is nil")
	}
	if t.document.Title != "" {
		view.Title = t.document.Title
	}
	if t.document.Description != "" {
		view.Description = t.document.Description
	}
	for idx := range view.Fields {
		patch, ok := t.document.Fields[view.Fields[idx].Name]
		if !ok {
			continue
		}
		applyFieldPatch(&view.Fields[idx], patch)
	}
	return nil
}

func applyFieldPatch(field *render.FieldView, patch jsonFieldPatch) {
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Description != "" {
		field.Description = patch.Description
	}
	if patch.Placeholder != "" {
		field.Placeholder = patch.Placeholder
	}
	if patch.Widget != "" {
		field.Widget = patch.Widget
	}
}
