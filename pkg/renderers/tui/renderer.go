// Package tui renders step views as interactive terminal prompts built on
// survey. One Render call walks the fields of a single step; RunSession
// drives a whole multi-step session including navigation and submit.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/resolve"
)

// Renderer implements render.Renderer for terminal-driven sessions.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	driver, err := newSurveyDriver()
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		driver:       driver,
		outputFormat: OutputFormatJSON,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver, err = newSurveyDriver()
		if err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts for every editable field on the step and serializes the
// collected values.
func (r *Renderer) Render(ctx context.Context, view render.StepView, _ render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	values, err := r.Collect(ctx, view)
	if err != nil {
		return nil, err
	}

	if r.submitTransformer != nil {
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}

	return r.serialize(values)
}

// Collect walks the step's fields and returns the values the user entered.
// Read-only and blocked fields are announced but never prompted.
func (r *Renderer) Collect(ctx context.Context, view render.StepView) (map[string]any, error) {
	values := make(map[string]any)

	switch {
	case view.Loading:
		return values, r.driver.Info(ctx, "Loading form…")
	case view.NotConfigured:
		return values, r.driver.Info(ctx, "This form has not been configured yet.")
	}

	if view.Title != "" {
		header := view.Title
		if view.Steps > 1 {
			header = fmt.Sprintf("%s (step %d of %d)", view.Title, view.Step, view.Steps)
		}
		if err := r.driver.Info(ctx, header); err != nil {
			return nil, err
		}
	}

	for _, field := range view.Fields {
		value, collected, err := r.promptField(ctx, field)
		if err != nil {
			return nil, err
		}
		if collected {
			values[field.Name] = value
		}
	}
	return values, nil
}

func (r *Renderer) promptField(ctx context.Context, field render.FieldView) (any, bool, error) {
	if field.Blocked() {
		return nil, false, r.driver.Info(ctx, fmt.Sprintf("%s: %s", field.Label, field.Placeholder))
	}
	if !field.Editable {
		return nil, false, r.driver.Info(ctx, fmt.Sprintf("%s: %s (read-only)", field.Label, field.Value))
	}

	message := field.Label
	if field.Required {
		message += " *"
	}

	switch {
	case field.Category == resolve.CategoryCheckbox:
		response, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: message,
			Default: field.Value == "true",
			Help:    field.Description,
		})
		if err != nil {
			return nil, false, err
		}
		return response, true, nil

	case field.List && field.HasOptions():
		options := optionValues(field)
		selected, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  options,
			Defaults: indicesOf(options, field.Values),
			Help:     field.Description,
		})
		if err != nil {
			return nil, false, err
		}
		return valuesFromIndices(options, selected), true, nil

	case field.HasOptions():
		options := optionValues(field)
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: indexOf(options, field.Value),
			Help:         field.Description,
		})
		if err != nil {
			return nil, false, err
		}
		if idx < 0 || idx >= len(options) {
			return "", true, nil
		}
		return options[idx], true, nil

	case multilineCategory(field.Category):
		response, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: message,
			Default: field.Value,
			Help:    field.Description,
		})
		if err != nil {
			return nil, false, err
		}
		return response, true, nil

	default:
		return r.promptScalar(ctx, field, message)
	}
}

func (r *Renderer) promptScalar(ctx context.Context, field render.FieldView, message string) (any, bool, error) {
	for {
		response, err := r.driver.Input(ctx, InputConfig{
			Message: message,
			Default: field.Value,
			Help:    field.Description,
		})
		if err != nil {
			return nil, false, err
		}
		if field.Required && strings.TrimSpace(response) == "" {
			if err := r.driver.Info(ctx, fmt.Sprintf("%s is required", field.Label)); err != nil {
				return nil, false, err
			}
			continue
		}
		return response, true, nil
	}
}

func multilineCategory(category resolve.RenderCategory) bool {
	switch category {
	case resolve.CategoryTextarea, resolve.CategoryJSON, resolve.CategoryRichText, resolve.CategoryDiagram:
		return true
	default:
		return false
	}
}

func optionValues(field render.FieldView) []string {
	out := make([]string, 0, len(field.Options))
	for _, option := range field.Options {
		out = append(out, option.Value)
	}
	return out
}

func valuesFromIndices(options []string, indices []int) []string {
	out := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			out = append(out, options[idx])
		}
	}
	return out
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		payload, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("tui: serialize values: %w", err)
		}
		return payload, nil
	}
}

func flattenForm(values map[string]any) string {
	form := url.Values{}
	for key, value := range values {
		switch v := value.(type) {
		case []string:
			for _, entry := range v {
				form.Add(key, entry)
			}
		default:
			form.Set(key, fmt.Sprint(v))
		}
	}
	return form.Encode()
}

func prettyPrint(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		switch v := values[key].(type) {
		case []string:
			fmt.Fprintf(&b, "%s: %s\n", key, strings.Join(v, ", "))
		default:
			fmt.Fprintf(&b, "%s: %v\n", key, v)
		}
	}
	return b.String()
}
