package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/render"
)

// Request describes the inputs required to render one step of a screen.
type Request struct {
	// Snapshot selects the settled join to render from. When nil the
	// engine's current snapshot is used.
	Snapshot *Snapshot

	// State carries the submission values the step is rendered against.
	State model.SubmissionState

	// Step selects the 1-based step. Zero renders the state's current step.
	Step int

	// Renderer names the renderer to use. If empty, the engine falls back to
	// the configured default renderer.
	Renderer string

	// RenderOptions carries per-request instructions such as server-side
	// errors or theme configuration that renderers can surface.
	RenderOptions render.RenderOptions
}

// LoadingView is the placeholder rendered while the provenance join for the
// controlling context is still in flight.
func LoadingView() render.StepView {
	return render.StepView{Loading: true}
}

// StepView builds the render model for one step: layout section, field
// definitions, access decisions and value resolution folded together. Fields
// the role cannot view are omitted entirely; fields it cannot edit render
// read-only.
func (e *Engine) StepView(snapshot *Snapshot, state model.SubmissionState, step int) (render.StepView, error) {
	if snapshot == nil {
		snapshot = e.Current()
	}
	if snapshot == nil {
		return LoadingView(), nil
	}
	if snapshot.NotConfigured() {
		return render.StepView{NotConfigured: true}, nil
	}

	doc := *snapshot.Layout
	doc.SortSections()
	if step <= 0 {
		step = state.CurrentStep
	}
	if step < 1 {
		step = 1
	}
	if step > len(doc.Sections) {
		return render.StepView{}, fmt.Errorf("orchestrator: layout %q has no step %d", doc.ID, step)
	}
	section := doc.Sections[step-1]

	view := render.StepView{
		LayoutID:    doc.ID,
		LayoutName:  doc.Name,
		SectionID:   section.ID,
		Title:       section.Title,
		Description: section.Description,
		Step:        step,
		Steps:       len(doc.Sections),
	}

	for _, name := range section.FieldNames {
		def, ok := snapshot.Fields.Get(name)
		if !ok {
			continue
		}
		grant := snapshot.Access.Evaluate(name, snapshot.Context.Role)
		if !grant.CanView {
			continue
		}

		resolution := e.resolver.Resolve(def, state.Value(name), state.Values)
		field := render.FieldView{
			Name:        def.Name,
			Label:       def.DisplayLabel(),
			Description: def.Description,
			Category:    resolution.Category,
			Required:    def.Required || section.RequiresField(name),
			List:        resolution.List,
			Options:     resolution.Options,
			Mode:        resolution.Mode,
			Placeholder: resolution.Placeholder,
			Editable:    resolution.Editable && grant.CanEdit,
		}
		if resolution.List {
			field.Values = resolution.Strings()
		} else {
			field.Value = resolution.Scalar()
		}
		view.Fields = append(view.Fields, field)
	}

	if e.transformer != nil {
		if err := e.transformer.Transform(&view); err != nil {
			return render.StepView{}, fmt.Errorf("orchestrator: transform view: %w", err)
		}
	}
	e.widgets.Decorate(&view)

	return view, nil
}

// Render executes the step view construction and renderer dispatch, returning
// the rendered bytes.
func (e *Engine) Render(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	view, err := e.StepView(req.Snapshot, req.State, req.Step)
	if err != nil {
		return nil, err
	}

	if len(req.RenderOptions.Errors) > 0 {
		mapping := render.MapErrorPayload(view, req.RenderOptions.Errors)
		applyFieldErrors(&view, mapping)
	}

	renderer, err := e.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	output, err := renderer.Render(ctx, view, req.RenderOptions)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

func applyFieldErrors(view *render.StepView, mapping render.ErrorMapping) {
	for i := range view.Fields {
		if messages, ok := mapping.Fields[view.Fields[i].Name]; ok {
			view.Fields[i].Errors = messages
		}
	}
	view.FormErrors = render.MergeFormErrors(view.FormErrors, mapping.Form...)
}

func (e *Engine) rendererFor(name string) (render.Renderer, error) {
	if e.renderers == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = e.defaultRenderer
	}

	if target != "" {
		renderer, err := e.renderers.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := e.renderers.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := e.renderers.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}
