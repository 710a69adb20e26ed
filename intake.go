// Package intake assembles dynamic multi-step forms: field definitions merged
// from several provenance catalogs, an administrator-authored layout of
// ordered sections, role-based field access and per-field value resolution,
// rendered over pluggable renderers. The root package re-exports the pieces
// most callers need; the pkg/ tree carries the full surface.
package intake

import (
	"context"

	"github.com/goliatone/go-intake/pkg/flow"
	"github.com/goliatone/go-intake/pkg/layout"
	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/orchestrator"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/source"
)

// Actor identifies who is loading or saving layouts.
type Actor = layout.Actor

// Context identifies the tenant, screen and acting role a load runs for.
type Context = source.Context

// Snapshot is the settled result of one load.
type Snapshot = orchestrator.Snapshot

// Request describes the inputs required to render one step of a screen.
type Request = orchestrator.Request

// RenderOptions describes per-request overrides that renderers can use to
// surface server-side validation errors, hidden fields or theme config.
type RenderOptions = render.RenderOptions

// StepView is the render model for one step of a multi-step form.
type StepView = render.StepView

// Session drives a form-filling session over a layout.
type Session = flow.Session

// SubmissionState holds the in-memory values of one form-filling session.
type SubmissionState = model.SubmissionState

// NewEngine exposes the orchestrator constructor from the top-level module.
func NewEngine(options ...orchestrator.Option) *orchestrator.Engine {
	return orchestrator.New(options...)
}

// RenderStep loads the screen for the given context and renders one step with
// the named renderer. It is the simplest entry point for callers that just
// want output bytes.
func RenderStep(ctx context.Context, sctx Context, actor Actor, step int, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	engine := orchestrator.New(options...)
	snapshot, err := engine.Load(ctx, sctx, actor)
	if err != nil {
		return nil, err
	}
	return engine.Render(ctx, Request{
		Snapshot: snapshot,
		State:    *model.NewSubmissionState(),
		Step:     step,
		Renderer: rendererName,
	})
}

// NewSession loads the screen for the given context and starts a form-filling
// session over its layout.
func NewSession(ctx context.Context, sctx Context, actor Actor, options ...orchestrator.Option) (*orchestrator.Engine, *flow.Session, error) {
	engine := orchestrator.New(options...)
	snapshot, err := engine.Load(ctx, sctx, actor)
	if err != nil {
		return nil, nil, err
	}
	session, err := engine.NewSession(snapshot)
	if err != nil {
		return nil, nil, err
	}
	return engine, session, nil
}
