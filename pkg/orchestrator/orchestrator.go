// Package orchestrator coordinates the full pipeline for one screen: the
// concurrent provenance join, registry build, layout and access-rule fetch,
// step view construction and rendering. It applies sensible defaults while
// remaining open to dependency injection for advanced callers.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-intake/pkg/access"
	"github.com/goliatone/go-intake/pkg/flow"
	"github.com/goliatone/go-intake/pkg/intakeconfig"
	"github.com/goliatone/go-intake/pkg/layout"
	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/registry"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/resolve"
	"github.com/goliatone/go-intake/pkg/source"
	"github.com/goliatone/go-intake/pkg/widgets"
)

// ErrSuperseded reports that a newer load for the same engine was issued
// while this one was in flight; the result has been discarded.
var ErrSuperseded = errors.New("orchestrator: load superseded by newer request")

// Option customises the engine configuration.
type Option func(*Engine)

// WithSources configures the provenance loaders joined before every registry
// build.
func WithSources(sources ...source.Source) Option {
	return func(e *Engine) {
		e.sources = append(e.sources, sources...)
	}
}

// WithLoader injects a fully configured provenance loader, replacing the one
// built from WithSources.
func WithLoader(loader *source.Loader) Option {
	return func(e *Engine) {
		e.loader = loader
	}
}

// WithLayouts injects the layout persistence boundary.
func WithLayouts(store layout.Store) Option {
	return func(e *Engine) {
		e.layouts = store
	}
}

// WithAccessRules injects the access-rule collaborator. Leaving it unset
// means "no rules configured": every field renders fully editable.
func WithAccessRules(rules access.RuleSource) Option {
	return func(e *Engine) {
		e.rules = rules
	}
}

// WithConfig supplies the ambient configuration tables: auto-assignment
// keywords, vendor catalog, select-all markers, reset rules and fallback
// sections.
func WithConfig(cfg intakeconfig.Config) Option {
	return func(e *Engine) {
		e.config = cfg
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(reg *render.Registry) Option {
	return func(e *Engine) {
		e.renderers = reg
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(e *Engine) {
		e.defaultRenderer = name
	}
}

// WithWidgets injects a widget registry, replacing the built-in matchers.
func WithWidgets(reg *widgets.Registry) Option {
	return func(e *Engine) {
		e.widgets = reg
	}
}

// WithViewTransformer registers a transformer that can mutate step views
// after construction but before widget decoration and rendering.
func WithViewTransformer(t Transformer) Option {
	return func(e *Engine) {
		e.transformer = t
	}
}

// Engine owns the join-and-render pipeline for one configured screen set.
type Engine struct {
	sources         []source.Source
	loader          *source.Loader
	layouts         layout.Store
	populator       *layout.AutoPopulator
	rules           access.RuleSource
	config          intakeconfig.Config
	renderers       *render.Registry
	widgets         *widgets.Registry
	resolver        *resolve.Resolver
	transformer     Transformer
	defaultRenderer string

	mu         sync.Mutex
	generation uint64
	current    *Snapshot
}

// New constructs an Engine applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Engine {
	e := &Engine{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}

	if e.loader == nil {
		e.loader = source.NewLoader(source.WithSources(e.sources...))
	}
	if e.layouts == nil {
		e.layouts = layout.NewMemoryStore()
	}
	e.populator = layout.NewAutoPopulator(e.layouts, e.config.FallbackSections)
	if e.renderers == nil {
		e.renderers = render.NewRegistry()
	}
	if e.widgets == nil {
		e.widgets = widgets.NewRegistry()
	}

	selectAll := make(map[string]string, len(e.config.SelectAll))
	for _, rule := range e.config.SelectAll {
		selectAll[rule.FieldName] = rule.Marker
	}
	e.resolver = resolve.New(resolve.WithConfig(resolve.Config{SelectAll: selectAll}))

	return e
}

// Snapshot is the settled result of one join: the merged field registry, the
// active layout and the access evaluator for the requesting role. Degraded
// lists the provenance sources that failed and were treated as empty.
type Snapshot struct {
	Context    source.Context
	Fields     *registry.Registry
	Layout     *model.LayoutDocument
	Access     *access.Evaluator
	Degraded   []string
	generation uint64
}

// NotConfigured reports whether the screen has no active layout. Fatal to
// rendering: hosts show an explicit empty state instead of a broken form.
func (s *Snapshot) NotConfigured() bool {
	return s == nil || s.Layout == nil
}

// Load runs the provenance join, layout fetch and access-rule fetch for the
// controlling context and publishes the snapshot. Calls are concurrent-safe;
// when a newer Load is issued while this one is in flight, the stale result
// is discarded and ErrSuperseded returned. Callers re-run Load whenever
// tenant, screen or acting role changes.
func (e *Engine) Load(ctx context.Context, sctx source.Context, actor layout.Actor) (*Snapshot, error) {
	e.mu.Lock()
	e.generation++
	generation := e.generation
	e.mu.Unlock()

	result, err := e.loader.Load(ctx, sctx)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: provenance join: %w", err)
	}

	doc, err := e.populator.ActiveLayout(ctx, sctx.ScreenID, actor)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load layout: %w", err)
	}

	evaluator := e.buildEvaluator(ctx, sctx)

	degraded := make([]string, 0, len(result.Errors))
	for name := range result.Errors {
		degraded = append(degraded, name)
	}
	sort.Strings(degraded)

	snapshot := &Snapshot{
		Context:    sctx,
		Fields:     registry.NewBuilder().Build(result),
		Layout:     doc,
		Access:     evaluator,
		Degraded:   degraded,
		generation: generation,
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if generation != e.generation {
		return nil, ErrSuperseded
	}
	e.current = snapshot
	return snapshot, nil
}

// Current returns the most recently published snapshot, nil while the first
// join is still in flight. Hosts render the loading state in that window.
func (e *Engine) Current() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// NewSession starts a form-filling session over the snapshot's layout with
// the configured reset rules and select-all markers applied.
func (e *Engine) NewSession(snapshot *Snapshot, opts ...flow.Option) (*flow.Session, error) {
	if snapshot.NotConfigured() {
		return nil, fmt.Errorf("orchestrator: screen %q has no active layout", snapshot.Context.ScreenID)
	}

	options := make([]flow.Option, 0, len(e.config.Resets)+len(e.config.SelectAll)+len(opts))
	for _, rule := range e.config.Resets {
		if rule.PreserveValid {
			options = append(options, flow.WithResetHooks(flow.PreserveValidChoice(rule.Parent, rule.Child, e.config.VendorModels)))
			continue
		}
		options = append(options, flow.WithResetHooks(flow.ClearOnChange(rule.Parent, rule.Child)))
	}
	for _, rule := range e.config.SelectAll {
		options = append(options, flow.WithSelectAll(rule.FieldName, rule.Marker))
	}
	options = append(options, opts...)

	return flow.NewSession(*snapshot.Layout, snapshot.Fields, options...), nil
}

// buildEvaluator fetches the access rules for the context's screen and role.
// A missing collaborator or a fetch failure degrades to fail-open.
func (e *Engine) buildEvaluator(ctx context.Context, sctx source.Context) *access.Evaluator {
	options := []access.Option{}
	if e.config.AccessBypass[sctx.ScreenID] {
		options = append(options, access.WithBypass(true))
	}

	if rules, ok := e.config.AccessRules[sctx.ScreenID]; ok {
		options = append(options, access.WithRules(rules))
	}

	if e.rules != nil {
		fetched, err := e.rules.LoadRules(ctx, sctx.ScreenID, sctx.Role)
		if err == nil {
			options = append(options, access.WithRules(fetched))
		}
	}

	return access.NewEvaluator(options...)
}
