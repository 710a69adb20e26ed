// Package htmlform renders step views as server-side HTML using embedded
// pongo2 templates. The markup is dependency-free on the client: navigation
// and submission post back through regular form actions.
package htmlform

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-intake/pkg/render"
	rendertemplate "github.com/goliatone/go-intake/pkg/render/template"
	gotemplate "github.com/goliatone/go-intake/pkg/render/template/gotemplate"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("htmlform renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer}, nil
}

func (r *Renderer) Name() string {
	return "htmlform"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, view render.StepView, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("htmlform renderer: template renderer is nil")
	}

	if options.Translator != nil {
		render.LocalizeStepView(&view, options)
	}

	template := "templates/step.tpl"
	switch {
	case view.Loading:
		template = "templates/loading.tpl"
	case view.NotConfigured:
		template = "templates/not_configured.tpl"
	}

	result, err := r.templates.RenderTemplate(template, buildContext(view, options))
	if err != nil {
		return nil, fmt.Errorf("htmlform renderer: render template: %w", err)
	}
	return []byte(result), nil
}
