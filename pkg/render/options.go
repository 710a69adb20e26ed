package render

import (
	theme "github.com/goliatone/go-theme"
)

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the view pipeline.
type RenderOptions struct {
	// Errors surfaces server-side validation feedback keyed by field name.
	// Renderers map these into inline messages next to the offending control.
	Errors map[string][]string
	// HiddenFields are emitted alongside the visible controls, for example a
	// CSRF token or the draft record id.
	HiddenFields map[string]string
	// Theme, when set, supplies design tokens, partial overrides and asset
	// URLs to HTML renderers.
	Theme *theme.RendererConfig
	// Locale selects the translation language when a Translator is set.
	Locale string
	// Translator localises labels, titles and placeholders. Nil leaves the
	// view untouched.
	Translator Translator
	// OnMissing controls the string produced for missing translations.
	OnMissing MissingTranslationHandler
}
