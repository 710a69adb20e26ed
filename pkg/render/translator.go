package render

import (
	"errors"
	"strings"
)

// ErrMissingTranslator is passed to OnMissing when localisation is requested
// without a Translator configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translator resolves a message key to a localized string.
type Translator interface {
	Translate(locale, key string, params ...any) (string, error)
}

// TranslatorFunc adapts a plain function to the Translator interface.
type TranslatorFunc func(locale, key string, params ...any) (string, error)

func (f TranslatorFunc) Translate(locale, key string, params ...any) (string, error) {
	return f(locale, key, params...)
}

// MissingTranslationHandler decides what string a missing translation renders
// as. The default falls back to the untranslated text.
type MissingTranslationHandler func(locale, key, fallback string, err error) string

func missingTranslationDefault(_, key, fallback string, _ error) string {
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

// LocalizeStepView translates the step title, description and every field's
// label, description and placeholder in place. Best-effort: translation
// failures route through opts.OnMissing and never fail the render.
func LocalizeStepView(view *StepView, opts RenderOptions) {
	if view == nil || opts.Translator == nil {
		return
	}

	onMissing := opts.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	view.Title = translate(opts, view.Title, onMissing)
	view.Description = translate(opts, view.Description, onMissing)

	for i := range view.Fields {
		field := &view.Fields[i]
		field.Label = translate(opts, field.Label, onMissing)
		field.Description = translate(opts, field.Description, onMissing)
		field.Placeholder = translate(opts, field.Placeholder, onMissing)
	}
}

func translate(opts RenderOptions, text string, onMissing MissingTranslationHandler) string {
	key := strings.TrimSpace(text)
	if key == "" {
		return text
	}

	result, err := opts.Translator.Translate(opts.Locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	return onMissing(opts.Locale, key, text, err)
}
