// Package registry merges raw field descriptors from every provenance catalog
// into one deduplicated registry keyed by field name. Precedence follows the
// declared provenance order; a later descriptor may only fill gaps in an
// earlier entry, never regress a fully-specified one.
package registry

import (
	"strings"

	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/source"
)

// Option customises the builder.
type Option func(*Builder)

// WithPrecedence overrides the provenance merge order. Provenances omitted
// from the list are merged after the listed ones, in canonical order.
func WithPrecedence(order ...model.Provenance) Option {
	return func(b *Builder) {
		if len(order) > 0 {
			b.precedence = order
		}
	}
}

// Builder converts provenance load results into a field registry.
type Builder struct {
	precedence []model.Provenance
}

// NewBuilder constructs a Builder applying any provided options.
func NewBuilder(options ...Option) *Builder {
	b := &Builder{precedence: model.ProvenancePrecedence()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// Registry is the deduplicated map from field name to its merged definition.
// Insertion order is preserved for deterministic iteration.
type Registry struct {
	fields map[string]model.FieldDefinition
	order  []string
}

// Get returns the merged definition for a field name.
func (r *Registry) Get(name string) (model.FieldDefinition, bool) {
	if r == nil {
		return model.FieldDefinition{}, false
	}
	def, ok := r.fields[name]
	return def, ok
}

// Has reports whether a field is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Len reports the number of registered fields.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// Fields returns every definition in insertion order.
func (r *Registry) Fields() []model.FieldDefinition {
	if r == nil {
		return nil
	}
	out := make([]model.FieldDefinition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.fields[name])
	}
	return out
}

// Build merges the settled load result into a registry. Collections are
// visited in precedence order; within a collection descriptors keep their
// fetch order. No descriptor is ever dropped: unknown field types become
// text, and duplicate names only overwrite when the incoming definition is
// more specific than the stored one.
func (b *Builder) Build(result source.Result) *Registry {
	reg := &Registry{fields: make(map[string]model.FieldDefinition)}

	for _, provenance := range b.mergeOrder() {
		for _, desc := range result.Descriptors(provenance) {
			def, ok := normalizeDescriptor(desc, provenance)
			if !ok {
				continue
			}
			b.merge(reg, def)
		}
	}

	return reg
}

func (b *Builder) merge(reg *Registry, incoming model.FieldDefinition) {
	existing, ok := reg.fields[incoming.Name]
	if !ok {
		reg.fields[incoming.Name] = incoming
		reg.order = append(reg.order, incoming.Name)
		return
	}

	// Fill gaps, never regress: the stored entry only yields when it has no
	// specific configuration and the incoming one does.
	if !existing.HasConfig() && incoming.HasConfig() {
		reg.fields[incoming.Name] = incoming
	}
}

func (b *Builder) mergeOrder() []model.Provenance {
	seen := make(map[model.Provenance]struct{}, len(b.precedence))
	order := make([]model.Provenance, 0, len(b.precedence))
	for _, p := range b.precedence {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		order = append(order, p)
	}
	for _, p := range model.ProvenancePrecedence() {
		if _, ok := seen[p]; ok {
			continue
		}
		order = append(order, p)
	}
	return order
}

func normalizeDescriptor(desc source.FieldDescriptor, provenance model.Provenance) (model.FieldDefinition, bool) {
	name := strings.TrimSpace(desc.FieldName)
	if name == "" {
		return model.FieldDefinition{}, false
	}

	def := model.FieldDefinition{
		Name:        name,
		Label:       strings.TrimSpace(desc.Label),
		Description: strings.TrimSpace(desc.Description),
		Required:    desc.Required,
		Category:    strings.TrimSpace(desc.Category),
		Provenance:  provenance,
		Type:        normalizeType(desc.FieldType),
	}

	applyFieldConfig(&def, desc.FieldConfig)

	// A dependency implies the dependent select rendering even when the
	// catalog declared a plain select.
	if def.Dependency != nil && def.Type == model.FieldTypeSelect {
		def.Type = model.FieldTypeDependentSelect
	}

	return def, true
}

func normalizeType(raw string) model.FieldType {
	ft := model.FieldType(strings.TrimSpace(strings.ToLower(raw)))
	if model.KnownFieldType(ft) {
		return ft
	}
	return model.FieldTypeText
}
