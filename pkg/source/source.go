package source

import (
	"context"

	"github.com/goliatone/go-intake/pkg/model"
)

// Context identifies the tenant, screen and acting role a load runs for.
// Loads are re-issued whenever any of these change.
type Context struct {
	TenantID string
	ScreenID string
	Role     string
}

// FieldDescriptor is the raw shape every provenance catalog returns. The
// FieldConfig payload varies per catalog and is only decoded at the registry
// merge boundary.
type FieldDescriptor struct {
	FieldName   string         `json:"field_name"`
	Label       string         `json:"label,omitempty"`
	Description string         `json:"description,omitempty"`
	FieldType   string         `json:"field_type,omitempty"`
	Required    bool           `json:"required,omitempty"`
	Category    string         `json:"category,omitempty"`
	FieldConfig map[string]any `json:"field_config,omitempty"`
}

// Source fetches raw field descriptors from one catalog. Fetch must be a pure
// read; a failing source degrades to an empty collection at the loader level
// rather than aborting the load.
type Source interface {
	Name() string
	Provenance() model.Provenance
	Fetch(ctx context.Context, sc Context) ([]FieldDescriptor, error)
}

// Func adapts a fetch function into a Source.
func Func(name string, provenance model.Provenance, fetch func(ctx context.Context, sc Context) ([]FieldDescriptor, error)) Source {
	return funcSource{name: name, provenance: provenance, fetch: fetch}
}

type funcSource struct {
	name       string
	provenance model.Provenance
	fetch      func(ctx context.Context, sc Context) ([]FieldDescriptor, error)
}

func (s funcSource) Name() string                 { return s.name }
func (s funcSource) Provenance() model.Provenance { return s.provenance }

func (s funcSource) Fetch(ctx context.Context, sc Context) ([]FieldDescriptor, error) {
	return s.fetch(ctx, sc)
}

// Static returns a Source serving a fixed descriptor set. Useful for
// master-data lists, requirement catalogs and tests.
func Static(name string, provenance model.Provenance, descriptors []FieldDescriptor) Source {
	return Func(name, provenance, func(context.Context, Context) ([]FieldDescriptor, error) {
		out := make([]FieldDescriptor, len(descriptors))
		copy(out, descriptors)
		return out, nil
	})
}
