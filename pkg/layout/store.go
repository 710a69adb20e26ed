// Package layout owns the ordered-steps documents: loading the active layout
// for a screen, validating and saving authored layouts, and the one-time
// auto-population of fresh default layouts.
package layout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-intake/pkg/model"
)

// ErrAccessDenied marks a save or update that targets a layout outside the
// acting tenant. It is non-retryable; callers must not re-attempt the write.
var ErrAccessDenied = errors.New("layout: access denied")

// ConfigurationError rejects a layout that fails its structural invariants.
// The full issue list is enumerated so authors can fix everything at once;
// nothing is partially saved.
type ConfigurationError struct {
	LayoutID string
	Issues   []model.SectionIssue
}

func (e *ConfigurationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "layout: invalid configuration"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		part := issue.Reason
		if issue.SectionID != "" {
			part = fmt.Sprintf("section %q: %s", issue.SectionID, issue.Reason)
		}
		if issue.Field != "" {
			part = fmt.Sprintf("%s (field %q)", part, issue.Field)
		}
		parts = append(parts, part)
	}
	return fmt.Sprintf("layout %q: %s", e.LayoutID, strings.Join(parts, "; "))
}

// AsConfigurationError unwraps err into a ConfigurationError when possible.
func AsConfigurationError(err error) (*ConfigurationError, bool) {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return cfgErr, true
	}
	return nil, false
}

// Actor identifies who is performing a layout mutation. Auto-population and
// tenant checks key off it.
type Actor struct {
	ID       string
	TenantID string
	Admin    bool
}

// Store is the persistence boundary for layout documents. ActiveLayout
// returns nil without error when no layout is published for the screen; that
// absence is fatal to rendering and surfaced by the orchestrator as a
// distinct not-configured condition.
type Store interface {
	ActiveLayout(ctx context.Context, screenID string) (*model.LayoutDocument, error)
	SaveLayout(ctx context.Context, screenID string, doc model.LayoutDocument, actor Actor) (model.LayoutDocument, error)
}
