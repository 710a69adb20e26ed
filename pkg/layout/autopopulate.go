package layout

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-intake/pkg/model"
)

// AutoPopulator fills fresh, section-less default layouts with a configured
// fallback step set. Population happens at most once per layout: a denied
// write marks the layout so it is never retried, and non-admin or
// cross-tenant actors skip silently and read the bare layout instead.
type AutoPopulator struct {
	store    Store
	fallback []model.SectionDefinition

	mu        sync.Mutex
	doNotFill map[string]struct{}
}

// NewAutoPopulator wraps store with fallback sections applied to empty
// default layouts on first read.
func NewAutoPopulator(store Store, fallback []model.SectionDefinition) *AutoPopulator {
	return &AutoPopulator{
		store:     store,
		fallback:  fallback,
		doNotFill: make(map[string]struct{}),
	}
}

// ActiveLayout loads the active layout for screenID and, when it is an empty
// default layout, attempts to populate it with the fallback sections on
// behalf of actor. Failures to populate degrade to returning the layout
// as stored.
func (a *AutoPopulator) ActiveLayout(ctx context.Context, screenID string, actor Actor) (*model.LayoutDocument, error) {
	doc, err := a.store.ActiveLayout(ctx, screenID)
	if err != nil || doc == nil {
		return doc, err
	}
	if !a.shouldPopulate(*doc, actor) {
		return doc, nil
	}

	candidate := *doc
	candidate.Sections = make([]model.SectionDefinition, len(a.fallback))
	copy(candidate.Sections, a.fallback)

	saved, err := a.store.SaveLayout(ctx, screenID, candidate, actor)
	if err != nil {
		if errors.Is(err, ErrAccessDenied) {
			a.markDoNotFill(doc.ID)
		}
		return doc, nil
	}
	return &saved, nil
}

func (a *AutoPopulator) shouldPopulate(doc model.LayoutDocument, actor Actor) bool {
	if len(a.fallback) == 0 || len(doc.Sections) > 0 || !doc.IsDefault {
		return false
	}
	if !actor.Admin {
		return false
	}
	if doc.TenantID != "" && actor.TenantID != doc.TenantID {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	_, blocked := a.doNotFill[doc.ID]
	return !blocked
}

func (a *AutoPopulator) markDoNotFill(layoutID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.doNotFill[layoutID] = struct{}{}
}
