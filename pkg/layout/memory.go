package layout

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-intake/pkg/model"
)

// MemoryStore keeps layouts in process memory, one active document per
// screen. Saving a new active layout supersedes the previous one rather than
// deleting it.
type MemoryStore struct {
	mu       sync.RWMutex
	active   map[string]model.LayoutDocument
	archived map[string][]model.LayoutDocument
}

// NewMemoryStore returns an empty in-memory layout store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		active:   make(map[string]model.LayoutDocument),
		archived: make(map[string][]model.LayoutDocument),
	}
}

// ActiveLayout returns a copy of the published layout for screenID, or nil
// when the screen has no active layout.
func (s *MemoryStore) ActiveLayout(ctx context.Context, screenID string) (*model.LayoutDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.active[screenID]
	if !ok {
		return nil, nil
	}
	copied := cloneLayout(doc)
	return &copied, nil
}

// SaveLayout validates doc and publishes it as the active layout for
// screenID. Every structural issue is collected before rejecting; an invalid
// document never reaches storage. Writes into another tenant's layout fail
// with ErrAccessDenied.
func (s *MemoryStore) SaveLayout(ctx context.Context, screenID string, doc model.LayoutDocument, actor Actor) (model.LayoutDocument, error) {
	if err := ctx.Err(); err != nil {
		return model.LayoutDocument{}, err
	}
	if doc.TenantID != "" && actor.TenantID != "" && doc.TenantID != actor.TenantID {
		return model.LayoutDocument{}, ErrAccessDenied
	}
	if issues := model.ValidateLayout(doc); len(issues) > 0 {
		return model.LayoutDocument{}, &ConfigurationError{LayoutID: doc.ID, Issues: issues}
	}

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.IsActive = true
	doc.SortSections()

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.active[screenID]; ok && prev.ID != doc.ID {
		prev.IsActive = false
		s.archived[screenID] = append(s.archived[screenID], prev)
	}
	s.active[screenID] = cloneLayout(doc)

	return doc, nil
}

// Archived returns superseded layouts for screenID, newest last.
func (s *MemoryStore) Archived(screenID string) []model.LayoutDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.LayoutDocument, 0, len(s.archived[screenID]))
	for _, doc := range s.archived[screenID] {
		out = append(out, cloneLayout(doc))
	}
	return out
}

func cloneLayout(doc model.LayoutDocument) model.LayoutDocument {
	out := doc
	out.Sections = make([]model.SectionDefinition, len(doc.Sections))
	for i, section := range doc.Sections {
		copied := section
		copied.FieldNames = append([]string(nil), section.FieldNames...)
		copied.RequiredOverrides = append([]string(nil), section.RequiredOverrides...)
		out.Sections[i] = copied
	}
	return out
}
