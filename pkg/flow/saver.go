package flow

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-intake/pkg/model"
)

// DraftStore is the persistence boundary for submission drafts.
type DraftStore interface {
	LoadDraft(ctx context.Context, recordID string) (*model.SubmissionState, error)
	CreateDraft(ctx context.Context, values map[string]any) (string, error)
	UpdateDraft(ctx context.Context, recordID string, values map[string]any, currentStep int) error
}

// SaverOption configures a Saver.
type SaverOption func(*Saver)

// WithSaveErrorHandler receives errors from background saves. Without it
// save failures are dropped.
func WithSaveErrorHandler(fn func(recordID string, err error)) SaverOption {
	return func(s *Saver) {
		s.onError = fn
	}
}

// Saver sequences draft writes per record: saves against the same record run
// one at a time, and a save scheduled while another is in flight replaces any
// still-queued snapshot so only the latest state is written.
type Saver struct {
	store   DraftStore
	onError func(recordID string, err error)

	mu       sync.Mutex
	inflight map[string]bool
	queued   map[string]draftSnapshot
	wg       sync.WaitGroup
}

type draftSnapshot struct {
	values map[string]any
	step   int
}

// NewSaver wraps store with per-record write sequencing.
func NewSaver(store DraftStore, opts ...SaverOption) *Saver {
	s := &Saver{
		store:    store,
		inflight: make(map[string]bool),
		queued:   make(map[string]draftSnapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create persists a new draft synchronously and returns its record id.
func (s *Saver) Create(ctx context.Context, values map[string]any) (string, error) {
	return s.store.CreateDraft(ctx, values)
}

// Load fetches an existing draft synchronously.
func (s *Saver) Load(ctx context.Context, recordID string) (*model.SubmissionState, error) {
	return s.store.LoadDraft(ctx, recordID)
}

// Save schedules a background write of the given snapshot. If a write for the
// record is already in flight the snapshot is queued, overwriting any
// previously queued one.
func (s *Saver) Save(recordID string, values map[string]any, currentStep int) {
	s.mu.Lock()
	s.queued[recordID] = draftSnapshot{values: values, step: currentStep}
	if s.inflight[recordID] {
		s.mu.Unlock()
		return
	}
	s.inflight[recordID] = true
	s.wg.Add(1)
	s.mu.Unlock()

	go s.drain(recordID)
}

// SaveNow writes the snapshot synchronously, after any in-flight background
// write for the record has completed.
func (s *Saver) SaveNow(ctx context.Context, recordID string, values map[string]any, currentStep int) error {
	s.Wait()
	return s.store.UpdateDraft(ctx, recordID, values, currentStep)
}

// Wait blocks until all scheduled background saves have completed. Intended
// for shutdown and tests.
func (s *Saver) Wait() {
	s.wg.Wait()
}

func (s *Saver) drain(recordID string) {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		snapshot, ok := s.queued[recordID]
		if !ok {
			s.inflight[recordID] = false
			s.mu.Unlock()
			return
		}
		delete(s.queued, recordID)
		s.mu.Unlock()

		if err := s.store.UpdateDraft(context.Background(), recordID, snapshot.values, snapshot.step); err != nil && s.onError != nil {
			s.onError(recordID, err)
		}
	}
}

// MemoryDraftStore keeps drafts in process memory. Record ids are random
// UUIDs.
type MemoryDraftStore struct {
	mu     sync.RWMutex
	drafts map[string]model.SubmissionState
}

// NewMemoryDraftStore returns an empty in-memory draft store.
func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[string]model.SubmissionState)}
}

func (s *MemoryDraftStore) LoadDraft(ctx context.Context, recordID string) (*model.SubmissionState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.drafts[recordID]
	if !ok {
		return nil, nil
	}
	copied := state
	copied.Values = state.CloneValues()
	return &copied, nil
}

func (s *MemoryDraftStore) CreateDraft(ctx context.Context, values map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	recordID := uuid.NewString()
	state := model.SubmissionState{
		RecordID:    recordID,
		Values:      values,
		CurrentStep: 1,
		Status:      model.SubmissionStatusDraft,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[recordID] = state

	return recordID, nil
}

func (s *MemoryDraftStore) UpdateDraft(ctx context.Context, recordID string, values map[string]any, currentStep int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.drafts[recordID]
	if !ok {
		return fmt.Errorf("flow: draft %q not found", recordID)
	}
	state.Values = values
	state.CurrentStep = currentStep
	s.drafts[recordID] = state
	return nil
}
