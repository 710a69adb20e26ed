package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-intake/pkg/model"
)

const defaultFetchTimeout = 10 * time.Second

// Option customises the loader.
type Option func(*Loader)

// WithTimeout bounds every individual source fetch. A fetch exceeding the
// timeout degrades to an empty collection instead of blocking the join.
func WithTimeout(timeout time.Duration) Option {
	return func(l *Loader) {
		if timeout > 0 {
			l.timeout = timeout
		}
	}
}

// WithSources registers the catalogs to load from.
func WithSources(sources ...Source) Option {
	return func(l *Loader) {
		for _, src := range sources {
			if src != nil {
				l.sources = append(l.sources, src)
			}
		}
	}
}

// Loader fans every registered source out concurrently and joins the results
// into per-provenance collections. The join always settles: a failing or slow
// source contributes an empty collection and a recorded error.
type Loader struct {
	sources []Source
	timeout time.Duration
}

// NewLoader constructs a Loader applying any provided options.
func NewLoader(options ...Option) *Loader {
	l := &Loader{timeout: defaultFetchTimeout}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

// Result holds the settled join of every provenance fetch. Errors are keyed
// by source name so callers can surface degraded catalogs without failing.
type Result struct {
	Collections map[model.Provenance][]FieldDescriptor
	Errors      map[string]error
}

// Descriptors returns the merged collection for one provenance.
func (r Result) Descriptors(p model.Provenance) []FieldDescriptor {
	if r.Collections == nil {
		return nil
	}
	return r.Collections[p]
}

// Degraded reports whether any source failed or timed out during the load.
func (r Result) Degraded() bool {
	return len(r.Errors) > 0
}

// Load runs every source concurrently and waits for all of them to settle.
// The returned error is non-nil only when the parent context is cancelled;
// individual source failures are recorded in Result.Errors.
func (l *Loader) Load(ctx context.Context, sc Context) (Result, error) {
	result := Result{
		Collections: make(map[model.Provenance][]FieldDescriptor, len(l.sources)),
		Errors:      make(map[string]error),
	}
	if len(l.sources) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)

	for _, src := range l.sources {
		src := src
		group.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(groupCtx, l.timeout)
			defer cancel()

			descriptors, err := src.Fetch(fetchCtx, sc)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors[src.Name()] = fmt.Errorf("source %q: %w", src.Name(), err)
				descriptors = nil
			}
			result.Collections[src.Provenance()] = append(result.Collections[src.Provenance()], descriptors...)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}
