// Package registry resolves "the provider to use for task X" over a cached
// snapshot of provider configuration. Readers always see a consistent
// snapshot; writers replace it atomically.
package registry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gradepilot/evaluator-api/internal/models"
)

var (
	// ErrNoProviderConfigured means no active provider is preferred for the
	// requested task. This is the pipeline's hard configuration error.
	ErrNoProviderConfigured = errors.New("no provider configured for task")

	// ErrNoFallbackProvider means no active non-preferred provider supports
	// the requested task.
	ErrNoFallbackProvider = errors.New("no fallback provider available for task")
)

// Registry is a point-in-time view of provider configuration with a bounded
// staleness window. Lookups are pure reads over the current snapshot.
type Registry struct {
	store           Store
	refreshInterval time.Duration

	mu        sync.RWMutex
	snapshot  []models.ProviderConfig
	refreshed time.Time
}

func New(store Store, refreshInterval time.Duration) *Registry {
	return &Registry{
		store:           store,
		refreshInterval: refreshInterval,
	}
}

// snapshotFor returns the current snapshot, refreshing it from the store
// when the staleness window has elapsed. A failed refresh keeps serving the
// previous snapshot rather than failing lookups.
func (r *Registry) snapshotFor(ctx context.Context) ([]models.ProviderConfig, error) {
	r.mu.RLock()
	fresh := r.refreshed.Add(r.refreshInterval).After(time.Now()) && r.snapshot != nil
	snapshot := r.snapshot
	r.mu.RUnlock()

	if fresh {
		return snapshot, nil
	}

	configs, err := r.store.List(ctx)
	if err != nil {
		if snapshot != nil {
			return snapshot, nil
		}
		return nil, err
	}

	r.mu.Lock()
	r.snapshot = configs
	r.refreshed = time.Now()
	r.mu.Unlock()

	return configs, nil
}

// Invalidate drops the cached snapshot so the next lookup re-reads the
// store. Called after administrative writes.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.snapshot = nil
	r.refreshed = time.Time{}
	r.mu.Unlock()
}

// Resolve returns the active provider preferred for the given task. When
// two providers are both flagged preferred, the first by name wins; the
// model does not enforce uniqueness.
func (r *Registry) Resolve(ctx context.Context, task models.Capability) (*models.ProviderConfig, error) {
	snapshot, err := r.snapshotFor(ctx)
	if err != nil {
		return nil, err
	}

	for _, cfg := range snapshot {
		if cfg.Active && cfg.Supports(task) && cfg.IsPreferredFor(task) {
			c := cfg
			return &c, nil
		}
	}
	return nil, ErrNoProviderConfigured
}

// ResolveFallback returns an active provider that supports the task but is
// not the one named by excluding. The first candidate is acceptable; order
// need not be stable.
func (r *Registry) ResolveFallback(ctx context.Context, task models.Capability, excluding string) (*models.ProviderConfig, error) {
	snapshot, err := r.snapshotFor(ctx)
	if err != nil {
		return nil, err
	}

	for _, cfg := range snapshot {
		if cfg.Active && cfg.Supports(task) && cfg.Name != excluding {
			c := cfg
			return &c, nil
		}
	}
	return nil, ErrNoFallbackProvider
}
