// internal/backend/registry.go
package backend

import (
	"context"
	"fmt"
	"sync"

	sourcedomain "dird-service/internal/domain/source"
	xerrors "dird-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// SourceLoader loads stored source configurations.
type SourceLoader interface {
	FindByUUID(ctx context.Context, uuid string) (*sourcedomain.Source, error)
}

type registryEntry struct {
	driver Driver
	source *sourcedomain.Source
}

// Registry maps source uuid to a live driver. Drivers are instantiated
// lazily the first time a source is referenced and dropped on configuration
// change events. Lookup-and-insert happens under a single lock, so factories
// must not do network work at construction time.
type Registry struct {
	mu        sync.Mutex
	entries   map[string]registryEntry
	loader    SourceLoader
	factories map[string]Factory
	enabled   map[string]bool
	deps      Deps
	logger    *zap.Logger
}

func NewRegistry(loader SourceLoader, deps Deps, enabledBackends []string) *Registry {
	enabled := make(map[string]bool, len(enabledBackends))
	for _, b := range enabledBackends {
		enabled[b] = true
	}
	return &Registry{
		entries:   map[string]registryEntry{},
		loader:    loader,
		factories: Factories(),
		enabled:   enabled,
		deps:      deps,
		logger:    deps.Logger,
	}
}

// Get returns the live driver for a source uuid, instantiating it on first
// use.
func (r *Registry) Get(ctx context.Context, uuid string) (Driver, *sourcedomain.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[uuid]; ok {
		return entry.driver, entry.source, nil
	}

	cfg, err := r.loader.FindByUUID(ctx, uuid)
	if err != nil {
		return nil, nil, err
	}

	if len(r.enabled) > 0 && !r.enabled[cfg.Backend] {
		return nil, nil, fmt.Errorf("%w: backend %q is disabled", xerrors.ErrNoSuchSource, cfg.Backend)
	}
	factory, ok := r.factories[cfg.Backend]
	if !ok {
		return nil, nil, fmt.Errorf("%w: unknown backend %q", xerrors.ErrNoSuchSource, cfg.Backend)
	}

	driver, err := factory(cfg, r.deps)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build %q driver for source %s: %w", cfg.Backend, uuid, err)
	}

	r.entries[uuid] = registryEntry{driver: driver, source: cfg}
	r.logger.Debug("source driver instantiated",
		zap.String("source_uuid", uuid),
		zap.String("backend", cfg.Backend),
	)
	return driver, cfg, nil
}

// Invalidate drops the cached driver so the next request re-reads its
// configuration.
func (r *Registry) Invalidate(uuid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, uuid)
}

// InvalidateTenant drops every cached driver owned by the tenant.
func (r *Registry) InvalidateTenant(tenantUUID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for uuid, entry := range r.entries {
		if entry.source.TenantUUID == tenantUUID {
			delete(r.entries, uuid)
		}
	}
}
