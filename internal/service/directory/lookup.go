// internal/service/directory/lookup.go
package directory

import (
	"context"
	"sync/atomic"
	"time"

	"dird-service/internal/backend"
	"dird-service/internal/domain/directory"
	"dird-service/internal/domain/profile"
	"dird-service/internal/domain/source"

	"go.uber.org/zap"
)

// DriverResolver resolves a source uuid to its live driver.
type DriverResolver interface {
	Get(ctx context.Context, uuid string) (backend.Driver, *source.Source, error)
}

// LookupService fans a search term out to every source bound to a profile
// and merges the answers in profile order.
type LookupService struct {
	registry   DriverResolver
	logger     *zap.Logger
	timeout    time.Duration
	errorCount atomic.Int64
}

func NewLookupService(registry DriverResolver, logger *zap.Logger, timeout time.Duration) *LookupService {
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &LookupService{registry: registry, logger: logger, timeout: timeout}
}

type dispatch struct {
	index  int
	uuid   string
	driver backend.Driver
}

type indexedResults struct {
	index   int
	results []directory.Result
}

// Lookup runs every bound source's search concurrently and concatenates the
// per-source results preserving the profile's source order, never completion
// order. Sources that fail, disappear or outlive the global deadline
// contribute an empty sequence.
func (s *LookupService) Lookup(ctx context.Context, cfg *profile.Config, term string, rc backend.RequestContext) []directory.Result {
	uuids := cfg.SourceUUIDs(profile.ServiceLookup)
	dispatched := s.resolveDrivers(ctx, uuids)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ch := make(chan indexedResults, len(dispatched))
	for _, d := range dispatched {
		go func(d dispatch) {
			results, err := d.driver.Search(ctx, term, rc)
			if err != nil {
				s.driverFailed(d.uuid, err)
				results = nil
			}
			ch <- indexedResults{index: d.index, results: results}
		}(d)
	}

	collected := make([][]directory.Result, len(uuids))
	remaining := len(dispatched)
	for remaining > 0 {
		select {
		case r := <-ch:
			collected[r.index] = r.results
			remaining--
		case <-ctx.Done():
			s.logger.Warn("lookup deadline reached",
				zap.String("profile", cfg.Name),
				zap.Int("pending_sources", remaining),
			)
			remaining = 0
		}
	}

	var merged []directory.Result
	for _, results := range collected {
		merged = append(merged, results...)
	}
	return merged
}

// resolveDrivers maps source uuids to live drivers, silently skipping
// sources that are missing or whose driver failed to load.
func (s *LookupService) resolveDrivers(ctx context.Context, uuids []string) []dispatch {
	dispatched := make([]dispatch, 0, len(uuids))
	for i, uuid := range uuids {
		driver, _, err := s.registry.Get(ctx, uuid)
		if err != nil {
			s.logger.Warn("skipping unavailable source",
				zap.String("source_uuid", uuid),
				zap.Error(err),
			)
			continue
		}
		dispatched = append(dispatched, dispatch{index: i, uuid: uuid, driver: driver})
	}
	return dispatched
}

func (s *LookupService) driverFailed(uuid string, err error) {
	count := s.errorCount.Add(1)
	s.logger.Warn("source lookup failed",
		zap.String("source_uuid", uuid),
		zap.Int64("error_count", count),
		zap.Error(err),
	)
}

// ErrorCount reports how many driver calls have failed since startup.
func (s *LookupService) ErrorCount() int64 {
	return s.errorCount.Load()
}
