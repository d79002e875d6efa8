// internal/service/favorites/favorites.go
package favorites

import (
	"context"

	"dird-service/internal/backend"
	directorydomain "dird-service/internal/domain/directory"
	"dird-service/internal/domain/favorite"
	"dird-service/internal/domain/profile"
	sourcedomain "dird-service/internal/domain/source"
	directorysvc "dird-service/internal/service/directory"

	"go.uber.org/zap"
)

// FavoriteStore is the persistence surface the service needs. The postgres
// repository implements it; tests drive it with a fake.
type FavoriteStore interface {
	Add(ctx context.Context, f *favorite.Favorite) error
	Remove(ctx context.Context, f *favorite.Favorite) error
	ListByUser(ctx context.Context, userUUID string, sourceUUIDs []string) ([]favorite.Favorite, error)
}

// SourceStore resolves source configurations by name or uuid.
type SourceStore interface {
	FindByName(ctx context.Context, tenantUUID, name string) (*sourcedomain.Source, error)
	FindByUUIDs(ctx context.Context, uuids []string) (map[string]*sourcedomain.Source, error)
}

// Service manages per-user favorites and materializes them into full
// directory results.
type Service struct {
	favorites FavoriteStore
	sources   SourceStore
	registry  directorysvc.DriverResolver
	logger    *zap.Logger
}

func NewService(favorites FavoriteStore, sources SourceStore, registry directorysvc.DriverResolver, logger *zap.Logger) *Service {
	return &Service{
		favorites: favorites,
		sources:   sources,
		registry:  registry,
		logger:    logger,
	}
}

// Add marks one source entry as favorite. The source name must exist within
// the tenant.
func (s *Service) Add(ctx context.Context, tenantUUID, sourceName, entryID, userUUID string) error {
	src, err := s.sources.FindByName(ctx, tenantUUID, sourceName)
	if err != nil {
		return err
	}
	return s.favorites.Add(ctx, &favorite.Favorite{
		SourceUUID:    src.UUID,
		SourceEntryID: entryID,
		UserUUID:      userUUID,
	})
}

// Remove unmarks one source entry.
func (s *Service) Remove(ctx context.Context, tenantUUID, sourceName, entryID, userUUID string) error {
	src, err := s.sources.FindByName(ctx, tenantUUID, sourceName)
	if err != nil {
		return err
	}
	return s.favorites.Remove(ctx, &favorite.Favorite{
		SourceUUID:    src.UUID,
		SourceEntryID: entryID,
		UserUUID:      userUUID,
	})
}

// FavoriteIDs returns, for the sources bound to the profile, the set of
// favorited entry ids keyed by source name. Computed once per request and
// handed to the formatter.
func (s *Service) FavoriteIDs(ctx context.Context, cfg *profile.Config, userUUID string) (directorysvc.FavoriteSet, error) {
	uuids := boundSourceUUIDs(cfg)
	if len(uuids) == 0 {
		return directorysvc.FavoriteSet{}, nil
	}

	favorites, err := s.favorites.ListByUser(ctx, userUUID, uuids)
	if err != nil {
		return nil, err
	}
	if len(favorites) == 0 {
		return directorysvc.FavoriteSet{}, nil
	}

	sources, err := s.sources.FindByUUIDs(ctx, uuids)
	if err != nil {
		return nil, err
	}

	set := directorysvc.FavoriteSet{}
	for _, f := range favorites {
		src, ok := sources[f.SourceUUID]
		if !ok {
			continue
		}
		entries, ok := set[src.Name]
		if !ok {
			entries = map[string]struct{}{}
			set[src.Name] = entries
		}
		entries[f.SourceEntryID] = struct{}{}
	}
	return set, nil
}

// Favorites materializes the user's favorites by asking every relevant
// driver for the stored entry ids, in profile source order. Entries a driver
// no longer knows are silently dropped; the favorite row remains.
func (s *Service) Favorites(ctx context.Context, cfg *profile.Config, rc backend.RequestContext) ([]directorydomain.Result, error) {
	uuids := cfg.SourceUUIDs(profile.ServiceFavorites)
	if len(uuids) == 0 {
		return nil, nil
	}

	favorites, err := s.favorites.ListByUser(ctx, rc.UserUUID, uuids)
	if err != nil {
		return nil, err
	}

	bySource := map[string][]string{}
	for _, f := range favorites {
		bySource[f.SourceUUID] = append(bySource[f.SourceUUID], f.SourceEntryID)
	}

	var results []directorydomain.Result
	for _, uuid := range uuids {
		ids := bySource[uuid]
		if len(ids) == 0 {
			continue
		}

		driver, _, err := s.registry.Get(ctx, uuid)
		if err != nil {
			s.logger.Warn("skipping unavailable favorite source",
				zap.String("source_uuid", uuid),
				zap.Error(err),
			)
			continue
		}
		lister, ok := driver.(backend.ListDriver)
		if !ok {
			continue
		}

		entries, err := lister.ListByIDs(ctx, ids, rc)
		if err != nil {
			s.logger.Warn("failed to materialize favorites",
				zap.String("source_uuid", uuid),
				zap.Error(err),
			)
			continue
		}
		results = append(results, entries...)
	}
	return results, nil
}

// boundSourceUUIDs returns every source uuid the profile references across
// its services, deduplicated, lookup bindings first.
func boundSourceUUIDs(cfg *profile.Config) []string {
	seen := map[string]struct{}{}
	var uuids []string
	for _, service := range []string{profile.ServiceLookup, profile.ServiceFavorites, profile.ServiceReverse} {
		for _, uuid := range cfg.SourceUUIDs(service) {
			if _, ok := seen[uuid]; ok {
				continue
			}
			seen[uuid] = struct{}{}
			uuids = append(uuids, uuid)
		}
	}
	return uuids
}
