// internal/handlers/directories/handler.go
package directories

import (
	"net/http"

	"dird-service/internal/backend"
	"dird-service/internal/domain/directory"
	"dird-service/internal/middleware"
	xerrors "dird-service/internal/pkg/errors"
	"dird-service/internal/pkg/response"
	"dird-service/internal/repository/postgres"
	directorysvc "dird-service/internal/service/directory"
	favoritessvc "dird-service/internal/service/favorites"
	personalsvc "dird-service/internal/service/personal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DirectoriesHandler struct {
	profiles  *postgres.ProfileRepository
	users     *postgres.UserRepository
	lookup    *directorysvc.LookupService
	reverse   *directorysvc.ReverseService
	favorites *favoritessvc.Service
	personal  *personalsvc.Service
	logger    *zap.Logger
}

func NewDirectoriesHandler(
	profiles *postgres.ProfileRepository,
	users *postgres.UserRepository,
	lookup *directorysvc.LookupService,
	reverse *directorysvc.ReverseService,
	favorites *favoritessvc.Service,
	personal *personalsvc.Service,
	logger *zap.Logger,
) *DirectoriesHandler {
	return &DirectoriesHandler{
		profiles:  profiles,
		users:     users,
		lookup:    lookup,
		reverse:   reverse,
		favorites: favorites,
		personal:  personal,
		logger:    logger,
	}
}

func requestContext(c *gin.Context) backend.RequestContext {
	return backend.RequestContext{
		Token:      middleware.MustGetToken(c),
		UserUUID:   middleware.MustGetUserUUID(c),
		TenantUUID: middleware.MustGetTenantUUID(c),
	}
}

// Lookup searches every source of the profile's lookup service.
func (h *DirectoriesHandler) Lookup(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		response.Error(c, xerrors.ErrInvalidArgument, "term is missing")
		return
	}

	rc := requestContext(c)
	cfg, err := h.profiles.Resolve(c.Request.Context(), rc.TenantUUID, c.Param("profile"))
	if err != nil {
		response.Error(c, err)
		return
	}

	results := h.lookup.Lookup(c.Request.Context(), cfg, term, rc)

	favoriteIDs, err := h.favorites.FavoriteIDs(c.Request.Context(), cfg, rc.UserUUID)
	if err != nil {
		h.logger.Warn("favorite decoration unavailable", zap.Error(err))
		favoriteIDs = directorysvc.FavoriteSet{}
	}

	headers, types := directorysvc.Headers(cfg.Display)
	c.JSON(http.StatusOK, directory.LookupResponse{
		Term:          term,
		ColumnHeaders: headers,
		ColumnTypes:   types,
		Results:       directorysvc.Format(results, cfg.Display, favoriteIDs),
	})
}

// LookupUser is Lookup performed on behalf of another user of the tenant.
func (h *DirectoriesHandler) LookupUser(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		response.Error(c, xerrors.ErrInvalidArgument, "term is missing")
		return
	}

	rc := requestContext(c)
	userUUID := c.Param("user_uuid")
	exists, err := h.users.Exists(c.Request.Context(), rc.TenantUUID, userUUID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !exists {
		response.Error(c, xerrors.ErrNoSuchUser)
		return
	}

	cfg, err := h.profiles.Resolve(c.Request.Context(), rc.TenantUUID, c.Param("profile"))
	if err != nil {
		response.Error(c, err)
		return
	}

	// personal contacts and favorites follow the impersonated user
	rc.UserUUID = userUUID
	results := h.lookup.Lookup(c.Request.Context(), cfg, term, rc)

	favoriteIDs, err := h.favorites.FavoriteIDs(c.Request.Context(), cfg, userUUID)
	if err != nil {
		h.logger.Warn("favorite decoration unavailable", zap.Error(err))
		favoriteIDs = directorysvc.FavoriteSet{}
	}

	headers, types := directorysvc.Headers(cfg.Display)
	c.JSON(http.StatusOK, directory.LookupResponse{
		Term:          term,
		ColumnHeaders: headers,
		ColumnTypes:   types,
		Results:       directorysvc.Format(results, cfg.Display, favoriteIDs),
	})
}

// Headers returns the column headers of the profile's display without
// querying any source.
func (h *DirectoriesHandler) Headers(c *gin.Context) {
	rc := requestContext(c)
	cfg, err := h.profiles.Resolve(c.Request.Context(), rc.TenantUUID, c.Param("profile"))
	if err != nil {
		response.Error(c, err)
		return
	}

	headers, types := directorysvc.Headers(cfg.Display)
	c.JSON(http.StatusOK, directory.HeadersResponse{
		ColumnHeaders: headers,
		ColumnTypes:   types,
	})
}

// Reverse resolves an extension to the first matching entry, in profile
// source order.
func (h *DirectoriesHandler) Reverse(c *gin.Context) {
	exten := c.Query("exten")
	if exten == "" {
		response.Error(c, xerrors.ErrInvalidArgument, "exten is missing")
		return
	}

	rc := requestContext(c)
	cfg, err := h.profiles.Resolve(c.Request.Context(), rc.TenantUUID, c.Param("profile"))
	if err != nil {
		response.Error(c, err)
		return
	}
	rc.UserUUID = c.Param("user_uuid")

	resp := directory.ReverseResponse{Exten: exten, Fields: map[string]any{}}
	if result := h.reverse.Reverse(c.Request.Context(), cfg, exten, rc); result != nil {
		resp.Fields = result.Fields
		resp.Source = result.Source
		if display, ok := result.Fields["reverse"]; ok && display != nil {
			if s, ok := display.(string); ok {
				resp.Display = &s
			}
		}
	}
	c.JSON(http.StatusOK, resp)
}

// FavoritesList materializes the user's favorites under the profile's
// display. Every returned row carries favorite=true.
func (h *DirectoriesHandler) FavoritesList(c *gin.Context) {
	rc := requestContext(c)
	cfg, err := h.profiles.Resolve(c.Request.Context(), rc.TenantUUID, c.Param("profile"))
	if err != nil {
		response.Error(c, err)
		return
	}

	results, err := h.favorites.Favorites(c.Request.Context(), cfg, rc)
	if err != nil {
		response.Error(c, err)
		return
	}

	// decorate everything returned here as favorite
	all := directorysvc.FavoriteSet{}
	for i := range results {
		entries, ok := all[results[i].Source]
		if !ok {
			entries = map[string]struct{}{}
			all[results[i].Source] = entries
		}
		entries[results[i].SourceEntryID()] = struct{}{}
	}

	headers, types := directorysvc.Headers(cfg.Display)
	c.JSON(http.StatusOK, directory.FavoritesResponse{
		ColumnHeaders: headers,
		ColumnTypes:   types,
		Results:       directorysvc.Format(results, cfg.Display, all),
	})
}

// FavoriteAdd marks {contact} of source {source} as favorite.
func (h *DirectoriesHandler) FavoriteAdd(c *gin.Context) {
	rc := requestContext(c)
	err := h.favorites.Add(c.Request.Context(), rc.TenantUUID, c.Param("source"), c.Param("contact"), rc.UserUUID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// FavoriteRemove unmarks {contact} of source {source}.
func (h *DirectoriesHandler) FavoriteRemove(c *gin.Context) {
	rc := requestContext(c)
	err := h.favorites.Remove(c.Request.Context(), rc.TenantUUID, c.Param("source"), c.Param("contact"), rc.UserUUID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PersonalDirectory lists the caller's personal contacts projected through
// the profile's display.
func (h *DirectoriesHandler) PersonalDirectory(c *gin.Context) {
	rc := requestContext(c)
	cfg, err := h.profiles.Resolve(c.Request.Context(), rc.TenantUUID, c.Param("profile"))
	if err != nil {
		response.Error(c, err)
		return
	}

	contacts, err := h.personal.List(c.Request.Context(), rc.UserUUID)
	if err != nil {
		response.Error(c, err)
		return
	}

	results := make([]directory.Result, 0, len(contacts))
	for _, fields := range contacts {
		raw := make(map[string]any, len(fields))
		for k, v := range fields {
			raw[k] = v
		}
		r := directory.Result{
			Fields:      raw,
			Source:      "personal",
			Backend:     "personal",
			IsPersonal:  true,
			IsDeletable: true,
		}
		r.Relations.SourceEntryID = strptr(fields["id"])
		results = append(results, r)
	}

	favoriteIDs, err := h.favorites.FavoriteIDs(c.Request.Context(), cfg, rc.UserUUID)
	if err != nil {
		h.logger.Warn("favorite decoration unavailable", zap.Error(err))
		favoriteIDs = directorysvc.FavoriteSet{}
	}

	headers, types := directorysvc.Headers(cfg.Display)
	c.JSON(http.StatusOK, directory.LookupResponse{
		ColumnHeaders: headers,
		ColumnTypes:   types,
		Results:       directorysvc.Format(results, cfg.Display, favoriteIDs),
	})
}

func strptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
