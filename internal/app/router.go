// internal/app/router.go
package app

import (
	directoriesHandler "dird-service/internal/handlers/directories"
	personalHandler "dird-service/internal/handlers/personal"
	statusHandler "dird-service/internal/handlers/status"
	"dird-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	DirectoriesHandler *directoriesHandler.DirectoriesHandler
	PersonalHandler    *personalHandler.PersonalHandler
	StatusHandler      *statusHandler.StatusHandler
	AuthMiddleware     *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/0.1")

	// ==================== Status ====================
	r.GET("/status", h.StatusHandler.Status)

	// ==================== Directories ====================
	directories := api.Group("/directories")
	directories.Use(h.AuthMiddleware.Auth())
	{
		directories.GET("/lookup/:profile",
			h.AuthMiddleware.RequireACL("dird.directories.lookup.{profile}.read"),
			h.DirectoriesHandler.Lookup)
		directories.GET("/lookup/:profile/headers",
			h.AuthMiddleware.RequireACL("dird.directories.lookup.{profile}.headers.read"),
			h.DirectoriesHandler.Headers)
		directories.GET("/lookup/:profile/:user_uuid",
			h.AuthMiddleware.RequireACL("dird.directories.lookup.{profile}.{user_uuid}.read"),
			h.DirectoriesHandler.LookupUser)
		directories.GET("/reverse/:profile/:user_uuid",
			h.AuthMiddleware.RequireACL("dird.directories.reverse.{profile}.{user_uuid}.read"),
			h.DirectoriesHandler.Reverse)
		directories.GET("/favorites/:profile",
			h.AuthMiddleware.RequireACL("dird.directories.favorites.{profile}.read"),
			h.DirectoriesHandler.FavoritesList)
		directories.PUT("/favorites/:source/:contact",
			h.AuthMiddleware.RequireACL("dird.directories.favorites.{source}.{contact}.update"),
			h.DirectoriesHandler.FavoriteAdd)
		directories.DELETE("/favorites/:source/:contact",
			h.AuthMiddleware.RequireACL("dird.directories.favorites.{source}.{contact}.delete"),
			h.DirectoriesHandler.FavoriteRemove)
		directories.GET("/personal/:profile",
			h.AuthMiddleware.RequireACL("dird.directories.personal.{profile}.read"),
			h.DirectoriesHandler.PersonalDirectory)
	}

	// ==================== Personal Contacts ====================
	personal := api.Group("/personal")
	personal.Use(h.AuthMiddleware.Auth())
	{
		personal.GET("",
			h.AuthMiddleware.RequireACL("dird.personal.read"),
			h.PersonalHandler.List)
		personal.POST("",
			h.AuthMiddleware.RequireACL("dird.personal.create"),
			h.PersonalHandler.Create)
		personal.DELETE("",
			h.AuthMiddleware.RequireACL("dird.personal.delete"),
			h.PersonalHandler.Purge)
		personal.POST("/import",
			h.AuthMiddleware.RequireACL("dird.personal.import.create"),
			h.PersonalHandler.Import)
		personal.GET("/:contact_uuid",
			h.AuthMiddleware.RequireACL("dird.personal.{contact_uuid}.read"),
			h.PersonalHandler.Get)
		personal.PUT("/:contact_uuid",
			h.AuthMiddleware.RequireACL("dird.personal.{contact_uuid}.update"),
			h.PersonalHandler.Update)
		personal.DELETE("/:contact_uuid",
			h.AuthMiddleware.RequireACL("dird.personal.{contact_uuid}.delete"),
			h.PersonalHandler.Delete)
	}
}
