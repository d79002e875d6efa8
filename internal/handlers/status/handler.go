// internal/handlers/status/handler.go
package status

import (
	"net/http"

	"dird-service/internal/repository/postgres"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type StatusHandler struct {
	db  *postgres.DB
	bus *redis.Client
}

func NewStatusHandler(db *postgres.DB, bus *redis.Client) *StatusHandler {
	return &StatusHandler{db: db, bus: bus}
}

// Status reports service liveness and the state of its dependencies. It never
// fails the request; degraded dependencies show up in the body.
func (h *StatusHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()

	overall := "ok"

	dbStatus := "ok"
	if err := h.db.Pool().Ping(ctx); err != nil {
		dbStatus = "fail"
		overall = "degraded"
	}

	busStatus := "ok"
	if err := h.bus.Ping(ctx).Err(); err != nil {
		busStatus = "fail"
		overall = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status": overall,
		"connections": gin.H{
			"database": dbStatus,
			"bus":      busStatus,
		},
	})
}
