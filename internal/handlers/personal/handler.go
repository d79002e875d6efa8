// internal/handlers/personal/handler.go
package personal

import (
	"io"
	"net/http"
	"strings"

	"dird-service/internal/domain/contact"
	"dird-service/internal/middleware"
	xerrors "dird-service/internal/pkg/errors"
	"dird-service/internal/pkg/response"
	service "dird-service/internal/service/personal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PersonalHandler struct {
	personalService *service.Service
	logger          *zap.Logger
}

func NewPersonalHandler(personalService *service.Service, logger *zap.Logger) *PersonalHandler {
	return &PersonalHandler{
		personalService: personalService,
		logger:          logger,
	}
}

// List returns all personal contacts of the caller, as JSON or as CSV when
// requested with ?format=text/csv or an Accept: text/csv header.
func (h *PersonalHandler) List(c *gin.Context) {
	userUUID := middleware.MustGetUserUUID(c)

	if wantsCSV(c) {
		text, err := h.personalService.ExportCSV(c.Request.Context(), userUUID)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(text))
		return
	}

	items, err := h.personalService.List(c.Request.Context(), userUUID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, contact.ListResponse{Items: items})
}

// Create adds one personal contact from a JSON object of string fields.
func (h *PersonalHandler) Create(c *gin.Context) {
	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Error(c, xerrors.ErrInvalidContact, "body must be a flat object of string fields")
		return
	}

	created, err := h.personalService.Create(
		c.Request.Context(),
		middleware.MustGetTenantUUID(c),
		middleware.MustGetUserUUID(c),
		fields,
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Get returns one personal contact by uuid.
func (h *PersonalHandler) Get(c *gin.Context) {
	fields, err := h.personalService.Get(c.Request.Context(), middleware.MustGetUserUUID(c), c.Param("contact_uuid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, fields)
}

// Update replaces all fields of one personal contact.
func (h *PersonalHandler) Update(c *gin.Context) {
	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Error(c, xerrors.ErrInvalidContact, "body must be a flat object of string fields")
		return
	}

	updated, err := h.personalService.Edit(
		c.Request.Context(),
		middleware.MustGetTenantUUID(c),
		middleware.MustGetUserUUID(c),
		c.Param("contact_uuid"),
		fields,
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes one personal contact.
func (h *PersonalHandler) Delete(c *gin.Context) {
	err := h.personalService.Delete(c.Request.Context(), middleware.MustGetUserUUID(c), c.Param("contact_uuid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Import creates contacts in bulk from a CSV body. Rows that fail validation
// are reported without aborting the rest.
func (h *PersonalHandler) Import(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, xerrors.ErrInvalidArgument, "failed to read request body")
		return
	}

	result, err := h.personalService.ImportCSV(
		c.Request.Context(),
		middleware.MustGetTenantUUID(c),
		middleware.MustGetUserUUID(c),
		string(body),
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Purge removes every personal contact of the caller.
func (h *PersonalHandler) Purge(c *gin.Context) {
	if err := h.personalService.Purge(c.Request.Context(), middleware.MustGetUserUUID(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func wantsCSV(c *gin.Context) bool {
	if c.Query("format") == "text/csv" {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "text/csv")
}
