// internal/interfaces/http/handlers/admin.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devanagari-foods/storefront/internal/domain/admin"
	"github.com/devanagari-foods/storefront/internal/interfaces/http/middleware"
)

// AdminHandler handles the read-only refund view
type AdminHandler struct {
	admins *admin.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admins *admin.Service) *AdminHandler {
	return &AdminHandler{admins: admins}
}

// ListRefunds handles GET /admin/refunds?q=&status=
func (h *AdminHandler) ListRefunds(c *gin.Context) {
	adminID, _ := middleware.GetUserIDFromContext(c)

	records, err := h.admins.ListRefunds(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	query := c.Query("q")
	status := c.DefaultQuery("status", "all")
	records = admin.FilterByStatus(admin.Search(records, query), status)

	h.admins.LogAction(c.Request.Context(), adminID, "refunds.list",
		fmt.Sprintf("q=%q status=%q results=%d", query, status, len(records)))

	c.JSON(http.StatusOK, gin.H{"data": records})
}

// ExportRefunds handles GET /admin/refunds/export
func (h *AdminHandler) ExportRefunds(c *gin.Context) {
	adminID, _ := middleware.GetUserIDFromContext(c)

	records, err := h.admins.ListRefunds(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	query := c.Query("q")
	status := c.DefaultQuery("status", "all")
	records = admin.FilterByStatus(admin.Search(records, query), status)

	file, err := admin.ExportRefunds(records)
	if err != nil {
		respondError(c, err)
		return
	}

	h.admins.LogAction(c.Request.Context(), adminID, "refunds.export",
		fmt.Sprintf("q=%q status=%q rows=%d", query, status, len(records)))

	filename := fmt.Sprintf("refunds-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := file.Write(c.Writer); err != nil {
		respondError(c, err)
	}
}
