// internal/interfaces/http/handlers/order.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/devanagari-foods/storefront/internal/domain/order"
	"github.com/devanagari-foods/storefront/internal/interfaces/http/middleware"
	"github.com/devanagari-foods/storefront/internal/pkg/pdf"
)

// OrderHandler handles order history endpoints
type OrderHandler struct {
	orders *order.Service
	pdf    *pdf.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *order.Service, pdfService *pdf.Service) *OrderHandler {
	return &OrderHandler{orders: orders, pdf: pdfService}
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	orders, err := h.orders.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orders})
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	o, err := h.orders.Get(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": o})
}

// Invoice handles GET /orders/:id/invoice
func (h *OrderHandler) Invoice(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	o, err := h.orders.Get(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	buf, err := h.pdf.GenerateInvoice(o)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("invoice-%s.pdf", orderID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
