// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/devanagari-foods/storefront/internal/domain/checkout"
	"github.com/devanagari-foods/storefront/internal/interfaces/http/middleware"
)

// CheckoutHandler handles the checkout wizard endpoints
type CheckoutHandler struct {
	checkout *checkout.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(svc *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{checkout: svc}
}

// Begin handles POST /checkout
func (h *CheckoutHandler) Begin(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	sum, err := h.checkout.Begin(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sum})
}

// SelectAddressRequest pins the delivery address
type SelectAddressRequest struct {
	AddressID uuid.UUID `json:"address_id" binding:"required"`
}

// SelectAddress handles PUT /checkout/address
func (h *CheckoutHandler) SelectAddress(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req SelectAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	sum, err := h.checkout.SelectAddress(c.Request.Context(), userID, req.AddressID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sum})
}

// Continue handles POST /checkout/continue
func (h *CheckoutHandler) Continue(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	sum, err := h.checkout.Continue(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sum})
}

// Back handles POST /checkout/back
func (h *CheckoutHandler) Back(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	sum, err := h.checkout.Back(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sum})
}

// PromoRequest carries a promo code
type PromoRequest struct {
	Code string `json:"code" binding:"required"`
}

// ApplyPromo handles POST /checkout/promo
func (h *CheckoutHandler) ApplyPromo(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req PromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	sum, err := h.checkout.ApplyPromo(c.Request.Context(), userID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Promo code applied",
		"data":    sum,
	})
}

// RemovePromo handles DELETE /checkout/promo
func (h *CheckoutHandler) RemovePromo(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	sum, err := h.checkout.RemovePromo(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sum})
}

// StartPayment handles POST /checkout/payment
func (h *CheckoutHandler) StartPayment(c *gin.Context) {
	ident, _ := middleware.GetIdentityFromContext(c)

	intent, err := h.checkout.StartPayment(c.Request.Context(), ident)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": intent})
}

// PaymentSuccess handles POST /checkout/payment/success
func (h *CheckoutHandler) PaymentSuccess(c *gin.Context) {
	ident, _ := middleware.GetIdentityFromContext(c)

	var cb checkout.SuccessCallback
	if err := c.ShouldBindJSON(&cb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	o, err := h.checkout.HandleSuccess(c.Request.Context(), ident, cb)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment successful",
		"data":    o,
	})
}

// FailureRequest is the gateway's failure payload
type FailureRequest struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// PaymentFailure handles POST /checkout/payment/failure
func (h *CheckoutHandler) PaymentFailure(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req FailureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	msg := h.checkout.HandleFailure(c.Request.Context(), userID, req.Code, req.Description)

	c.JSON(http.StatusOK, gin.H{"error": msg})
}
