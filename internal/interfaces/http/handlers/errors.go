// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devanagari-foods/storefront/internal/domain/cart"
	"github.com/devanagari-foods/storefront/internal/domain/checkout"
	"github.com/devanagari-foods/storefront/internal/domain/user"
	"github.com/devanagari-foods/storefront/internal/rowstore"
)

// respondError maps domain errors onto HTTP responses. Validation
// problems come back as 4xx with their user-facing message; schema
// problems come back as 503 with setup guidance.
func respondError(c *gin.Context, err error) {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, cart.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sign in to continue"})
	case errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, user.ErrAddressNotFound),
		rowstore.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, checkout.ErrSignatureMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment verification failed"})
	case errors.Is(err, checkout.ErrNoActivePayment):
		c.JSON(http.StatusConflict, gin.H{"error": "No active payment attempt"})
	case rowstore.IsSchemaMissing(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Store tables are not set up yet. Run the database migrations and restart.",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
