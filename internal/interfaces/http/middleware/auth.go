// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/devanagari-foods/storefront/internal/domain/user"
	"github.com/devanagari-foods/storefront/internal/identity"
	"github.com/devanagari-foods/storefront/internal/pkg/auth"
)

const (
	ctxKeyUserID   = "user_id"
	ctxKeyIdentity = "identity"
	ctxKeyToken    = "session_token"
)

// extractToken pulls the bearer token out of the Authorization header.
func extractToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthMiddleware verifies the provider-issued session token and resolves
// the identity behind it through the session manager.
func AuthMiddleware(verifier *auth.Verifier, sessions *identity.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		claims, err := verifier.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token subject",
			})
			c.Abort()
			return
		}

		ident, err := sessions.Resolve(c.Request.Context(), tokenString, userID, claims.Email)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Session could not be verified",
			})
			c.Abort()
			return
		}

		c.Set(ctxKeyUserID, userID)
		c.Set(ctxKeyIdentity, ident)
		c.Set(ctxKeyToken, tokenString)

		c.Next()
	}
}

// AdminMiddleware gates admin routes on the mirrored users row, not on
// token claims alone.
func AdminMiddleware(users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		u, err := users.Get(c.Request.Context(), userID)
		if err != nil || !u.IsAdministrator() {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserIDFromContext extracts the identity UUID from gin context
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ctxKeyUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetIdentityFromContext extracts the resolved identity from gin context
func GetIdentityFromContext(c *gin.Context) (user.Profile, bool) {
	v, exists := c.Get(ctxKeyIdentity)
	if !exists {
		return user.Profile{}, false
	}
	ident, ok := v.(user.Profile)
	return ident, ok
}

// GetTokenFromContext extracts the raw session token from gin context
func GetTokenFromContext(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxKeyToken)
	if !exists {
		return "", false
	}
	token, ok := v.(string)
	return token, ok
}
