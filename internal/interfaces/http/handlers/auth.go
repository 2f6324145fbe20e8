// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devanagari-foods/storefront/internal/identity"
	"github.com/devanagari-foods/storefront/internal/interfaces/http/middleware"
)

// AuthHandler handles identity endpoints. Credentials never touch this
// service; every call is brokered to the hosted provider.
type AuthHandler struct {
	provider *identity.Provider
	sessions *identity.Manager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(provider *identity.Provider, sessions *identity.Manager) *AuthHandler {
	return &AuthHandler{provider: provider, sessions: sessions}
}

// RegisterRequest is the signup payload
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
}

// LoginRequest is the password login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	session, err := h.provider.SignUp(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	h.sessions.TrackSignIn(session.User)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"data":    session,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	session, err := h.provider.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	h.sessions.TrackSignIn(session.User)

	c.JSON(http.StatusOK, gin.H{
		"message": "Signed in successfully",
		"data":    session,
	})
}

// OAuthURL handles GET /auth/oauth/:provider
func (h *AuthHandler) OAuthURL(c *gin.Context) {
	providerName := c.Param("provider")
	if providerName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "OAuth provider required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"url": h.provider.OAuthURL(providerName)},
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	token, _ := middleware.GetTokenFromContext(c)

	h.sessions.Logout(c.Request.Context(), token, userID)

	c.JSON(http.StatusOK, gin.H{"message": "Signed out successfully"})
}
