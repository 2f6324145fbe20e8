// internal/interfaces/http/handlers/profile.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devanagari-foods/storefront/internal/domain/user"
	"github.com/devanagari-foods/storefront/internal/identity"
	"github.com/devanagari-foods/storefront/internal/interfaces/http/middleware"
	"github.com/devanagari-foods/storefront/internal/pkg/storage"
)

// ProfileHandler handles profile endpoints backed by the mirrored row
type ProfileHandler struct {
	users    *user.Service
	sessions *identity.Manager
	storage  *storage.Local
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(users *user.Service, sessions *identity.Manager, store *storage.Local) *ProfileHandler {
	return &ProfileHandler{users: users, sessions: sessions, storage: store}
}

// Get handles GET /profile
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	ident, _ := middleware.GetIdentityFromContext(c)

	resp := gin.H{"identity": ident}
	if state, ok := h.sessions.MirrorStatus(userID); ok {
		resp["mirror_status"] = state
	}
	if u, err := h.users.Get(c.Request.Context(), userID); err == nil {
		resp["profile"] = u
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// UploadAvatar handles POST /profile/avatar
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	ident, _ := middleware.GetIdentityFromContext(c)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar file required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read avatar file"})
		return
	}
	defer f.Close()

	url, err := h.storage.SaveAvatar(userID, fileHeader.Filename, f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ident.AvatarURL = url
	if err := h.users.EnsureMirrored(c.Request.Context(), ident); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Avatar updated",
		"data":    gin.H{"avatar_url": url},
	})
}
