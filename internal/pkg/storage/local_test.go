package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devanagari-foods/storefront/internal/config"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	cfg := &config.Config{}
	cfg.Storage.LocalPath = t.TempDir()
	cfg.Storage.PublicBaseURL = "/uploads/"
	return NewLocal(cfg)
}

func TestSaveAvatarWritesFileAndReturnsPublicURL(t *testing.T) {
	l := newTestLocal(t)
	userID := uuid.New()

	url, err := l.SaveAvatar(userID, "selfie.PNG", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/avatars/"+userID.String()+".png", url)

	data, err := os.ReadFile(filepath.Join(l.Dir(), "avatars", userID.String()+".png"))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestSaveAvatarReplacesPrevious(t *testing.T) {
	l := newTestLocal(t)
	userID := uuid.New()

	_, err := l.SaveAvatar(userID, "a.jpg", strings.NewReader("old"))
	require.NoError(t, err)
	_, err = l.SaveAvatar(userID, "b.jpg", strings.NewReader("new"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(l.Dir(), "avatars", userID.String()+".jpg"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestSaveAvatarRejectsNonImage(t *testing.T) {
	l := newTestLocal(t)

	_, err := l.SaveAvatar(uuid.New(), "payload.exe", strings.NewReader("x"))
	assert.Error(t, err)
}
