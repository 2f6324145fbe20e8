// internal/pkg/storage/local.go
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/devanagari-foods/storefront/internal/config"
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Local stores uploaded files on the local filesystem and serves them
// under a public base URL.
type Local struct {
	dir           string
	publicBaseURL string
}

// NewLocal creates a local storage provider
func NewLocal(cfg *config.Config) *Local {
	return &Local{
		dir:           cfg.Storage.LocalPath,
		publicBaseURL: strings.TrimSuffix(cfg.Storage.PublicBaseURL, "/"),
	}
}

// Dir returns the backing directory, for static file serving.
func (l *Local) Dir() string {
	return l.dir
}

// SaveAvatar stores an avatar image keyed to the identity and returns
// its public URL. A re-upload replaces the previous avatar.
func (l *Local) SaveAvatar(userID uuid.UUID, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	dir := filepath.Join(l.dir, "avatars")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := userID.String() + ext
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create avatar file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write avatar file: %w", err)
	}

	return l.publicBaseURL + "/avatars/" + name, nil
}
