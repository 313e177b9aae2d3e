package app

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MediaStore keeps uploaded recordings on disk for playback.
type MediaStore struct {
	dir       string
	urlPrefix string
}

func NewMediaStore(dir, urlPrefix string) (*MediaStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &MediaStore{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (m *MediaStore) Dir() string { return m.dir }

// Save writes data under a fresh name and returns its public URL.
func (m *MediaStore) Save(originalName, mimeType string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(mimeType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	name := uuid.NewString() + ext

	if err := os.WriteFile(filepath.Join(m.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store media: %w", err)
	}
	return m.urlPrefix + "/" + name, nil
}
