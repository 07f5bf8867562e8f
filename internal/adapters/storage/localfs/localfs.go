package localfs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// Storage writes uploads under a base directory and serves them from /uploads.
type Storage struct {
	dir     string
	baseURL string
}

func New(dir, baseURL string) *Storage {
	return &Storage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Storage) Save(ctx context.Context, path string, data []byte) error {
	full := filepath.Join(s.dir, filepath.Clean("/"+path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

func (s *Storage) PublicURL(path string) string {
	return s.baseURL + "/uploads/" + strings.TrimLeft(path, "/")
}
