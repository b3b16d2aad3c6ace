package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalService keeps assets on the local disk and serves them from a
// public base URL. It is the development fallback when no bucket is
// configured.
type LocalService struct {
	dir     string
	baseURL string
}

func NewLocalService(dir, baseURL string) *LocalService {
	return &LocalService{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *LocalService) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	path, err := s.objectPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", key, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	return nil
}

func (s *LocalService) ResolveURL(ctx context.Context, key string) (string, error) {
	if _, err := s.objectPath(key); err != nil {
		return "", err
	}
	return s.baseURL + "/" + strings.TrimPrefix(key, "/"), nil
}

// objectPath maps a key onto the storage root, rejecting keys that would
// escape it.
func (s *LocalService) objectPath(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(key, "/")))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, cleaned), nil
}

var _ Service = (*LocalService)(nil)
