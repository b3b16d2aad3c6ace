package storage

import (
	"context"
	"io"
)

// Service stores profile assets and resolves stored keys into URLs a
// client can fetch directly.
type Service interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	ResolveURL(ctx context.Context, key string) (string, error)
}
