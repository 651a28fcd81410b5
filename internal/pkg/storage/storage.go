package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned by Get when nothing is stored under the path.
var ErrNotExist = errors.New("stored object does not exist")

// Storage persists uploaded room images and their thumbnails.
// Paths are relative and use forward slashes.
type Storage interface {
	Save(ctx context.Context, path string, content io.Reader) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}
