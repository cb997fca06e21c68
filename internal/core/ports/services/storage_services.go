package services

import (
	"context"
	"io"
)

// FileStorage stores document binaries. The core treats content as an opaque
// byte stream: what Upload receives, Download returns bit-exact.
type FileStorage interface {
	// Upload stores a file under the given path and returns the storage path.
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Download retrieves a stored file. The caller closes the reader.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a stored file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error
}
