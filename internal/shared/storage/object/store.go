package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving and retrieving uploaded artifacts.
type ObjectStore interface {
	Save(ctx context.Context, tenantID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}

// PathResolver is implemented by stores whose objects live on the local
// filesystem. The OCR engine contract takes a file path, so the pipeline
// needs the real location of a stored artifact.
type PathResolver interface {
	AbsolutePath(storageKey string) (string, error)
}
