package gcs

import (
	"context"

	"github.com/pkg/errors"
)

// ErrObjectNotFound denotes a download of an object that doesn't exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is the durable-storage surface the pipeline needs: a duplicate
// guard probe plus whole-object download and upload.
type ObjectStore interface {
	Exister
	Downloader
	Uploader
}

type Exister interface {
	Exists(ctx context.Context, bucket, object string) (bool, error)
}

type Downloader interface {
	// Download copies the object to localPath and returns the local path written.
	Download(ctx context.Context, bucket, object, localPath string) (string, error)
}

type Uploader interface {
	// Upload copies the local file to the bucket under the given object name.
	// The object appears fully or not at all.
	Upload(ctx context.Context, bucket, localPath, object string) error
}
