// Package gcs is a thin adapter over Google Cloud Storage providing the
// object existence probe, download and upload operations the pipeline needs.
package gcs

import (
	"context"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"github.com/theranica/rxpipe/helper"
	"github.com/theranica/rxpipe/logger"
)

type client struct {
	log logger.Logger
	api *storage.Client
}

// NewClient creates an ObjectStore backed by Google Cloud Storage using
// application default credentials.
func NewClient(ctx context.Context, log logger.Logger) (ObjectStore, error) {
	api, err := storage.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create storage client")
	}
	return &client{log: log, api: api}, nil
}

func (c *client) Exists(ctx context.Context, bucket, object string) (bool, error) {
	_, err := c.api.Bucket(bucket).Object(object).Attrs(ctx)
	if err == storage.ErrObjectNotExist {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "failed to stat object %q in bucket %q", object, bucket)
	}
	return true, nil
}

func (c *client) Download(ctx context.Context, bucket, object, localPath string) (string, error) {
	if localPath == "" {
		localPath = helper.ScratchPath(object)
	}
	r, err := c.api.Bucket(bucket).Object(object).NewReader(ctx)
	if err == storage.ErrObjectNotExist {
		return "", errors.Wrapf(ErrObjectNotFound, "bucket %q object %q", bucket, object)
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to open object %q in bucket %q", object, bucket)
	}
	defer r.Close()
	f, err := os.Create(localPath)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create local file %q", localPath)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", errors.Wrapf(err, "failed to download object %q", object)
	}
	c.log.Info("blob ", object, " downloaded to path ", localPath)
	return localPath, nil
}

func (c *client) Upload(ctx context.Context, bucket, localPath, object string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open local file %q", localPath)
	}
	defer f.Close()
	w := c.api.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return errors.Wrapf(err, "failed to upload %q to bucket %q", object, bucket)
	}
	if err := w.Close(); err != nil { // the object only becomes visible on Close.
		return errors.Wrapf(err, "failed to finalize upload of %q to bucket %q", object, bucket)
	}
	c.log.Info("blob ", object, " uploaded to bucket ", bucket)
	return nil
}
