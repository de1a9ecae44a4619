// Package docstore is the Firestore adapter: it serves the pipeline's
// configuration document and the incremental array-valued document updates
// consumed by the mobile app.
package docstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"github.com/theranica/rxpipe/logger"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// batchSize caps the number of writes per committed batch.
const batchSize = 500

// NotFoundError reports a document that does not exist.
type NotFoundError struct {
	Collection string
	Doc        string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %q not found in collection %q", e.Doc, e.Collection)
}

// Document is one keyed payload for an upsert batch.
type Document struct {
	Key     string
	Payload map[string]interface{}
}

// Client wraps a Firestore connection.
type Client struct {
	log logger.Logger
	api *firestore.Client
}

// NewClient creates a Client using application default credentials.
func NewClient(ctx context.Context, log logger.Logger, projectID string) (*Client, error) {
	api, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create firestore client")
	}
	return &Client{log: log, api: api}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.api.Close()
}

// GetConfigDoc fetches one document and returns its fields. A missing document
// is a *NotFoundError.
func (c *Client) GetConfigDoc(ctx context.Context, collection, doc string) (map[string]interface{}, error) {
	snap, err := c.api.Collection(collection).Doc(doc).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, &NotFoundError{Collection: collection, Doc: doc}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read document %q from collection %q", doc, collection)
	}
	return snap.Data(), nil
}

// Upsert writes the given documents in committed batches, merging into
// existing documents and creating missing ones.
func (c *Client) Upsert(ctx context.Context, collection string, docs []Document) error {
	c.log.Info("about to update ", len(docs), " records in collection ", collection)
	batch := c.api.Batch()
	pending := 0
	for _, d := range docs {
		ref := c.api.Collection(collection).Doc(d.Key)
		batch.Set(ref, d.Payload, firestore.MergeAll)
		pending++
		if pending == batchSize {
			if _, err := batch.Commit(ctx); err != nil {
				return errors.Wrapf(err, "failed to commit batch to collection %q", collection)
			}
			c.log.Info(pending, " records committed to collection ", collection)
			batch = c.api.Batch()
			pending = 0
		}
	}
	if pending > 0 {
		if _, err := batch.Commit(ctx); err != nil {
			return errors.Wrapf(err, "failed to commit batch to collection %q", collection)
		}
		c.log.Info(pending, " record(s) committed to collection ", collection)
	}
	return nil
}

// dedupe drops repeated values while preserving first-seen order. Array union
// is idempotent server side too, so this only trims the request.
func dedupe(values []interface{}) []interface{} {
	seen := make(map[interface{}]struct{}, len(values))
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (c *Client) updateArray(ctx context.Context, collection, key, field string, value interface{}) error {
	_, err := c.api.Collection(collection).Doc(key).Update(ctx, []firestore.Update{
		{Path: field, Value: value},
	})
	if err != nil {
		return errors.Wrapf(err, "failed to update field %q of document %q in collection %q", field, key, collection)
	}
	return nil
}

// ArrayAdd unions values into an array field of one document.
func (c *Client) ArrayAdd(ctx context.Context, collection, key, field string, values []interface{}) error {
	if err := c.updateArray(ctx, collection, key, field, firestore.ArrayUnion(dedupe(values)...)); err != nil {
		return err
	}
	c.log.Info("values added to field ", field, " of document ", key)
	return nil
}

// ArrayRemove removes values from an array field of one document.
func (c *Client) ArrayRemove(ctx context.Context, collection, key, field string, values []interface{}) error {
	if err := c.updateArray(ctx, collection, key, field, firestore.ArrayRemove(dedupe(values)...)); err != nil {
		return err
	}
	c.log.Info("values removed from field ", field, " of document ", key)
	return nil
}

// ArrayArchive unions values into the field's companion archive array.
func (c *Client) ArrayArchive(ctx context.Context, collection, key, field string, values []interface{}) error {
	if err := c.updateArray(ctx, collection, key, field+"_archive", firestore.ArrayUnion(dedupe(values)...)); err != nil {
		return err
	}
	c.log.Info("values archived for field ", field, " of document ", key)
	return nil
}

// ArrayUnarchive removes values from the field's companion archive array.
func (c *Client) ArrayUnarchive(ctx context.Context, collection, key, field string, values []interface{}) error {
	if err := c.updateArray(ctx, collection, key, field+"_archive", firestore.ArrayRemove(dedupe(values)...)); err != nil {
		return err
	}
	c.log.Info("values un-archived for field ", field, " of document ", key)
	return nil
}

// ReadDocs fetches the named documents, or streams the whole collection when
// no ids are given. Missing ids are logged and skipped.
func (c *Client) ReadDocs(ctx context.Context, collection string, docIDs []string) ([]map[string]interface{}, error) {
	var docs []map[string]interface{}
	if len(docIDs) > 0 {
		for _, id := range docIDs {
			snap, err := c.api.Collection(collection).Doc(id).Get(ctx)
			if status.Code(err) == codes.NotFound {
				c.log.Warn("key ", id, " not found in collection ", collection)
				continue
			}
			if err != nil {
				return nil, errors.Wrapf(err, "failed to read document %q from collection %q", id, collection)
			}
			docs = append(docs, snap.Data())
		}
		return docs, nil
	}
	it := c.api.Collection(collection).Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to stream collection %q", collection)
		}
		docs = append(docs, snap.Data())
	}
	return docs, nil
}

// ReadDocsWhere fetches the documents matching a single field condition,
// e.g. ("status", "==", "active").
func (c *Client) ReadDocsWhere(ctx context.Context, collection, fieldPath, op string, value interface{}) ([]map[string]interface{}, error) {
	it := c.api.Collection(collection).Where(fieldPath, op, value).Documents(ctx)
	defer it.Stop()
	var docs []map[string]interface{}
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to query collection %q on field %q", collection, fieldPath)
		}
		docs = append(docs, snap.Data())
	}
	return docs, nil
}
