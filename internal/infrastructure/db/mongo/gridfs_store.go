package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vistoria/inspection-api/internal/core/domain"
)

const uploadsBucket = "uploads_fs"

// GridFSStore keeps uploaded file bytes in a GridFS bucket keyed by the
// upload's storage key.
type GridFSStore struct {
	bucket *gridfs.Bucket
}

func NewGridFSStore(db *mongo.Database, name string) (*GridFSStore, error) {
	b, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(name))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	return &GridFSStore{bucket: b}, nil
}

// Put streams r into the bucket and returns the number of bytes written.
// A failed write is aborted so no partial chunks remain.
func (s *GridFSStore) Put(ctx context.Context, key, fileName, contentType string, r io.Reader) (int64, error) {
	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": contentType})
	stream, err := s.bucket.OpenUploadStreamWithID(key, fileName, opts)
	if err != nil {
		return 0, fmt.Errorf("open upload stream: %w", err)
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(dl)
	}

	n, err := io.Copy(stream, r)
	if err != nil {
		_ = stream.Abort()
		return 0, fmt.Errorf("write %s: %w", key, err)
	}
	if err := stream.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", key, err)
	}
	return n, nil
}

func (s *GridFSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	stream, err := s.bucket.OpenDownloadStream(key)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, domain.ErrUploadNotFound
		}
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(dl)
	}
	return stream, nil
}

// Delete removes the object. A missing object counts as deleted.
func (s *GridFSStore) Delete(ctx context.Context, key string) error {
	if err := s.bucket.DeleteContext(ctx, key); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
