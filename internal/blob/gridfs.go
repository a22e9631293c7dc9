package blob

import (
	"bytes"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"

	apperrors "github.com/lifelog-api/lifelog/internal/errors"
)

// GridFSStore stores blobs in a MongoDB GridFS bucket, keeping images and
// events in the same database.
type GridFSStore struct {
	bucket *gridfs.Bucket
}

var _ Store = (*GridFSStore)(nil)

// NewGridFSStore opens the default GridFS bucket on db.
func NewGridFSStore(db *mongo.Database) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db)
	if err != nil {
		return nil, apperrors.StoreUnavailable("failed to open blob bucket", err)
	}
	return &GridFSStore{bucket: bucket}, nil
}

// Put uploads the bytes under a freshly assigned object id.
func (s *GridFSStore) Put(ctx context.Context, filename string, data []byte) (string, error) {
	id := primitive.NewObjectID()
	if err := s.bucket.UploadFromStreamWithID(id, filename, bytes.NewReader(data)); err != nil {
		return "", apperrors.StoreUnavailable("failed to store image", err)
	}
	return id.Hex(), nil
}

// Get downloads the blob stored under fileID. A malformed id is an
// invalid-argument error; a well-formed but unknown id is not-found.
func (s *GridFSStore) Get(ctx context.Context, fileID string) (*StoredImage, error) {
	oid, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, apperrors.InvalidArgument("invalid file id", err)
	}

	stream, err := s.bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, apperrors.NotFound("file not found", err)
		}
		return nil, apperrors.StoreUnavailable("failed to load image", err)
	}
	defer func() { _ = stream.Close() }()

	var buf bytes.Buffer
	if _, err = buf.ReadFrom(stream); err != nil {
		return nil, apperrors.StoreUnavailable("failed to load image", err)
	}
	return &StoredImage{
		FileID:   fileID,
		Filename: stream.GetFile().Name,
		Data:     buf.Bytes(),
	}, nil
}
