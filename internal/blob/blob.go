// Package blob provides opaque key-to-bytes storage for uploaded images, with
// GridFS, S3-compatible and in-memory backends behind one interface. No
// relationship is kept between a stored image and any event; associating the
// two is the caller's concern.
package blob

import "context"

// StoredImage is one stored blob plus its filename metadata.
type StoredImage struct {
	FileID   string
	Filename string
	Data     []byte
}

// Store is the blob storage contract. Put assigns a new unique key; Get
// reports a not-found error for a key that was never issued.
type Store interface {
	// Put stores data under a newly assigned identifier and returns it.
	Put(ctx context.Context, filename string, data []byte) (string, error)

	// Get returns the filename and bytes stored under fileID.
	Get(ctx context.Context, fileID string) (*StoredImage, error)
}
