package blob

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/lifelog-api/lifelog/internal/errors"
)

// MemoryStore is an in-process blob store used as the zero-config backend and
// in tests. Keys are object id hex strings, matching the GridFS backend's
// malformed-versus-absent behavior.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]StoredImage
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]StoredImage)}
}

// Put stores a copy of the bytes under a fresh id.
func (s *MemoryStore) Put(_ context.Context, filename string, data []byte) (string, error) {
	id := primitive.NewObjectID().Hex()
	img := StoredImage{
		FileID:   id,
		Filename: filename,
		Data:     append([]byte(nil), data...),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[id] = img
	return id, nil
}

// Get returns the stored filename and bytes.
func (s *MemoryStore) Get(_ context.Context, fileID string) (*StoredImage, error) {
	if _, err := primitive.ObjectIDFromHex(fileID); err != nil {
		return nil, apperrors.InvalidArgument("invalid file id", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.blobs[fileID]
	if !ok {
		return nil, apperrors.NotFound("file not found", nil)
	}
	out := img
	out.Data = append([]byte(nil), img.Data...)
	return &out, nil
}
