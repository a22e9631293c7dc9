package store

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/lifelog-api/lifelog/internal/errors"
)

// EventID is the validated identifier of a stored event. Caller-supplied
// strings cross the boundary through ParseEventID, which keeps "malformed"
// distinct from "well-formed but absent".
type EventID struct {
	oid primitive.ObjectID
}

// ParseEventID validates a caller-supplied identifier string. A string that
// is not a well-formed object id yields an invalid-argument error, never a
// not-found one.
func ParseEventID(s string) (EventID, error) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return EventID{}, apperrors.InvalidArgument("invalid event id", err)
	}
	return EventID{oid: oid}, nil
}

// NewEventID returns a freshly generated identifier.
func NewEventID() EventID {
	return EventID{oid: primitive.NewObjectID()}
}

// Hex returns the caller-visible string form of the identifier.
func (id EventID) Hex() string {
	return id.oid.Hex()
}

// ObjectID returns the store-native identifier value.
func (id EventID) ObjectID() primitive.ObjectID {
	return id.oid
}
