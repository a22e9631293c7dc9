package store

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	apperrors "github.com/lifelog-api/lifelog/internal/errors"
)

// MongoEventStore is the MongoDB-backed EventStore. One event is one
// document; the conversation log is an embedded array on that document.
type MongoEventStore struct {
	coll *mongo.Collection
}

var _ EventStore = (*MongoEventStore)(nil)

// NewMongoEventStore wraps an events collection.
func NewMongoEventStore(coll *mongo.Collection) *MongoEventStore {
	return &MongoEventStore{coll: coll}
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, apperrors.StoreUnavailable("event store unreachable", err)
	}
	if err = client.Ping(dialCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, apperrors.StoreUnavailable("event store unreachable", err)
	}
	return client, nil
}

// Create inserts the event with a server-assigned id and an empty q_and_a.
func (s *MongoEventStore) Create(ctx context.Context, ev *Event) (EventID, error) {
	id := NewEventID()
	doc := ev.Clone()
	doc.ID = id.ObjectID()
	doc.QAndA = []ConversationTurn{}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return EventID{}, apperrors.StoreUnavailable("failed to store event", err)
	}
	return id, nil
}

// Get performs a point lookup by id.
func (s *MongoEventStore) Get(ctx context.Context, id EventID) (*Event, error) {
	var ev Event
	err := s.coll.FindOne(ctx, bson.M{"_id": id.ObjectID()}).Decode(&ev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("event not found", err)
	}
	if err != nil {
		return nil, apperrors.StoreUnavailable("failed to load event", err)
	}
	return &ev, nil
}

// AppendTurn appends one conversation turn in a single document update. The
// turn number is computed server-side from the current array length inside an
// aggregation-pipeline update, so concurrent appends to the same event cannot
// collide on a turn number.
func (s *MongoEventStore) AppendTurn(ctx context.Context, id EventID, question, response string) (int, error) {
	existing := bson.M{"$ifNull": bson.A{"$q_and_a", bson.A{}}}
	turnDoc := bson.M{
		"turn":     bson.M{"$add": bson.A{bson.M{"$size": existing}, 1}},
		"question": question,
		"response": response,
	}
	update := bson.A{
		bson.M{"$set": bson.M{"q_and_a": bson.M{"$concatArrays": bson.A{existing, bson.A{turnDoc}}}}},
	}

	var updated Event
	err := s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id.ObjectID()},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, apperrors.NotFound("event not found", err)
	}
	if err != nil {
		return 0, apperrors.StoreUnavailable("failed to append conversation turn", err)
	}
	return len(updated.QAndA), nil
}

// Search matches title/summary by case-insensitive substring and tags by
// exact element membership. The asymmetry is deliberate and mirrored by every
// backend. Results are sorted by id so a fixed store state yields a fixed
// order.
func (s *MongoEventStore) Search(ctx context.Context, keyword string) ([]Event, error) {
	kw, err := NormalizeKeyword(keyword)
	if err != nil {
		return nil, err
	}
	filter := SearchFilter(kw)
	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, apperrors.StoreUnavailable("failed to search events", err)
	}
	events := []Event{}
	if err = cur.All(ctx, &events); err != nil {
		return nil, apperrors.StoreUnavailable("failed to search events", err)
	}
	return events, nil
}

// SearchFilter builds the $or query for a normalized keyword. The keyword is
// regexp-escaped first: a search for "c++" must match the literal text, not a
// pattern.
func SearchFilter(kw string) bson.M {
	pattern := regexp.QuoteMeta(kw)
	return bson.M{"$or": bson.A{
		bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
		bson.M{"summary": bson.M{"$regex": pattern, "$options": "i"}},
		bson.M{"tags": bson.M{"$in": bson.A{kw}}},
	}}
}
