package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/lifelog-api/lifelog/internal/errors"
)

// MemoryEventStore is an in-process EventStore. It backs the server when no
// Mongo URI is configured and stands in for MongoDB in tests. Identifiers are
// object ids here too, so the parse-at-the-boundary behavior is identical
// across backends.
type MemoryEventStore struct {
	mu     sync.RWMutex
	events map[primitive.ObjectID]*Event
}

var _ EventStore = (*MemoryEventStore)(nil)

// NewMemoryEventStore returns an empty in-memory store.
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{events: make(map[primitive.ObjectID]*Event)}
}

// Create inserts the event with a fresh id and an empty conversation log.
func (s *MemoryEventStore) Create(_ context.Context, ev *Event) (EventID, error) {
	id := NewEventID()
	doc := ev.Clone()
	doc.ID = id.ObjectID()
	doc.QAndA = []ConversationTurn{}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[doc.ID] = doc
	return id, nil
}

// Get returns a copy of the stored document.
func (s *MemoryEventStore) Get(_ context.Context, id EventID) (*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[id.ObjectID()]
	if !ok {
		return nil, apperrors.NotFound("event not found", nil)
	}
	return ev.Clone(), nil
}

// AppendTurn appends under the store lock, so the turn number is computed and
// written in one critical section.
func (s *MemoryEventStore) AppendTurn(_ context.Context, id EventID, question, response string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id.ObjectID()]
	if !ok {
		return 0, apperrors.NotFound("event not found", nil)
	}
	turn := len(ev.QAndA) + 1
	ev.QAndA = append(ev.QAndA, ConversationTurn{Turn: turn, Question: question, Response: response})
	return turn, nil
}

// Search mirrors the Mongo backend's contract: case-insensitive substring on
// title/summary, exact element match on tags, results ordered by id.
func (s *MemoryEventStore) Search(_ context.Context, keyword string) ([]Event, error) {
	kw, err := NormalizeKeyword(keyword)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(kw)

	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := []Event{}
	for _, ev := range s.events {
		if eventMatches(ev, needle, kw) {
			matches = append(matches, *ev.Clone())
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ID.Hex() < matches[j].ID.Hex()
	})
	return matches, nil
}

func eventMatches(ev *Event, needle, exact string) bool {
	if strings.Contains(strings.ToLower(ev.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(ev.Summary), needle) {
		return true
	}
	for _, tag := range ev.Tags {
		if tag == exact {
			return true
		}
	}
	return false
}
