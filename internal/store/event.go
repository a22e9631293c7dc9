// Package store defines the life-event document model and the EventStore
// contract, with a MongoDB-backed implementation and an in-memory one.
package store

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Participant is one person involved in an event.
type Participant struct {
	Name         string `bson:"name" json:"name"`
	Relationship string `bson:"relationship" json:"relationship"`
}

// ConversationTurn is one question/response pair in an event's conversation
// log. Turn numbers are 1-based, assigned by AppendTurn and never renumbered.
type ConversationTurn struct {
	Turn     int    `bson:"turn" json:"turn"`
	Question string `bson:"question" json:"question"`
	Response string `bson:"response" json:"response"`
}

// Event is a single diary entry representing one life occurrence.
// The id is assigned by the store at insert time and immutable thereafter.
type Event struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title            string             `bson:"title" json:"title"`
	DateOfEvent      string             `bson:"date_of_event" json:"date_of_event"`
	Location         string             `bson:"location" json:"location"`
	StoryType        string             `bson:"story_type" json:"story_type"`
	ImportanceRating float64            `bson:"importance_rating" json:"importance_rating"`
	Participants     []Participant      `bson:"participants" json:"participants"`
	Summary          string             `bson:"summary" json:"summary"`
	Tags             []string           `bson:"tags" json:"tags"`
	QAndA            []ConversationTurn `bson:"q_and_a" json:"q_and_a"`
}

// Clone returns a deep copy so callers can never mutate stored state through
// a returned document.
func (e *Event) Clone() *Event {
	cp := *e
	cp.Participants = append(e.Participants[:0:0], e.Participants...)
	cp.Tags = append(e.Tags[:0:0], e.Tags...)
	cp.QAndA = append(e.QAndA[:0:0], e.QAndA...)
	return &cp
}
