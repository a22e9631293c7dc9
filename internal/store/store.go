package store

import (
	"context"
	"strings"

	apperrors "github.com/lifelog-api/lifelog/internal/errors"
)

// EventStore is the document store contract for life events. Implementations
// assign identifiers on Create, guarantee gap-free 1..N turn numbering on
// AppendTurn, and return search results in a deterministic order for a fixed
// store state.
type EventStore interface {
	// Create inserts a new event with an empty conversation log and returns
	// the assigned identifier. The caller's ID and QAndA fields are ignored.
	Create(ctx context.Context, ev *Event) (EventID, error)

	// Get returns the full event document, or a not-found error when no
	// event with that id exists.
	Get(ctx context.Context, id EventID) (*Event, error)

	// AppendTurn atomically appends one question/response pair to the
	// event's conversation log and returns the assigned turn number,
	// len(q_and_a) + 1 at the time of the append.
	AppendTurn(ctx context.Context, id EventID, question, response string) (int, error)

	// Search returns every event whose title or summary contains keyword as
	// a case-insensitive substring, or whose tags contain keyword as an
	// exact element. A blank keyword is an invalid-argument error.
	Search(ctx context.Context, keyword string) ([]Event, error)
}

// NormalizeKeyword trims a search keyword and rejects blank input, shared by
// every EventStore backend so the invalid-argument contract cannot drift.
func NormalizeKeyword(keyword string) (string, error) {
	kw := strings.TrimSpace(keyword)
	if kw == "" {
		return "", apperrors.InvalidArgument("keyword required", nil)
	}
	return kw, nil
}
