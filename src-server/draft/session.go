package draft

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"eventhorizon/src-server/model"
	"eventhorizon/src-server/suggest"
)

var ErrBusy = errors.New("a suggestion request is already in progress")

// Creator is the part of the event store a session commits into.
type Creator interface {
	Create(ctx context.Context, event model.Event) error
}

// Session is one person editing one draft. Only one suggestion request
// may be outstanding at a time.
type Session struct {
	Draft *Draft

	suggester suggest.Suggester
	busy      atomic.Bool
	now       func() time.Time
}

func NewSession(d *Draft, suggester suggest.Suggester) *Session {
	return &Session{Draft: d, suggester: suggester, now: time.Now}
}

func (s *Session) Busy() bool {
	return s.busy.Load()
}

// AutoGenerate asks for suggestions and merges them into the draft. The
// returned tagline is for display only. Errors are validation failures,
// ErrBusy and suggest.ErrMissingCredential; the draft is unchanged on error.
func (s *Session) AutoGenerate(ctx context.Context) (string, error) {
	if err := s.Draft.Ready(); err != nil {
		return "", fmt.Errorf("(*Session).AutoGenerate: %w", err)
	}
	if !s.busy.CompareAndSwap(false, true) {
		return "", fmt.Errorf("(*Session).AutoGenerate: %w", ErrBusy)
	}
	defer s.busy.Store(false)

	suggestion, err := s.suggester.GenerateSuggestions(ctx, suggest.Input{
		Title:    s.Draft.Title,
		Type:     s.Draft.Type,
		Date:     s.Draft.Date,
		Location: s.Draft.Location,
	})
	if err != nil {
		return "", fmt.Errorf("(*Session).AutoGenerate: %w", err)
	}
	s.Draft.Merge(suggestion)
	return suggestion.Tagline, nil
}

// Save commits the draft. The returned event is valid even when err is a
// store.PersistenceError, since the store keeps it in memory.
func (s *Session) Save(ctx context.Context, store Creator) (model.Event, error) {
	event, err := s.Draft.Event(s.now())
	if err != nil {
		return model.Event{}, fmt.Errorf("(*Session).Save: %w", err)
	}
	if err := store.Create(ctx, event); err != nil {
		return event, fmt.Errorf("(*Session).Save: %w", err)
	}
	return event, nil
}
