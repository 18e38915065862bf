// Package store holds the authoritative in-memory event list and mirrors it
// into a single persisted slot after every mutation.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"eventhorizon/src-server/kv"
	"eventhorizon/src-server/model"
)

const DefaultKey = "eventhorizon_events"

var ErrDecode = errors.New("persisted events can't be decoded")

// PersistenceError means the in-memory mutation went through but the
// persisted mirror wasn't updated.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "can't persist events: " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }

// Observer receives persistence measurements. metric.Metrics satisfies it.
type Observer interface {
	ObservePersist(latency time.Duration, err error)
	SetEventCount(n int)
}

type Store struct {
	mu     sync.RWMutex
	events []model.Event
	seq    uint64 // bumped on every mutation, guarded by mu

	// writeMu orders slot writes; written is the seq of the last snapshot
	// that reached the slot
	writeMu sync.Mutex
	written uint64

	slot     kv.Slot
	key      string
	observer Observer
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// New builds a store and loads whatever the slot holds. A missing or
// corrupt slot yields an empty store; the cause is logged, never returned.
func New(ctx context.Context, slot kv.Slot, opts ...Option) *Store {
	s := &Store{slot: slot, key: DefaultKey}
	for _, opt := range opts {
		opt(s)
	}

	events, err := Load(ctx, slot, s.key)
	if err != nil {
		slog.Warn("starting with an empty event store", "key", s.key, "error", err)
	}
	s.events = events
	slog.Debug("event store loaded", "key", s.key, "events", len(events))
	if s.observer != nil {
		s.observer.SetEventCount(len(s.events))
	}
	return s
}

// Load reads the slot at key. It always returns a usable (possibly empty)
// slice; err is non-nil when the slot couldn't be read or decoded.
func Load(ctx context.Context, slot kv.Slot, key string) ([]model.Event, error) {
	data, ok, err := slot.Get(ctx, key)
	switch {
	case err != nil:
		return []model.Event{}, fmt.Errorf("Load: %w", err)
	case !ok:
		return []model.Event{}, nil
	}

	events, err := model.DecodeEvents(data)
	if err != nil {
		return []model.Event{}, fmt.Errorf("Load: %w: %w", ErrDecode, err)
	}
	return normalize(events), nil
}

// normalize applies the Create checks to decoded events. Entries that
// fail them, and repeats of an id already seen, are dropped.
func normalize(events []model.Event) []model.Event {
	kept := make([]model.Event, 0, len(events))
	seen := make(map[string]struct{}, len(events))
	for i := range events {
		event := events[i]
		if err := event.Validate(); err != nil {
			slog.Warn("dropping persisted event", "index", i, "id", event.ID, "error", err)
			continue
		}
		if _, ok := seen[event.ID]; ok {
			slog.Warn("dropping persisted event with duplicate id", "index", i, "id", event.ID)
			continue
		}
		seen[event.ID] = struct{}{}
		kept = append(kept, event)
	}
	return kept
}

// Create validates the event and puts it at the front of the list.
// Validation failures leave the store untouched. A *PersistenceError
// means the event is stored in memory but not on disk.
func (s *Store) Create(ctx context.Context, event model.Event) error {
	event = event.Clone()
	if event.CreatedAt == 0 {
		event.CreatedAt = time.Now().UnixMilli()
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("(*Store).Create: %w", err)
	}

	s.mu.Lock()
	if s.indexOf(event.ID) != -1 {
		s.mu.Unlock()
		return fmt.Errorf("(*Store).Create: %w", &model.ValidationError{
			Field: "id",
			Msg:   fmt.Sprintf("event %q already exists", event.ID),
		})
	}
	events := make([]model.Event, 0, len(s.events)+1)
	events = append(events, event)
	s.events = append(events, s.events...)
	snap, err := s.snapshotLocked(true)
	s.mu.Unlock()
	if err != nil {
		return s.reportPersist(0, err)
	}

	return s.write(ctx, snap)
}

// Delete removes the event with id. Unknown ids are a no-op and don't
// touch the persisted slot.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx == -1 {
		s.mu.Unlock()
		return nil
	}
	events := make([]model.Event, 0, len(s.events)-1)
	events = append(events, s.events[:idx]...)
	s.events = append(events, s.events[idx+1:]...)
	snap, err := s.snapshotLocked(true)
	s.mu.Unlock()
	if err != nil {
		return s.reportPersist(0, err)
	}

	return s.write(ctx, snap)
}

// Persist writes the full collection to the slot.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.RLock()
	snap, err := s.snapshotLocked(false)
	s.mu.RUnlock()
	if err != nil {
		return s.reportPersist(0, err)
	}
	return s.write(ctx, snap)
}

func (s *Store) FindByID(id string) (model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx != -1 {
		return s.events[idx].Clone(), true
	}
	return model.Event{}, false
}

// List returns a copy of all events, most recent first.
func (s *Store) List() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]model.Event, len(s.events))
	for i, event := range s.events {
		events[i] = event.Clone()
	}
	return events
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func (s *Store) indexOf(id string) int {
	for i := range s.events {
		if s.events[i].ID == id {
			return i
		}
	}
	return -1
}

type snapshot struct {
	seq   uint64
	count int
	data  []byte
}

// snapshotLocked encodes the current collection. The caller holds s.mu,
// for writing when bump is set.
func (s *Store) snapshotLocked(bump bool) (snapshot, error) {
	if bump {
		s.seq++
	}
	data, err := model.EncodeEvents(s.events)
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{seq: s.seq, count: len(s.events), data: data}, nil
}

// write stores snap unless a newer snapshot already reached the slot.
// In-memory reads aren't blocked while the slot is being written.
func (s *Store) write(ctx context.Context, snap snapshot) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if snap.seq < s.written {
		return nil
	}
	start := time.Now()
	err := s.slot.Set(ctx, s.key, snap.data)
	if err == nil {
		s.written = snap.seq
	}
	if s.observer != nil {
		s.observer.SetEventCount(snap.count)
	}
	return s.reportPersist(time.Since(start), err)
}

func (s *Store) reportPersist(latency time.Duration, err error) error {
	if s.observer != nil {
		s.observer.ObservePersist(latency, err)
	}
	if err != nil {
		slog.Warn("can't persist events, keeping in-memory state", "key", s.key, "error", err)
		return &PersistenceError{Err: err}
	}
	return nil
}
