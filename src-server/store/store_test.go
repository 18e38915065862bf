package store_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"eventhorizon/src-server/kv"
	"eventhorizon/src-server/model"
	"eventhorizon/src-server/store"
)

func newEvent(id, title string) model.Event {
	return model.Event{
		ID:         id,
		Title:      title,
		Date:       "2024-11-01",
		Type:       model.EventTypeMeeting,
		ThemeColor: model.DefaultThemeColor,
		Agenda:     []model.AgendaItem{},
		CreatedAt:  1730419200000,
	}
}

func with(event model.Event, mutate func(*model.Event)) model.Event {
	mutate(&event)
	return event
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := kv.OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	slot := kv.NewSQLite(db)

	s := store.New(ctx, slot)
	first := newEvent("a", "Offsite")
	first.Location = "Lisbon"
	first.Agenda = []model.AgendaItem{
		{ID: "a-1", Time: "09:00", Activity: "Coffee"},
		{ID: "a-2", Time: "10:00", Activity: "Planning", Notes: "bring laptops"},
	}
	second := newEvent("b", "Launch Party")
	second.Type = model.EventTypeParty
	second.ThemeColor = "#F97316"

	for _, event := range []model.Event{first, second} {
		if err := s.Create(ctx, event); err != nil {
			t.Fatal(err)
		}
	}

	loaded, err := store.Load(ctx, slot, store.DefaultKey)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded, s.List()) {
		t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", loaded, s.List())
	}
	if loaded[0].ID != "b" || loaded[1].ID != "a" {
		t.Error("expected most recent first", loaded[0].ID, loaded[1].ID)
	}

	// a fresh store over the same slot sees the same events
	reopened := store.New(ctx, slot)
	if !reflect.DeepEqual(reopened.List(), s.List()) {
		t.Error("reopened store differs")
	}
}

func TestCreateRejects(t *testing.T) {
	ctx := context.Background()
	slot := kv.NewMemory()
	s := store.New(ctx, slot)

	if err := s.Create(ctx, newEvent("a", "First")); err != nil {
		t.Fatal(err)
	}

	for name, event := range map[string]model.Event{
		"duplicate id": newEvent("a", "Second"),
		"empty title":  newEvent("c", "   "),
		"bad date": with(newEvent("d", "x"), func(e *model.Event) {
			e.Date = "next week"
		}),
		"bad color": with(newEvent("e", "x"), func(e *model.Event) {
			e.ThemeColor = "indigo"
		}),
		"bad type": with(newEvent("f", "x"), func(e *model.Event) {
			e.Type = "Concert"
		}),
		"duplicate agenda id": with(newEvent("g", "x"), func(e *model.Event) {
			e.Agenda = []model.AgendaItem{{ID: "1"}, {ID: "1"}}
		}),
	} {
		err := s.Create(ctx, event)
		if !errors.Is(err, model.ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}

	if s.Len() != 1 {
		t.Error("rejected creates must not change the store", s.Len())
	}
	if got, _ := s.FindByID("a"); got.Title != "First" {
		t.Error("duplicate create replaced the original", got.Title)
	}
	if slot.Writes != 1 {
		t.Error("rejected creates must not persist", slot.Writes)
	}
}

func TestCreateDefaults(t *testing.T) {
	ctx := context.Background()
	s := store.New(ctx, kv.NewMemory())

	event := newEvent("a", "Standup")
	event.ThemeColor = ""
	event.CreatedAt = 0
	event.Agenda = nil
	if err := s.Create(ctx, event); err != nil {
		t.Fatal(err)
	}
	got, ok := s.FindByID("a")
	if !ok {
		t.Fatal("event not found")
	}
	if got.ThemeColor != model.DefaultThemeColor {
		t.Error("expected default theme color", got.ThemeColor)
	}
	if got.CreatedAt == 0 {
		t.Error("expected createdAt to be stamped")
	}
	if got.Agenda == nil {
		t.Error("expected an empty agenda, not nil")
	}
}

func TestFindByIDReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := store.New(ctx, kv.NewMemory())
	event := newEvent("a", "Workshop")
	event.Agenda = []model.AgendaItem{{ID: "1", Activity: "Intro"}}
	if err := s.Create(ctx, event); err != nil {
		t.Fatal(err)
	}

	got, _ := s.FindByID("a")
	got.Agenda[0].Activity = "changed"
	again, _ := s.FindByID("a")
	if again.Agenda[0].Activity != "Intro" {
		t.Error("FindByID leaked the stored agenda")
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	slot := kv.NewMemory()
	s := store.New(ctx, slot)
	for _, id := range []string{"a", "b", "c"} {
		if err := s.Create(ctx, newEvent(id, "Event "+id)); err != nil {
			t.Fatal(err)
		}
	}
	before, _, _ := slot.Get(ctx, store.DefaultKey)
	writes := slot.Writes

	// case: absent id
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Error(err)
	}
	after, _, _ := slot.Get(ctx, store.DefaultKey)
	if string(before) != string(after) || slot.Writes != writes {
		t.Error("deleting an absent id must not touch the slot")
	}
	if s.Len() != 3 {
		t.Error("deleting an absent id changed the store", s.Len())
	}

	// case: present id
	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.FindByID("b"); ok {
		t.Error("event still present after delete")
	}
	if slot.Writes != writes+1 {
		t.Error("delete must persist once", slot.Writes-writes)
	}
	loaded, err := store.Load(ctx, slot, store.DefaultKey)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 || loaded[0].ID != "c" || loaded[1].ID != "a" {
		t.Errorf("unexpected persisted events %+v", loaded)
	}
}

func TestPersistenceFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	slot := kv.NewMemory()
	s := store.New(ctx, slot)
	slot.FailWrites = errors.New("quota exceeded")

	err := s.Create(ctx, newEvent("a", "Wedding"))
	var persistErr *store.PersistenceError
	if !errors.As(err, &persistErr) {
		t.Fatalf("expected a persistence error, got %v", err)
	}
	if _, ok := s.FindByID("a"); !ok {
		t.Error("in-memory create must survive a failed write")
	}

	slot.FailWrites = nil
	if err := s.Persist(ctx); err != nil {
		t.Fatal(err)
	}
	loaded, _ := store.Load(ctx, slot, store.DefaultKey)
	if len(loaded) != 1 {
		t.Error("explicit persist should catch the slot up", len(loaded))
	}
}

func TestLoadCorrupt(t *testing.T) {
	ctx := context.Background()
	slot := kv.NewMemory()
	if err := slot.Set(ctx, store.DefaultKey, []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	events, err := store.Load(ctx, slot, store.DefaultKey)
	if !errors.Is(err, store.ErrDecode) {
		t.Error("expected decode error", err)
	}
	if events == nil || len(events) != 0 {
		t.Error("expected an empty slice", events)
	}

	s := store.New(ctx, slot)
	if s.Len() != 0 {
		t.Error("corrupt slot should yield an empty store", s.Len())
	}
}

func TestLoadLegacyArray(t *testing.T) {
	ctx := context.Background()
	slot := kv.NewMemory()
	legacy := `[{"id":"1730419200000","title":"Q4 Summit","date":"2024-11-01","location":"","type":"Meeting","description":"","agenda":[],"themeColor":"#6366f1","createdAt":1730419200000}]`
	if err := slot.Set(ctx, "legacy", []byte(legacy)); err != nil {
		t.Fatal(err)
	}

	s := store.New(ctx, slot, store.WithKey("legacy"))
	got, ok := s.FindByID("1730419200000")
	if !ok {
		t.Fatal("legacy event not loaded")
	}
	if got.Title != "Q4 Summit" || got.Type != model.EventTypeMeeting {
		t.Errorf("unexpected event %+v", got)
	}
}

func TestLoadNormalizes(t *testing.T) {
	ctx := context.Background()
	slot := kv.NewMemory()
	persisted := `[
		{"id":"1","title":"x","date":"2024-11-01","type":"Meeting","agenda":null},
		{"id":"1","title":"second with same id","date":"2024-11-02","type":"Party"},
		{"id":"2","title":"","date":"2024-11-03"},
		{"id":"3","title":"bad color","date":"2024-11-04","themeColor":"blue"},
		{"id":"4","title":"kept","date":"2024-11-05","themeColor":"#10B981","agenda":[{"id":"a","time":"09:00","activity":"Coffee"}]}
	]`
	if err := slot.Set(ctx, store.DefaultKey, []byte(persisted)); err != nil {
		t.Fatal(err)
	}

	s := store.New(ctx, slot)
	if s.Len() != 2 {
		t.Fatalf("expected 2 events, got %+v", s.List())
	}
	first, ok := s.FindByID("1")
	if !ok {
		t.Fatal("event 1 not loaded")
	}
	if first.ThemeColor != model.DefaultThemeColor {
		t.Error("missing color should default to indigo", first.ThemeColor)
	}
	if first.Agenda == nil {
		t.Error("null agenda should load as empty")
	}
	if first.Title != "x" {
		t.Error("the first entry with a repeated id wins", first.Title)
	}

	// deleting the id removes it for good
	if err := s.Delete(ctx, "1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.FindByID("1"); ok {
		t.Error("event 1 still reachable after delete")
	}
	loaded, _ := store.Load(ctx, slot, store.DefaultKey)
	if len(loaded) != 1 || loaded[0].ID != "4" {
		t.Errorf("unexpected persisted events %+v", loaded)
	}
}

// blockingSlot parks every Set until release is closed.
type blockingSlot struct {
	*kv.Memory
	started chan struct{}
	release chan struct{}
}

func (b *blockingSlot) Set(ctx context.Context, key string, value []byte) error {
	b.started <- struct{}{}
	<-b.release
	return b.Memory.Set(ctx, key, value)
}

func TestReadsDuringWrite(t *testing.T) {
	ctx := context.Background()
	slot := &blockingSlot{
		Memory:  kv.NewMemory(),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	s := store.New(ctx, slot)

	done := make(chan error)
	go func() { done <- s.Create(ctx, newEvent("a", "Slow Write")) }()
	<-slot.started

	// the slot write is still parked here
	if _, ok := s.FindByID("a"); !ok {
		t.Error("created event must be readable while it is being persisted")
	}
	if len(s.List()) != 1 {
		t.Error("unexpected list during write", s.List())
	}

	close(slot.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestLatestSnapshotWins(t *testing.T) {
	ctx := context.Background()
	slot := &blockingSlot{
		Memory:  kv.NewMemory(),
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	s := store.New(ctx, slot)

	done := make(chan error, 2)
	go func() { done <- s.Create(ctx, newEvent("a", "First")) }()
	<-slot.started
	go func() { done <- s.Create(ctx, newEvent("b", "Second")) }()

	close(slot.release)
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	}

	loaded, err := store.Load(ctx, slot.Memory, store.DefaultKey)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 || loaded[0].ID != "b" || loaded[1].ID != "a" {
		t.Errorf("slot must hold the latest state, got %+v", loaded)
	}
}

func TestCreateThenDeleteScenario(t *testing.T) {
	ctx := context.Background()
	slot := kv.NewMemory()
	s := store.New(ctx, slot)

	event := model.Event{
		ID:     "summit",
		Title:  "Q4 Summit",
		Date:   "2024-11-01",
		Type:   model.EventTypeMeeting,
		Agenda: []model.AgendaItem{},
	}
	if err := s.Create(ctx, event); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Fatal("expected one event", s.Len())
	}
	loaded, err := store.Load(ctx, slot, store.DefaultKey)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 {
		t.Fatal("expected one persisted event", len(loaded))
	}
	if loaded[0].DisplayLocation() != "TBD" {
		t.Error("empty location should display as TBD", loaded[0].DisplayLocation())
	}
	if len(loaded[0].Agenda) != 0 {
		t.Error("expected empty agenda", loaded[0].Agenda)
	}

	if err := s.Delete(ctx, "summit"); err != nil {
		t.Fatal(err)
	}
	loaded, _ = store.Load(ctx, slot, store.DefaultKey)
	if s.Len() != 0 || len(loaded) != 0 {
		t.Error("expected store and slot to be empty", s.Len(), len(loaded))
	}
}

type countingObserver struct {
	persists int
	failures int
	count    int
}

func (o *countingObserver) ObservePersist(_ time.Duration, err error) {
	o.persists++
	if err != nil {
		o.failures++
	}
}

func (o *countingObserver) SetEventCount(n int) { o.count = n }

func TestObserver(t *testing.T) {
	ctx := context.Background()
	slot := kv.NewMemory()
	observer := new(countingObserver)
	s := store.New(ctx, slot, store.WithObserver(observer))

	_ = s.Create(ctx, newEvent("a", "One"))
	slot.FailWrites = errors.New("full")
	_ = s.Create(ctx, newEvent("b", "Two"))

	if observer.persists != 2 || observer.failures != 1 {
		t.Error("unexpected observations", observer.persists, observer.failures)
	}
	if observer.count != 2 {
		t.Error("unexpected event count", observer.count)
	}
}
