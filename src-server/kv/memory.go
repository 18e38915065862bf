package kv

import (
	"context"
	"sync"
)

// Memory keeps slots in a map. Nothing survives the process.
type Memory struct {
	mu    sync.Mutex
	slots map[string][]byte

	// when set, Set fails with it and leaves the slot untouched
	FailWrites error
	Writes     int
}

func NewMemory() *Memory {
	return &Memory{slots: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.slots[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.slots[key] = append([]byte(nil), value...)
	m.Writes++
	return nil
}
