// Package kv is the single persisted key-value slot the event store mirrors into.
package kv

import "context"

// Slot is a get/set byte-string store. Get reports ok=false when the key
// was never written.
type Slot interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}
