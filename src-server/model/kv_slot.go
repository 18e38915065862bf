package model

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// KVSlot is one persisted key-value slot.
type KVSlot struct {
	bun.BaseModel `bun:"table:kv_slots"`

	Key       string `bun:"slot_key,pk"`  // required
	Value     []byte `bun:"value,notnull"` // required
	UpdatedAt int64  `bun:"updated_at,notnull"`
}

func (s *KVSlot) Upsert(ctx context.Context, db bun.IDB) error {
	if s.Key == "" {
		return fmt.Errorf("(*KVSlot).Upsert: key is blank")
	}
	if s.Value == nil {
		s.Value = []byte{}
	}
	s.UpdatedAt = time.Now().UTC().UnixMilli()

	if _, err := db.NewInsert().
		Model(s).
		On("CONFLICT (slot_key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("(*KVSlot).Upsert: %w", err)
	}
	return nil
}
