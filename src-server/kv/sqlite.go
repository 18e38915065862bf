package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventhorizon/src-server/model"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type SQLite struct {
	db bun.IDB
}

func NewSQLite(db bun.IDB) *SQLite {
	return &SQLite{db: db}
}

// OpenSQLite opens (creating if needed) the database file at path and
// makes sure the kv_slots table exists.
func OpenSQLite(ctx context.Context, path string) (*bun.DB, error) {
	rawDB, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, fmt.Errorf("OpenSQLite: %w", err)
	}
	// one writer, and ":memory:" databases are per connection
	rawDB.SetMaxOpenConns(1)

	bunDB := bun.NewDB(rawDB, sqlitedialect.New())
	if err := model.CreateSchema(ctx, bunDB); err != nil {
		bunDB.Close()
		return nil, fmt.Errorf("OpenSQLite: %w", err)
	}
	return bunDB, nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	slot := new(model.KVSlot)
	if err := s.db.NewSelect().
		Model(slot).
		Where("slot_key = ?", key).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("(*SQLite).Get: %w", err)
	}
	return slot.Value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	slot := &model.KVSlot{Key: key, Value: value}
	if err := slot.Upsert(ctx, s.db); err != nil {
		return fmt.Errorf("(*SQLite).Set: %w", err)
	}
	return nil
}
