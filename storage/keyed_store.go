package storage

import "context"

// Schema binds a typed record to a table layout.
type Schema[T any] struct {
	Table  TableSpec
	Encode func(T) Row
	Decode func(Row) T
}

// KeyedStore upserts and looks up typed records by key through a Fallback.
type KeyedStore[T any] struct {
	schema Schema[T]
	tables *Fallback
}

func NewKeyedStore[T any](schema Schema[T], tables *Fallback) *KeyedStore[T] {
	return &KeyedStore[T]{schema: schema, tables: tables}
}

func (s *KeyedStore[T]) Spec() TableSpec { return s.schema.Table }

// Upsert writes rec under key. The key column always carries key, whatever the
// encoded record says.
func (s *KeyedStore[T]) Upsert(ctx context.Context, key string, rec T) Result {
	if key == "" {
		return Result{OK: false, Message: ErrEmptyKey.Error()}
	}
	row := s.schema.Encode(rec)
	row[s.schema.Table.KeyColumn] = key
	return s.tables.Upsert(ctx, s.schema.Table, key, row)
}

func (s *KeyedStore[T]) Lookup(ctx context.Context, key string) (T, bool) {
	var zero T
	row, ok := s.tables.Lookup(ctx, s.schema.Table, key)
	if !ok {
		return zero, false
	}
	return s.schema.Decode(row), true
}

func (s *KeyedStore[T]) Append(ctx context.Context, rec T) Result {
	return s.tables.Append(ctx, s.schema.Table, s.schema.Encode(rec))
}
