package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Get when nothing is stored under a key.
var ErrNotFound = errors.New("key not found")

// Store is a flat key-value store holding one JSON document per key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open returns the backend named by kind: "sqlite" (file under dir) or
// "memory" (nothing survives a restart). A positive cacheMB puts a
// read-through cache of that size in front of it.
func Open(kind, dir string, cacheMB int) (Store, error) {
	var (
		s   *SQLiteStore
		err error
	)
	switch kind {
	case "", "sqlite":
		s, err = OpenSQLite(dir)
	case "memory":
		s, err = OpenMemory()
	default:
		return nil, errors.New("unknown storage backend " + kind)
	}
	if err != nil {
		return nil, err
	}
	if cacheMB <= 0 {
		return s, nil
	}
	return NewCached(s, cacheMB), nil
}
