package kv

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the key has no value.
	ErrNotFound = errors.New("key not found")
	// ErrStoreFull is returned by size-limited backends when a Put would
	// exceed the budget.
	ErrStoreFull = errors.New("store size limit exceeded")
)

// Store is an async key → string mapping. Values are whole serialized blobs:
// readers get full snapshots, writers replace the entire value. Delete on a
// missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Lister is implemented by backends that can enumerate keys by glob
// pattern.
type Lister interface {
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// Watcher is implemented by backends that can signal key changes. Watch
// returns a channel that receives the key on every Put or Delete until ctx
// is done.
type Watcher interface {
	Watch(ctx context.Context, key string) <-chan string
}
