package kv

import (
	"context"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore keeps heavy values (article markdown bodies) on disk.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens the database at path. Pass inMemory=true in tests so
// nothing touches disk.
func NewBadgerStore(path string, inMemory bool) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Silence default logger
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return "", ErrNotFound
	} else if err != nil {
		return "", err
	}
	return value, nil
}

func (s *BadgerStore) Put(ctx context.Context, key, value string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
}

func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// RunGC discards stale value-log files. Badger returns ErrNoRewrite when
// there was nothing to collect; that is not a failure.
func (s *BadgerStore) RunGC() error {
	err := s.db.RunValueLogGC(0.7)
	if err == badger.ErrNoRewrite {
		return nil
	}
	return err
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
