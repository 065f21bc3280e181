package db

import "errors"

// ErrNotFound is returned by Reader.Get for a missing key.
var ErrNotFound = errors.New("kv-store: key not found")

// KVStore is the byte-oriented record storage the ledger is built on.
// Every instruction reads through the store and writes through a Batch.
type KVStore interface {
	Reader
	Writer
	Delete(key []byte) error
	NewBatch() Batch
	NewIterator(start, end []byte) (Iterator, error)
	Close() error
}

type Reader interface {
	Get(key []byte) ([]byte, error)
}

type Writer interface {
	Put(key []byte, value []byte) error
}

// Batch collects writes and deletes that are applied atomically on Commit.
// A batch that is closed without a commit leaves the store untouched.
type Batch interface {
	Writer
	Delete(key []byte) error
	Commit() error
	Close() error
}

// Iterator provides sequential access over a range of key-value pairs.
// Iterators must be closed after use.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() ([]byte, error)
	Valid() bool
	Close() error
}
