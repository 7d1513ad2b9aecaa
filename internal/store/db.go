// Package store provides the key-value storage collaborator for the
// marketplace: a generic DB interface, a LevelDB implementation, and a
// StateDB write buffer with snapshot/rollback so that every marketplace
// operation applies all-or-nothing.
package store

import "errors"

// ErrNotFound is returned when a key is absent from the store.
var ErrNotFound = errors.New("store: not found")

// DB is the generic key-value store interface.
type DB interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	NewIterator(prefix []byte) Iterator
	NewBatch() Batch
	Close() error
}

// Iterator walks key-value pairs matching a prefix.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Batch is an atomic write buffer. Mutations are not visible until Write.
type Batch interface {
	Set(key, value []byte)
	Delete(key []byte)
	Reset()
	Write() error
}
