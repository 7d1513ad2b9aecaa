package store

import (
	"errors"
	"fmt"
)

type stateSnapshot struct {
	dirty   map[string][]byte
	deleted map[string]bool
}

// StateDB layers an in-memory write buffer with snapshot/rollback over a DB.
// An operation takes a snapshot, performs its reads and writes, and either
// reverts (leaving persisted state untouched) or commits the buffer in one
// atomic batch. Reads see buffered writes before persisted values.
//
// StateDB is not safe for concurrent use; the owner serializes access.
type StateDB struct {
	db        DB
	dirty     map[string][]byte
	deleted   map[string]bool
	snapshots []stateSnapshot
}

// NewStateDB creates a StateDB backed by db.
func NewStateDB(db DB) *StateDB {
	return &StateDB{
		db:      db,
		dirty:   make(map[string][]byte),
		deleted: make(map[string]bool),
	}
}

// Get returns the buffered or persisted value for key.
func (s *StateDB) Get(key string) ([]byte, error) {
	if s.deleted[key] {
		return nil, ErrNotFound
	}
	if v, ok := s.dirty[key]; ok {
		return v, nil
	}
	return s.db.Get([]byte(key))
}

// Has reports whether key exists, distinguishing absence from storage faults.
func (s *StateDB) Has(key string) (bool, error) {
	_, err := s.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Set buffers a write for key.
func (s *StateDB) Set(key string, val []byte) {
	delete(s.deleted, key)
	cp := make([]byte, len(val))
	copy(cp, val)
	s.dirty[key] = cp
}

// Delete buffers a delete for key.
func (s *StateDB) Delete(key string) {
	delete(s.dirty, key)
	s.deleted[key] = true
}

// Iterate walks every key under prefix, merging buffered writes over
// persisted entries, and calls fn for each pair. Iteration stops when fn
// returns false.
func (s *StateDB) Iterate(prefix string, fn func(key string, val []byte) bool) error {
	seen := make(map[string]bool)
	for k, v := range s.dirty {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			seen[k] = true
			if !fn(k, v) {
				return nil
			}
		}
	}
	it := s.db.NewIterator([]byte(prefix))
	defer it.Release()
	for it.Next() {
		k := string(it.Key())
		if seen[k] || s.deleted[k] {
			continue
		}
		v := make([]byte, len(it.Value()))
		copy(v, it.Value())
		if !fn(k, v) {
			return nil
		}
	}
	return it.Error()
}

// Snapshot saves the current write buffer and returns a snapshot ID.
func (s *StateDB) Snapshot() int {
	snap := stateSnapshot{
		dirty:   make(map[string][]byte, len(s.dirty)),
		deleted: make(map[string]bool, len(s.deleted)),
	}
	for k, v := range s.dirty {
		cp := make([]byte, len(v))
		copy(cp, v)
		snap.dirty[k] = cp
	}
	for k, v := range s.deleted {
		snap.deleted[k] = v
	}
	s.snapshots = append(s.snapshots, snap)
	return len(s.snapshots) - 1
}

// RevertToSnapshot restores the write buffer to a previously saved snapshot.
// The snapshot maps are deep-copied so that subsequent writes cannot corrupt
// them.
func (s *StateDB) RevertToSnapshot(id int) error {
	if id < 0 || id >= len(s.snapshots) {
		return fmt.Errorf("invalid snapshot id %d", id)
	}
	snap := s.snapshots[id]

	dirty := make(map[string][]byte, len(snap.dirty))
	for k, v := range snap.dirty {
		cp := make([]byte, len(v))
		copy(cp, v)
		dirty[k] = cp
	}
	deleted := make(map[string]bool, len(snap.deleted))
	for k, v := range snap.deleted {
		deleted[k] = v
	}

	s.dirty = dirty
	s.deleted = deleted
	s.snapshots = s.snapshots[:id]
	return nil
}

// Commit atomically flushes the write buffer to the underlying DB via a
// write batch and then clears it.
func (s *StateDB) Commit() error {
	batch := s.db.NewBatch()
	for k, v := range s.dirty {
		batch.Set([]byte(k), v)
	}
	for k := range s.deleted {
		batch.Delete([]byte(k))
	}
	if err := batch.Write(); err != nil {
		return err
	}
	s.dirty = make(map[string][]byte)
	s.deleted = make(map[string]bool)
	s.snapshots = nil
	return nil
}
