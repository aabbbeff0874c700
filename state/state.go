// Package state provides the per-operation mutation scope. Every
// boundary operation runs against its own State: reads fall through to
// the underlying store, writes stay in an overlay until Commit. Dropping
// the State without committing discards every mutation, which is how a
// failed operation unwinds completely.
package state

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/trybenetwork/trybe/kv"
)

// Reader wraps read access to keyed storage.
type Reader interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
}

// Writer wraps write access to keyed storage.
type Writer interface {
	Put(key, value []byte)
	Delete(key []byte)
}

// ReadWriter combines Reader and Writer.
type ReadWriter interface {
	Reader
	Writer
}

type change struct {
	value   []byte
	deleted bool
}

// State is an uncommitted overlay over a kv store.
type State struct {
	store   kv.GetPutter
	changes map[string]*change
}

var _ ReadWriter = (*State)(nil)

// New creates a fresh mutation scope over the store.
func New(store kv.GetPutter) *State {
	return &State{
		store:   store,
		changes: make(map[string]*change),
	}
}

// Get returns the value for the key, or nil when absent.
func (s *State) Get(key []byte) ([]byte, error) {
	if c, ok := s.changes[string(key)]; ok {
		if c.deleted {
			return nil, nil
		}
		return c.value, nil
	}
	value, err := s.store.Get(key)
	if err != nil {
		if s.store.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "state get")
	}
	return value, nil
}

// Has reports whether the key exists.
func (s *State) Has(key []byte) (bool, error) {
	if c, ok := s.changes[string(key)]; ok {
		return !c.deleted, nil
	}
	has, err := s.store.Has(key)
	if err != nil {
		return false, errors.Wrap(err, "state has")
	}
	return has, nil
}

// Put stages a write.
func (s *State) Put(key, value []byte) {
	s.changes[string(key)] = &change{value: value}
}

// Delete stages a deletion.
func (s *State) Delete(key []byte) {
	s.changes[string(key)] = &change{deleted: true}
}

// Dirty reports whether any write is staged.
func (s *State) Dirty() bool {
	return len(s.changes) > 0
}

// Commit flushes all staged changes to the store in one batch.
func (s *State) Commit() error {
	if len(s.changes) == 0 {
		return nil
	}
	batch := s.store.NewBatch()
	for key, c := range s.changes {
		if c.deleted {
			if err := batch.Delete([]byte(key)); err != nil {
				return errors.Wrap(err, "state commit")
			}
		} else if err := batch.Put([]byte(key), c.value); err != nil {
			return errors.Wrap(err, "state commit")
		}
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "state commit")
	}
	s.changes = make(map[string]*change)
	return nil
}

// Iterate walks all keys with the given prefix in key order, merging
// staged changes over the committed store. fn returns false to stop.
func (s *State) Iterate(prefix []byte, fn func(key, value []byte) (bool, error)) error {
	var staged []string
	for key, c := range s.changes {
		if strings.HasPrefix(key, string(prefix)) && !c.deleted {
			staged = append(staged, key)
		}
	}
	sort.Strings(staged)

	next := 0
	emitStagedBefore := func(bound string) (bool, error) {
		for next < len(staged) && (bound == "" || staged[next] < bound) {
			cont, err := fn([]byte(staged[next]), s.changes[staged[next]].value)
			next++
			if err != nil || !cont {
				return cont, err
			}
		}
		return true, nil
	}

	it := s.store.NewIterator(kv.PrefixRange(prefix))
	defer it.Release()
	for it.Next() {
		key := string(it.Key())
		if cont, err := emitStagedBefore(key); err != nil || !cont {
			return err
		}
		if c, ok := s.changes[key]; ok {
			if next < len(staged) && staged[next] == key {
				next++
			}
			if c.deleted {
				continue
			}
			if cont, err := fn([]byte(key), c.value); err != nil || !cont {
				return err
			}
			continue
		}
		if cont, err := fn(it.Key(), it.Value()); err != nil || !cont {
			return err
		}
	}
	if err := it.Error(); err != nil {
		return errors.Wrap(err, "state iterate")
	}
	_, err := emitStagedBefore("")
	return err
}
