// Package table maps typed records onto keyed storage, one table per
// record type. Records are RLP coded; keys are '/'-joined parts under a
// table prefix, so a leading subset of key parts forms an index scope
// that can be iterated (e.g. all stakes under one delegate).
package table

import (
	"bytes"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/trybenetwork/trybe/state"
)

// Keyer is anything usable as a key part.
type Keyer interface {
	Bytes() []byte
}

// Table is a keyed table of V records.
type Table[V any] struct {
	name   string
	prefix []byte
}

// New creates a table under the given name.
func New[V any](name string) Table[V] {
	return Table[V]{name: name, prefix: []byte(name + "/")}
}

func (t Table[V]) key(parts ...Keyer) []byte {
	var buf bytes.Buffer
	buf.Write(t.prefix)
	for i, part := range parts {
		if i > 0 {
			buf.WriteByte('/')
		}
		buf.Write(part.Bytes())
	}
	return buf.Bytes()
}

// Get returns the record at the key, or nil when absent.
func (t Table[V]) Get(r state.Reader, parts ...Keyer) (*V, error) {
	raw, err := r.Get(t.key(parts...))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	record := new(V)
	if err := rlp.DecodeBytes(raw, record); err != nil {
		return nil, errors.Wrapf(err, "decode %s record", t.name)
	}
	return record, nil
}

// Has reports whether a record exists at the key.
func (t Table[V]) Has(r state.Reader, parts ...Keyer) (bool, error) {
	return r.Has(t.key(parts...))
}

// Set stores the record at the key.
func (t Table[V]) Set(w state.Writer, record *V, parts ...Keyer) error {
	raw, err := rlp.EncodeToBytes(record)
	if err != nil {
		return errors.Wrapf(err, "encode %s record", t.name)
	}
	w.Put(t.key(parts...), raw)
	return nil
}

// Delete removes the record at the key.
func (t Table[V]) Delete(w state.Writer, parts ...Keyer) {
	w.Delete(t.key(parts...))
}

// Iterate walks all records whose key starts with the given parts, in
// key order. fn returns false to stop early.
func (t Table[V]) Iterate(st *state.State, fn func(key []byte, record *V) (bool, error), parts ...Keyer) error {
	prefix := t.prefix
	if len(parts) > 0 {
		prefix = append(t.key(parts...), '/')
	}
	return st.Iterate(prefix, func(key, value []byte) (bool, error) {
		record := new(V)
		if err := rlp.DecodeBytes(value, record); err != nil {
			return false, errors.Wrapf(err, "decode %s record", t.name)
		}
		return fn(key[len(t.prefix):], record)
	})
}
