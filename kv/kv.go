// Package kv defines the key/value storage engine the contract tables
// are persisted in.
package kv

// Getter wraps methods for reading kvs.
type Getter interface {
	// Get returns the value for the given key, or an error checkable
	// via IsNotFound when the key is absent.
	Get(key []byte) (value []byte, err error)
	Has(key []byte) (bool, error)
	IsNotFound(error) bool

	NewIterator(r Range) Iterator
}

// Putter wraps methods for writing kvs.
type Putter interface {
	Put(key, value []byte) error
	Delete(key []byte) error

	NewBatch() Batch
}

// GetPutter wraps methods for reading and writing kvs.
type GetPutter interface {
	Getter
	Putter
}

// GetPutCloser is a GetPutter with a close method.
type GetPutCloser interface {
	GetPutter
	Close() error
}

// Batch is a set of writes applied atomically.
type Batch interface {
	Put(key, value []byte) error
	Delete(key []byte) error

	Len() int
	Write() error
}

// Range is a half-open key interval [From, To).
type Range struct {
	From []byte
	To   []byte
}

// PrefixRange returns the range covering all keys with the prefix.
func PrefixRange(prefix []byte) Range {
	to := make([]byte, len(prefix))
	copy(to, prefix)
	for i := len(to) - 1; i >= 0; i-- {
		to[i]++
		if to[i] != 0 {
			return Range{From: prefix, To: to}
		}
		to = to[:i]
	}
	return Range{From: prefix}
}

// Iterator iterates kvs in key order.
type Iterator interface {
	Next() bool
	Release()
	Error() error

	Key() []byte
	Value() []byte
}
