package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trybenetwork/trybe/kv"
)

func newStore(t *testing.T) *kv.LevelDB {
	store, err := kv.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStateOverlay(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Put([]byte("a"), []byte("1")))

	st := New(store)

	v, err := st.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	v, err = st.Get([]byte("missing"))
	require.NoError(t, err)
	assert.Nil(t, v)

	st.Put([]byte("b"), []byte("2"))
	v, err = st.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)

	// store untouched before commit
	has, err := store.Has([]byte("b"))
	require.NoError(t, err)
	assert.False(t, has)

	st.Delete([]byte("a"))
	v, err = st.Get([]byte("a"))
	require.NoError(t, err)
	assert.Nil(t, v)
	has, err = st.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestStateCommit(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Put([]byte("a"), []byte("1")))

	st := New(store)
	st.Put([]byte("b"), []byte("2"))
	st.Delete([]byte("a"))
	assert.True(t, st.Dirty())

	require.NoError(t, st.Commit())
	assert.False(t, st.Dirty())

	has, err := store.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, has)

	v, err := store.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)
}

func TestStateDropWithoutCommit(t *testing.T) {
	store := newStore(t)

	st := New(store)
	st.Put([]byte("k"), []byte("v"))
	// scope dropped, nothing reaches the store

	has, err := store.Has([]byte("k"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestStateIterate(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Put([]byte("t/a"), []byte("1")))
	require.NoError(t, store.Put([]byte("t/c"), []byte("3")))
	require.NoError(t, store.Put([]byte("u/x"), []byte("9")))

	st := New(store)
	st.Put([]byte("t/b"), []byte("2"))
	st.Put([]byte("t/d"), []byte("4"))
	st.Delete([]byte("t/c"))
	st.Put([]byte("t/a"), []byte("overridden"))

	var keys []string
	var values []string
	err := st.Iterate([]byte("t/"), func(key, value []byte) (bool, error) {
		keys = append(keys, string(key))
		values = append(values, string(value))
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"t/a", "t/b", "t/d"}, keys)
	assert.Equal(t, []string{"overridden", "2", "4"}, values)
}

func TestStateIterateEarlyStop(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Put([]byte("t/a"), []byte("1")))
	require.NoError(t, store.Put([]byte("t/b"), []byte("2")))

	st := New(store)
	var seen int
	err := st.Iterate([]byte("t/"), func(key, value []byte) (bool, error) {
		seen++
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
}
