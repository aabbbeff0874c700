package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trybenetwork/trybe/kv"
	"github.com/trybenetwork/trybe/state"
	"github.com/trybenetwork/trybe/trybe"
)

type testRecord struct {
	Value uint64
}

func newState(t *testing.T) *state.State {
	store, err := kv.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return state.New(store)
}

func TestTableRoundTrip(t *testing.T) {
	st := newState(t)
	tbl := New[testRecord]("test")

	got, err := tbl.Get(st, trybe.Name("alice"))
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, tbl.Set(st, &testRecord{Value: 42}, trybe.Name("alice")))

	got, err = tbl.Get(st, trybe.Name("alice"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint64(42), got.Value)

	has, err := tbl.Has(st, trybe.Name("alice"))
	require.NoError(t, err)
	assert.True(t, has)

	tbl.Delete(st, trybe.Name("alice"))
	has, err = tbl.Has(st, trybe.Name("alice"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestTableScopedIterate(t *testing.T) {
	st := newState(t)
	tbl := New[testRecord]("stakes")

	require.NoError(t, tbl.Set(st, &testRecord{Value: 1}, trybe.Name("pool"), trybe.Name("alice")))
	require.NoError(t, tbl.Set(st, &testRecord{Value: 2}, trybe.Name("pool"), trybe.Name("bob")))
	require.NoError(t, tbl.Set(st, &testRecord{Value: 3}, trybe.Name("other"), trybe.Name("carol")))

	var total uint64
	var count int
	err := tbl.Iterate(st, func(key []byte, record *testRecord) (bool, error) {
		total += record.Value
		count++
		return true, nil
	}, trybe.Name("pool"))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, uint64(3), total)

	// unscoped walk sees every row
	count = 0
	err = tbl.Iterate(st, func(key []byte, record *testRecord) (bool, error) {
		count++
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestTablesAreDisjoint(t *testing.T) {
	st := newState(t)
	a := New[testRecord]("a")
	b := New[testRecord]("b")

	require.NoError(t, a.Set(st, &testRecord{Value: 1}, trybe.Name("k")))

	got, err := b.Get(st, trybe.Name("k"))
	require.NoError(t, err)
	assert.Nil(t, got)
}
