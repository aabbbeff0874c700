package presale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trybenetwork/trybe/authz"
	"github.com/trybenetwork/trybe/kv"
	"github.com/trybenetwork/trybe/params"
	"github.com/trybenetwork/trybe/prices"
	"github.com/trybenetwork/trybe/reverts"
	"github.com/trybenetwork/trybe/state"
	"github.com/trybenetwork/trybe/trybe"
)

const owner = trybe.Name("trybenetwork")

func newEngine(t *testing.T) *Engine {
	store, err := kv.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	st := state.New(store)
	p := params.New(st)
	require.NoError(t, p.SetOwner(owner))

	priceTable := prices.New(st, p)
	require.NoError(t, priceTable.SetPrices(authz.Active(owner),
		[]trybe.Symbol{trybe.EOS}, []float64{1.0}, []float64{6.0}))

	engine := New(st, p, priceTable)
	require.NoError(t, engine.SetupPresale(authz.Active(owner), trybe.NewAsset(DefaultCap, trybe.TRYBE)))
	return engine
}

func eos(amount int64) trybe.Asset {
	return trybe.NewAsset(amount, trybe.EOS)
}

func TestConvert(t *testing.T) {
	// 2.00 EOS at an EOS price of 1.0 and sale price 0.01 buys
	// 200.0000 TRYBE
	assert.Equal(t, int64(200_0000), Convert(eos(200), 1.0).Amount)
	assert.Equal(t, int64(100_0000), Convert(eos(100), 1.0).Amount)
	assert.Equal(t, int64(1200_0000), Convert(eos(200), 6.0).Amount)
	// fractional results truncate toward zero
	assert.Equal(t, int64(2500), Convert(eos(5), 0.05).Amount)
}

func TestBuy(t *testing.T) {
	e := newEngine(t)

	require.NoError(t, e.Buy("alice", eos(200), 42))

	record, err := e.GetPurchase("alice")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, trybe.Name("alice"), record.Owner)
	assert.Equal(t, int64(200), record.EOSAmount.Amount)
	assert.Equal(t, int64(200_0000), record.TRYBEAmount.Amount)
	assert.Equal(t, uint64(42), record.PurchaseDate)

	stats, err := e.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(200_0000), stats.TotalSold.Amount)

	// repeat purchases accumulate
	require.NoError(t, e.Buy("alice", eos(100), 50))
	record, err = e.GetPurchase("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(300), record.EOSAmount.Amount)
	assert.Equal(t, int64(300_0000), record.TRYBEAmount.Amount)
	assert.Equal(t, uint64(50), record.PurchaseDate)
}

func TestBuyRejections(t *testing.T) {
	e := newEngine(t)

	err := e.Buy("alice", trybe.NewAsset(200, trybe.TRYBE), 0)
	assert.True(t, reverts.Is(err, reverts.WrongAsset))

	err = e.Buy("alice", eos(99), 0)
	assert.True(t, reverts.Is(err, reverts.BelowMinimum))

	require.NoError(t, e.Buy("alice", eos(100), 0))
}

func TestBuyCapExceeded(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.SetupPresale(authz.Active(owner), trybe.NewAsset(300_0000, trybe.TRYBE)))

	require.NoError(t, e.Buy("alice", eos(200), 0))

	err := e.Buy("bob", eos(200), 0)
	assert.True(t, reverts.Is(err, reverts.PresaleCapExceeded))

	// a smaller purchase that exactly fills the cap still goes through
	require.NoError(t, e.Buy("carol", eos(100), 0))
}

func TestHandleDeposit(t *testing.T) {
	e := newEngine(t)
	contract := owner

	// wrong recipient: ignored
	require.NoError(t, e.HandleDeposit(contract, Deposit{
		From: "alice", To: "someoneelse", Quantity: eos(200), Memo: DepositMemo,
	}, 0))
	// outbound from the contract: ignored
	require.NoError(t, e.HandleDeposit(contract, Deposit{
		From: contract, To: "alice", Quantity: eos(200), Memo: DepositMemo,
	}, 0))
	// wrong memo: ignored
	require.NoError(t, e.HandleDeposit(contract, Deposit{
		From: "alice", To: contract, Quantity: eos(200), Memo: "hello",
	}, 0))

	record, err := e.GetPurchase("alice")
	require.NoError(t, err)
	assert.Nil(t, record)

	// the sentinel memo opts in
	require.NoError(t, e.HandleDeposit(contract, Deposit{
		From: "alice", To: contract, Quantity: eos(200), Memo: DepositMemo,
	}, 7))

	record, err = e.GetPurchase("alice")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, int64(200_0000), record.TRYBEAmount.Amount)

	// sentinel memo with a non-EOS asset is a hard failure
	err = e.HandleDeposit(contract, Deposit{
		From: "alice", To: contract, Quantity: trybe.NewAsset(100, trybe.TRYBE), Memo: DepositMemo,
	}, 0)
	assert.True(t, reverts.Is(err, reverts.WrongAsset))
}

func TestSetupPresale(t *testing.T) {
	store, err := kv.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	st := state.New(store)
	p := params.New(st)
	require.NoError(t, p.SetOwner(owner))
	e := New(st, p, prices.New(st, p))

	err = e.SetupPresale(authz.Active("mallory"), trybe.NewAsset(DefaultCap, trybe.TRYBE))
	assert.True(t, reverts.Is(err, reverts.Unauthorized))

	require.NoError(t, e.SetupPresale(authz.Active(owner), trybe.NewAsset(DefaultCap, trybe.TRYBE)))

	stats, err := e.GetStats()
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, DefaultCap, stats.TotalAvailable.Amount)
	assert.True(t, stats.TotalSold.IsZero())

	// re-running resizes the cap and keeps the sold counter
	require.NoError(t, e.SetupPresale(authz.Active(owner), trybe.NewAsset(42, trybe.TRYBE)))
	stats, err = e.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(42), stats.TotalAvailable.Amount)
}

func TestBuyWithoutStats(t *testing.T) {
	store, err := kv.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	st := state.New(store)
	p := params.New(st)
	require.NoError(t, p.SetOwner(owner))
	priceTable := prices.New(st, p)
	require.NoError(t, priceTable.SetPrices(authz.Active(owner),
		[]trybe.Symbol{trybe.EOS}, []float64{1.0}, []float64{6.0}))
	e := New(st, p, priceTable)

	err = e.Buy("alice", eos(200), 0)
	assert.True(t, reverts.Is(err, reverts.NotFound))
}
