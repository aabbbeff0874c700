package staking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trybenetwork/trybe/authz"
	"github.com/trybenetwork/trybe/kv"
	"github.com/trybenetwork/trybe/ledger"
	"github.com/trybenetwork/trybe/params"
	"github.com/trybenetwork/trybe/reverts"
	"github.com/trybenetwork/trybe/state"
	"github.com/trybenetwork/trybe/trybe"
)

const owner = trybe.Name("trybenetwork")

type accountSet map[trybe.Name]bool

func (a accountSet) Exists(name trybe.Name) (bool, error) {
	return a[name], nil
}

type recordingDeferrer struct {
	owners []trybe.Name
	delays []uint64
}

func (d *recordingDeferrer) ScheduleRefund(owner trybe.Name, delaySeconds uint64) {
	d.owners = append(d.owners, owner)
	d.delays = append(d.delays, delaySeconds)
}

type fixture struct {
	engine   *Engine
	ledger   *ledger.Ledger
	params   *params.Params
	deferrer *recordingDeferrer
}

func newFixture(t *testing.T, accounts ...trybe.Name) *fixture {
	store, err := kv.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	st := state.New(store)
	p := params.New(st)
	require.NoError(t, p.SetOwner(owner))

	set := accountSet{owner: true}
	for _, name := range accounts {
		set[name] = true
	}

	led := ledger.New(st, p, set)
	maxSupply := trybe.NewAsset(trybe.MaxTRYBESupply, trybe.TRYBE)
	require.NoError(t, led.CreateSymbol(authz.Active(owner), owner, maxSupply))

	deferrer := &recordingDeferrer{}
	return &fixture{
		engine:   New(st, p, led, set, deferrer),
		ledger:   led,
		params:   p,
		deferrer: deferrer,
	}
}

func (f *fixture) fund(t *testing.T, name trybe.Name, amount int64) {
	require.NoError(t, f.ledger.Issue(authz.Active(owner), name, trybe.NewAsset(amount, trybe.TRYBE), ""))
}

func trybeAsset(amount int64) trybe.Asset {
	return trybe.NewAsset(amount, trybe.TRYBE)
}

func TestStakeSelf(t *testing.T) {
	f := newFixture(t, "alice")
	f.fund(t, "alice", 1000_0000)

	require.NoError(t, f.engine.Stake(authz.Active("alice"), "alice", "alice", trybeAsset(200_0000), false, 10))

	staked, err := f.engine.GetStaked("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(200_0000), staked.Amount)

	aggregate, err := f.engine.GetAggregate("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(200_0000), aggregate.Amount)

	balance, err := f.ledger.GetBalance("alice", trybe.TRYBE)
	require.NoError(t, err)
	assert.Equal(t, int64(800_0000), balance.Amount)

	// a second stake accumulates on the same row
	require.NoError(t, f.engine.Stake(authz.Active("alice"), "alice", "alice", trybeAsset(100_0000), false, 20))
	staked, err = f.engine.GetStaked("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(300_0000), staked.Amount)
}

func TestStakeToDelegate(t *testing.T) {
	f := newFixture(t, "alice", "pool")
	f.fund(t, "alice", 1000)

	// attributed to the staker: scoped under pool, owned by alice
	require.NoError(t, f.engine.Stake(authz.Active("alice"), "alice", "pool", trybeAsset(400), false, 10))

	record, err := f.engine.GetStake("pool", "alice")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, trybe.Name("alice"), record.Owner)
	assert.Equal(t, trybe.Name("pool"), record.Delegate)
	assert.Equal(t, int64(400), record.Amount.Amount)

	aggregate, err := f.engine.GetAggregate("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(400), aggregate.Amount)

	// attributed to the delegate: pool becomes the beneficiary
	require.NoError(t, f.engine.Stake(authz.Active("alice"), "alice", "pool", trybeAsset(100), true, 20))

	record, err = f.engine.GetStake("pool", "pool")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, trybe.Name("pool"), record.Owner)

	aggregate, err = f.engine.GetAggregate("pool")
	require.NoError(t, err)
	assert.Equal(t, int64(100), aggregate.Amount)
}

func TestStakeRejections(t *testing.T) {
	f := newFixture(t, "alice")
	f.fund(t, "alice", 1000)

	err := f.engine.Stake(authz.Active("bob"), "alice", "alice", trybeAsset(100), false, 0)
	assert.True(t, reverts.Is(err, reverts.Unauthorized))

	err = f.engine.Stake(authz.Active("alice"), "alice", "ghost", trybeAsset(100), false, 0)
	assert.True(t, reverts.Is(err, reverts.UnknownAccount))

	err = f.engine.Stake(authz.Active("alice"), "alice", "alice", trybe.NewAsset(100, trybe.EOS), false, 0)
	assert.True(t, reverts.Is(err, reverts.InvalidQuantity))

	err = f.engine.Stake(authz.Active("alice"), "alice", "alice", trybeAsset(-1), false, 0)
	assert.True(t, reverts.Is(err, reverts.InvalidAmount))

	err = f.engine.Stake(authz.Active("alice"), "alice", "alice", trybeAsset(2000), false, 0)
	assert.True(t, reverts.Is(err, reverts.InsufficientBalance))
}

func TestUnstake(t *testing.T) {
	f := newFixture(t, "alice")
	f.fund(t, "alice", 1000)
	require.NoError(t, f.engine.Stake(authz.Active("alice"), "alice", "alice", trybeAsset(200), false, 10))

	require.NoError(t, f.engine.Unstake(authz.Active("alice"), "alice", "alice", trybeAsset(50), 100))

	staked, err := f.engine.GetStaked("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(150), staked.Amount)

	aggregate, err := f.engine.GetAggregate("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(150), aggregate.Amount)

	refund, err := f.engine.GetRefund("alice")
	require.NoError(t, err)
	require.NotNil(t, refund)
	assert.Equal(t, uint64(100), refund.RequestTime)
	assert.Equal(t, int64(50), refund.Amount.Amount)

	require.Equal(t, []trybe.Name{"alice"}, f.deferrer.owners)
	assert.Equal(t, []uint64{params.DefaultRefundDelay}, f.deferrer.delays)
}

func TestUnstakeRejections(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	f.fund(t, "alice", 1000)

	err := f.engine.Unstake(authz.Active("alice"), "alice", "alice", trybeAsset(10), 0)
	assert.True(t, reverts.Is(err, reverts.NoStake))

	require.NoError(t, f.engine.Stake(authz.Active("alice"), "alice", "alice", trybeAsset(100), false, 0))

	// the remaining stake must stay strictly positive
	err = f.engine.Unstake(authz.Active("alice"), "alice", "alice", trybeAsset(100), 0)
	assert.True(t, reverts.Is(err, reverts.InsufficientStake))

	err = f.engine.Unstake(authz.Active("alice"), "alice", "alice", trybeAsset(200), 0)
	assert.True(t, reverts.Is(err, reverts.InsufficientStake))

	require.NoError(t, f.engine.Unstake(authz.Active("alice"), "alice", "alice", trybeAsset(10), 0))
	err = f.engine.Unstake(authz.Active("alice"), "alice", "alice", trybeAsset(10), 0)
	assert.True(t, reverts.Is(err, reverts.RefundPending))
}

func TestRefundClaim(t *testing.T) {
	f := newFixture(t, "alice")
	f.fund(t, "alice", 1000)
	require.NoError(t, f.engine.Stake(authz.Active("alice"), "alice", "alice", trybeAsset(200), false, 0))
	require.NoError(t, f.engine.Unstake(authz.Active("alice"), "alice", "alice", trybeAsset(50), 1000))

	err := f.engine.RefundClaim(authz.Active("alice"), "alice", true, 1000)
	assert.True(t, reverts.Is(err, reverts.RefundNotMatured))

	err = f.engine.RefundClaim(authz.Active("alice"), "alice", true, 1059)
	assert.True(t, reverts.Is(err, reverts.RefundNotMatured))

	// maturity boundary: exactly request time + delay succeeds
	require.NoError(t, f.engine.RefundClaim(authz.Active("alice"), "alice", true, 1060))

	balance, err := f.ledger.GetBalance("alice", trybe.TRYBE)
	require.NoError(t, err)
	assert.Equal(t, int64(850), balance.Amount)

	refund, err := f.engine.GetRefund("alice")
	require.NoError(t, err)
	assert.Nil(t, refund)

	err = f.engine.RefundClaim(authz.Active("alice"), "alice", true, 2000)
	assert.True(t, reverts.Is(err, reverts.NoRefund))
}

func TestFounderDelay(t *testing.T) {
	f := newFixture(t, "alice")
	require.NoError(t, f.params.Set(params.KeyFounderRefundDelay, 120))
	f.fund(t, "alice", 1000)

	require.NoError(t, f.engine.RegisterFounder(authz.Founders(owner), "alice", 0))

	founder, err := f.engine.IsFounder("alice")
	require.NoError(t, err)
	assert.True(t, founder)

	require.NoError(t, f.engine.Stake(authz.Active("alice"), "alice", "alice", trybeAsset(200), false, 0))
	require.NoError(t, f.engine.Unstake(authz.Active("alice"), "alice", "alice", trybeAsset(50), 1000))

	assert.Equal(t, []uint64{120}, f.deferrer.delays)

	err = f.engine.RefundClaim(authz.Active("alice"), "alice", true, 1060)
	assert.True(t, reverts.Is(err, reverts.RefundNotMatured))

	require.NoError(t, f.engine.RefundClaim(authz.Active("alice"), "alice", true, 1120))
}

func TestRegisterFounderRejections(t *testing.T) {
	f := newFixture(t, "alice")

	// active tier of the owner is not enough
	err := f.engine.RegisterFounder(authz.Active(owner), "alice", 0)
	assert.True(t, reverts.Is(err, reverts.Unauthorized))

	err = f.engine.RegisterFounder(authz.Founders("alice"), "alice", 0)
	assert.True(t, reverts.Is(err, reverts.Unauthorized))

	err = f.engine.RegisterFounder(authz.Founders(owner), "ghost", 0)
	assert.True(t, reverts.Is(err, reverts.UnknownAccount))

	require.NoError(t, f.engine.RegisterFounder(authz.Founders(owner), "alice", 0))
	err = f.engine.RegisterFounder(authz.Founders(owner), "alice", 0)
	assert.True(t, reverts.Is(err, reverts.AlreadyFounder))
}

func TestStakeAllThenRefundConservation(t *testing.T) {
	f := newFixture(t, "alice")
	f.fund(t, "alice", 500)

	require.NoError(t, f.engine.Stake(authz.Active("alice"), "alice", "alice", trybeAsset(500), false, 0))

	// the whole balance moved into stake, the row is gone
	has, err := f.ledger.HasBalanceRow("alice", trybe.TRYBE)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, f.engine.Unstake(authz.Active("alice"), "alice", "alice", trybeAsset(100), 0))
	require.NoError(t, f.engine.RefundClaim(authz.Active("alice"), "alice", true, 60))

	staked, err := f.engine.GetStaked("alice")
	require.NoError(t, err)
	balance, err := f.ledger.GetBalance("alice", trybe.TRYBE)
	require.NoError(t, err)
	assert.Equal(t, int64(500), staked.Amount+balance.Amount)
}
