// Package contract is the composition root: it owns the store, runs
// every boundary operation inside its own mutation scope, and serializes
// them under one lock. An operation either commits all of its writes or
// none of them.
package contract

import (
	"sync"
	"time"

	"github.com/trybenetwork/trybe/authz"
	"github.com/trybenetwork/trybe/kv"
	"github.com/trybenetwork/trybe/ledger"
	"github.com/trybenetwork/trybe/log"
	"github.com/trybenetwork/trybe/metrics"
	"github.com/trybenetwork/trybe/params"
	"github.com/trybenetwork/trybe/presale"
	"github.com/trybenetwork/trybe/prices"
	"github.com/trybenetwork/trybe/registry"
	"github.com/trybenetwork/trybe/reverts"
	"github.com/trybenetwork/trybe/staking"
	"github.com/trybenetwork/trybe/state"
	"github.com/trybenetwork/trybe/trybe"
)

var logger = log.WithContext("pkg", "contract")

// Meters are resolved per call so switching in the Prometheus backend
// after startup takes effect.
func opCounter() metrics.CountVecMeter {
	return metrics.CounterVec("operations_total", []string{"op", "status"})
}

func opDurationMs() metrics.HistogramMeter {
	return metrics.Histogram("operation_duration_ms", []float64{1, 5, 10, 50, 100, 500})
}

// Contract wires every component over one store and serializes
// operations.
type Contract struct {
	mu    sync.Mutex
	store kv.GetPutCloser
	name  trybe.Name
	clock func() uint64

	scheduleRefunds bool
	timersMu        sync.Mutex
	timers          []*time.Timer
}

// Options configures a Contract.
type Options struct {
	// Name is the contract's own account: it owns the governance
	// parameters and receives presale deposits.
	Name trybe.Name
	// Clock returns the current unix time in seconds. Defaults to the
	// wall clock.
	Clock func() uint64
	// ScheduleRefunds arms a timer on every unstake that settles the
	// refund once matured.
	ScheduleRefunds bool
}

// New creates a contract over the store and bootstraps its governance
// parameters.
func New(store kv.GetPutCloser, opts Options) (*Contract, error) {
	if !opts.Name.Valid() {
		return nil, reverts.New(reverts.UnknownAccount, "invalid contract account name")
	}
	clock := opts.Clock
	if clock == nil {
		clock = func() uint64 { return uint64(time.Now().Unix()) }
	}
	c := &Contract{
		store:           store,
		name:            opts.Name,
		clock:           clock,
		scheduleRefunds: opts.ScheduleRefunds,
	}
	if err := c.bootstrap(); err != nil {
		return nil, err
	}
	return c, nil
}

// Name returns the contract's own account.
func (c *Contract) Name() trybe.Name {
	return c.name
}

// Close cancels pending refund timers and closes the store. Refunds
// whose timer never fired stay claimable through RefundClaim.
func (c *Contract) Close() error {
	c.timersMu.Lock()
	for _, timer := range c.timers {
		timer.Stop()
	}
	c.timers = nil
	c.timersMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Close()
}

// env is the component set bound to one mutation scope.
type env struct {
	st       *state.State
	params   *params.Params
	accounts *accountIndex
	ledger   *ledger.Ledger
	staking  *staking.Engine
	prices   *prices.Table
	presale  *presale.Engine
	registry *registry.Registry

	pendingRefunds []pendingRefund
}

type pendingRefund struct {
	owner trybe.Name
	delay uint64
}

// ScheduleRefund implements staking.Deferrer. Scheduling is recorded in
// the scope and only armed once the operation commits.
func (e *env) ScheduleRefund(owner trybe.Name, delaySeconds uint64) {
	e.pendingRefunds = append(e.pendingRefunds, pendingRefund{owner: owner, delay: delaySeconds})
}

func (c *Contract) newEnv() *env {
	st := state.New(c.store)
	p := params.New(st)
	accounts := &accountIndex{st: st}
	led := ledger.New(st, p, accounts)
	e := &env{
		st:       st,
		params:   p,
		accounts: accounts,
		ledger:   led,
		prices:   prices.New(st, p),
		registry: registry.New(st, p),
	}
	e.staking = staking.New(st, p, led, accounts, e)
	e.presale = presale.New(st, p, e.prices)
	return e
}

// run executes fn inside a fresh mutation scope under the contract
// lock, committing only on success.
func (c *Contract) run(op string, fn func(e *env) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	started := time.Now()
	e := c.newEnv()
	err := fn(e)
	if err == nil {
		err = e.st.Commit()
	}

	status := "ok"
	if err != nil {
		status = "error"
		if reverts.IsRevert(err) {
			status = "reverted"
		}
	}
	opCounter().AddWithLabel(1, map[string]string{"op": op, "status": status})
	opDurationMs().Observe(float64(time.Since(started).Milliseconds()))

	if err != nil {
		logger.WithError(err).WithField("op", op).Debug("operation rejected")
		return err
	}
	for _, pending := range e.pendingRefunds {
		c.armRefund(pending.owner, pending.delay)
	}
	return nil
}

// view executes fn inside a read-only scope under the contract lock.
func (c *Contract) view(fn func(e *env) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.newEnv())
}

// bootstrap seeds the governance parameters and registers the contract
// account itself. Re-running against an existing store is a no-op.
func (c *Contract) bootstrap() error {
	return c.run("bootstrap", func(e *env) error {
		owner, err := e.params.Owner()
		if err != nil {
			return err
		}
		if owner == c.name {
			return nil
		}
		if err := e.params.SetOwner(c.name); err != nil {
			return err
		}
		if err := e.params.Set(params.KeyUserRefundDelay, params.DefaultRefundDelay); err != nil {
			return err
		}
		if err := e.params.Set(params.KeyFounderRefundDelay, params.DefaultRefundDelay); err != nil {
			return err
		}
		return e.accounts.register(c.name, c.clock())
	})
}

// armRefund settles owner's refund after its cooldown. Settlement is
// best effort; a failed claim is logged and left for an explicit
// RefundClaim.
func (c *Contract) armRefund(owner trybe.Name, delaySeconds uint64) {
	if !c.scheduleRefunds {
		return
	}
	timer := time.AfterFunc(time.Duration(delaySeconds)*time.Second, func() {
		if err := c.RefundClaim(authz.Active(owner), owner, true); err != nil {
			logger.WithError(err).WithField("owner", owner).Warn("deferred refund not settled")
		}
	})
	c.timersMu.Lock()
	c.timers = append(c.timers, timer)
	c.timersMu.Unlock()
}
