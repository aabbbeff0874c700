// Package prices is the oracle-fed price table: one row per symbol
// carrying its EOS and USD quotes. The presale reads the EOS quote to
// convert deposits.
package prices

import (
	"io"
	"math"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/trybenetwork/trybe/authz"
	"github.com/trybenetwork/trybe/log"
	"github.com/trybenetwork/trybe/params"
	"github.com/trybenetwork/trybe/reverts"
	"github.com/trybenetwork/trybe/state"
	"github.com/trybenetwork/trybe/state/table"
	"github.com/trybenetwork/trybe/trybe"
)

var (
	logger = log.WithContext("pkg", "prices")

	rows = table.New[Record]("prices")
)

// Record is the quoted price of one symbol.
type Record struct {
	Symbol   trybe.Symbol
	EOSPrice float64
	USDPrice float64
}

// storedRecord is the wire form; the codec has no float support so the
// quotes travel as IEEE 754 bit patterns.
type storedRecord struct {
	Code      string
	Precision uint8
	EOSBits   uint64
	USDBits   uint64
}

// EncodeRLP implements rlp.Encoder.
func (r *Record) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &storedRecord{
		Code:      r.Symbol.Code,
		Precision: r.Symbol.Precision,
		EOSBits:   math.Float64bits(r.EOSPrice),
		USDBits:   math.Float64bits(r.USDPrice),
	})
}

// DecodeRLP implements rlp.Decoder.
func (r *Record) DecodeRLP(s *rlp.Stream) error {
	var stored storedRecord
	if err := s.Decode(&stored); err != nil {
		return err
	}
	*r = Record{
		Symbol:   trybe.Symbol{Code: stored.Code, Precision: stored.Precision},
		EOSPrice: math.Float64frombits(stored.EOSBits),
		USDPrice: math.Float64frombits(stored.USDBits),
	}
	return nil
}

// Table binds the price rows to a mutation scope.
type Table struct {
	st     *state.State
	params *params.Params
}

// New creates an instance bound to st.
func New(st *state.State, p *params.Params) *Table {
	return &Table{st: st, params: p}
}

// SetPrices upserts quotes for a batch of symbols. The three slices are
// parallel; both length checks run before any row is touched. Only the
// contract owner may call it.
func (t *Table) SetPrices(caller authz.Caller, symbols []trybe.Symbol, eosPrices, usdPrices []float64) error {
	owner, err := t.params.Owner()
	if err != nil {
		return err
	}
	if err := caller.RequireAuth(owner); err != nil {
		return err
	}
	if len(symbols) != len(eosPrices) {
		return reverts.New(reverts.LengthMismatch, "tokenname and eosprice vectors have different size")
	}
	if len(symbols) != len(usdPrices) {
		return reverts.New(reverts.LengthMismatch, "tokenname and usdprice vectors have different size")
	}

	for i, symbol := range symbols {
		record := Record{
			Symbol:   symbol,
			EOSPrice: eosPrices[i],
			USDPrice: usdPrices[i],
		}
		if err := rows.Set(t.st, &record, symbol); err != nil {
			return err
		}
	}
	logger.WithField("rows", len(symbols)).Info("prices updated")
	return nil
}

// Get returns the quote row for symbol, nil when never quoted.
func (t *Table) Get(symbol trybe.Symbol) (*Record, error) {
	return rows.Get(t.st, symbol)
}

// List returns every quote row in symbol order.
func (t *Table) List() ([]*Record, error) {
	var out []*Record
	err := rows.Iterate(t.st, func(_ []byte, record *Record) (bool, error) {
		out = append(out, record)
		return true, nil
	})
	return out, err
}
