package trybe

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

const (
	// SymbolMaxLength is the longest symbol code the host permits.
	SymbolMaxLength = 7
	// MaxPrecision bounds symbol decimal places.
	MaxPrecision = 12
	// maxAmount keeps asset math clear of int64 overflow.
	maxAmount = int64(1) << 62
)

var (
	// TRYBE is the native token symbol, 4 decimal places.
	TRYBE = Symbol{Code: "TRYBE", Precision: 4}
	// EOS is the presale payment asset symbol, 2 decimal places.
	EOS = Symbol{Code: "EOS", Precision: 2}
)

// MaxTRYBESupply is the hard supply cap of the native token in subunits
// (10,000,000,000.0000 TRYBE).
const MaxTRYBESupply = int64(10_000_000_000_0000)

// Symbol is a token identifier with a fixed decimal precision.
type Symbol struct {
	Code      string
	Precision uint8
}

// String returns the symbol in "precision,CODE" form.
func (s Symbol) String() string {
	return fmt.Sprintf("%d,%s", s.Precision, s.Code)
}

// Bytes returns the code bytes, used for table keys. Precision is not
// part of the key: at most one precision per code may exist.
func (s Symbol) Bytes() []byte {
	return []byte(s.Code)
}

// Valid reports whether the symbol code and precision are well formed.
func (s Symbol) Valid() bool {
	if len(s.Code) == 0 || len(s.Code) > SymbolMaxLength {
		return false
	}
	if s.Precision > MaxPrecision {
		return false
	}
	for i := 0; i < len(s.Code); i++ {
		if s.Code[i] < 'A' || s.Code[i] > 'Z' {
			return false
		}
	}
	return true
}

// Equal reports whether both code and precision match.
func (s Symbol) Equal(o Symbol) bool {
	return s.Code == o.Code && s.Precision == o.Precision
}

// Unit returns one whole token in subunits, e.g. 10000 for precision 4.
func (s Symbol) Unit() int64 {
	unit := int64(1)
	for i := uint8(0); i < s.Precision; i++ {
		unit *= 10
	}
	return unit
}

// ParseSymbol parses "precision,CODE" form; a bare code parses with
// precision 0.
func ParseSymbol(s string) (Symbol, error) {
	code := strings.TrimSpace(s)
	precision := uint64(0)
	if i := strings.IndexByte(code, ','); i >= 0 {
		var err error
		if precision, err = strconv.ParseUint(code[:i], 10, 8); err != nil {
			return Symbol{}, errors.Wrapf(err, "invalid symbol %q", s)
		}
		code = code[i+1:]
	}
	symbol := Symbol{Code: code, Precision: uint8(precision)}
	if !symbol.Valid() {
		return Symbol{}, errors.Errorf("invalid symbol %q", s)
	}
	return symbol, nil
}

// Asset is a fixed-point integer quantity of a symbol. Amount counts
// subunits: 1.5000 TRYBE has Amount 15000.
type Asset struct {
	Amount int64
	Symbol Symbol
}

// NewAsset builds an asset from a subunit amount.
func NewAsset(amount int64, symbol Symbol) Asset {
	return Asset{Amount: amount, Symbol: symbol}
}

// Valid reports whether the symbol is well formed and the amount within
// the representable range.
func (a Asset) Valid() bool {
	if !a.Symbol.Valid() {
		return false
	}
	return a.Amount > -maxAmount && a.Amount < maxAmount
}

// IsZero reports a zero amount.
func (a Asset) IsZero() bool {
	return a.Amount == 0
}

// Add returns a + b. Symbols must match; callers check before calling.
func (a Asset) Add(b Asset) Asset {
	return Asset{Amount: a.Amount + b.Amount, Symbol: a.Symbol}
}

// Sub returns a - b. Symbols must match; callers check before calling.
func (a Asset) Sub(b Asset) Asset {
	return Asset{Amount: a.Amount - b.Amount, Symbol: a.Symbol}
}

// Neg returns the negated asset.
func (a Asset) Neg() Asset {
	return Asset{Amount: -a.Amount, Symbol: a.Symbol}
}

// String formats the asset as "1000.0000 TRYBE".
func (a Asset) String() string {
	amount := a.Amount
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	unit := a.Symbol.Unit()
	if a.Symbol.Precision == 0 {
		return fmt.Sprintf("%s%d %s", sign, amount, a.Symbol.Code)
	}
	return fmt.Sprintf("%s%d.%0*d %s", sign, amount/unit, a.Symbol.Precision, amount%unit, a.Symbol.Code)
}

// ParseAsset parses "1000.0000 TRYBE" form. The number of fractional
// digits determines the precision.
func ParseAsset(s string) (Asset, error) {
	parts := strings.Split(strings.TrimSpace(s), " ")
	if len(parts) != 2 {
		return Asset{}, errors.Errorf("invalid asset %q", s)
	}
	numeric, code := parts[0], parts[1]

	negative := strings.HasPrefix(numeric, "-")
	numeric = strings.TrimPrefix(numeric, "-")

	whole, frac := numeric, ""
	if i := strings.IndexByte(numeric, '.'); i >= 0 {
		whole, frac = numeric[:i], numeric[i+1:]
	}
	if whole == "" || len(frac) > MaxPrecision {
		return Asset{}, errors.Errorf("invalid asset %q", s)
	}

	amount, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return Asset{}, errors.Wrapf(err, "invalid asset %q", s)
	}
	if negative {
		amount = -amount
	}

	asset := Asset{Amount: amount, Symbol: Symbol{Code: code, Precision: uint8(len(frac))}}
	if !asset.Valid() {
		return Asset{}, errors.Errorf("invalid asset %q", s)
	}
	return asset, nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Asset) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Asset) UnmarshalText(text []byte) error {
	parsed, err := ParseAsset(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// storedAsset is the RLP wire shape. Persisted amounts are never
// negative, so the amount travels as uint64.
type storedAsset struct {
	Amount    uint64
	Code      string
	Precision uint8
}

// EncodeRLP implements rlp.Encoder.
func (a Asset) EncodeRLP(w io.Writer) error {
	if a.Amount < 0 {
		return errors.Errorf("refusing to store negative asset %s", a)
	}
	return rlp.Encode(w, &storedAsset{
		Amount:    uint64(a.Amount),
		Code:      a.Symbol.Code,
		Precision: a.Symbol.Precision,
	})
}

// DecodeRLP implements rlp.Decoder.
func (a *Asset) DecodeRLP(s *rlp.Stream) error {
	var stored storedAsset
	if err := s.Decode(&stored); err != nil {
		return err
	}
	*a = Asset{
		Amount: int64(stored.Amount),
		Symbol: Symbol{Code: stored.Code, Precision: stored.Precision},
	}
	return nil
}
