package asset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSymbolMismatch occurs when arithmetic combines quantities of
	// different symbols or precisions.
	ErrSymbolMismatch = errors.New("asset symbol mismatch")

	// ErrInvalidAsset indicates a quantity that failed validation.
	ErrInvalidAsset = errors.New("invalid asset")
)

// maxAmount bounds amounts so additions of valid quantities cannot overflow int64.
const maxAmount = (1 << 62) - 1

// Symbol identifies a token denomination: an uppercase code plus the number
// of decimal places carried by amounts of that symbol.
type Symbol struct {
	Code      string
	Precision uint8
}

// MustSymbol builds a Symbol and panics on invalid input. Intended for
// package-level defaults and test fixtures.
func MustSymbol(code string, precision uint8) Symbol {
	s := Symbol{Code: code, Precision: precision}
	if err := s.Validate(); err != nil {
		panic(err)
	}
	return s
}

// Validate checks the symbol code is 1-7 uppercase letters, matching the
// constraints of the chain the ledger settles against.
func (s Symbol) Validate() error {
	if len(s.Code) == 0 || len(s.Code) > 7 {
		return fmt.Errorf("%w: symbol code %q must be 1-7 characters", ErrInvalidAsset, s.Code)
	}
	for _, r := range s.Code {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("%w: symbol code %q must be uppercase letters", ErrInvalidAsset, s.Code)
		}
	}
	if s.Precision > 18 {
		return fmt.Errorf("%w: precision %d exceeds 18", ErrInvalidAsset, s.Precision)
	}
	return nil
}

func (s Symbol) String() string {
	return fmt.Sprintf("%d,%s", s.Precision, s.Code)
}

// ParseSymbol reads the "4,SYS" form produced by Symbol.String.
func ParseSymbol(s string) (Symbol, error) {
	comma := strings.IndexByte(s, ',')
	if comma < 0 {
		return Symbol{}, fmt.Errorf("%w: symbol %q is not of the form \"4,SYS\"", ErrInvalidAsset, s)
	}
	precision := 0
	for _, r := range s[:comma] {
		if r < '0' || r > '9' {
			return Symbol{}, fmt.Errorf("%w: symbol %q has a non-numeric precision", ErrInvalidAsset, s)
		}
		precision = precision*10 + int(r-'0')
		if precision > 18 {
			break
		}
	}
	sym := Symbol{Code: s[comma+1:], Precision: uint8(precision)}
	if err := sym.Validate(); err != nil {
		return Symbol{}, err
	}
	return sym, nil
}

// Asset is a fixed-point token quantity. Amount carries the value scaled by
// 10^Precision, so "1.0000 SYS" is Amount=10000 with a 4-decimal symbol.
// Arithmetic is exact; there is no floating point anywhere in the ledger.
type Asset struct {
	Amount int64
	Symbol Symbol
}

// New builds an asset from a raw scaled amount.
func New(amount int64, symbol Symbol) Asset {
	return Asset{Amount: amount, Symbol: symbol}
}

// Parse reads the canonical "123.4500 SYS" form. The number of decimal
// digits fixes the precision, so "1.00 SYS" and "1.0000 SYS" are different
// symbols and will not mix.
func Parse(s string) (Asset, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 {
		return Asset{}, fmt.Errorf("%w: %q is not of the form \"1.0000 SYS\"", ErrInvalidAsset, s)
	}

	numStr, code := fields[0], fields[1]
	negative := strings.HasPrefix(numStr, "-")
	if negative {
		numStr = numStr[1:]
	}

	intPart := numStr
	fracPart := ""
	if dot := strings.IndexByte(numStr, '.'); dot >= 0 {
		intPart, fracPart = numStr[:dot], numStr[dot+1:]
	}
	if intPart == "" && fracPart == "" {
		return Asset{}, fmt.Errorf("%w: %q has no digits", ErrInvalidAsset, s)
	}

	var amount int64
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return Asset{}, fmt.Errorf("%w: %q contains a non-digit", ErrInvalidAsset, s)
		}
		amount = amount*10 + int64(r-'0')
		if amount > maxAmount {
			return Asset{}, fmt.Errorf("%w: %q overflows", ErrInvalidAsset, s)
		}
	}
	if negative {
		amount = -amount
	}

	sym := Symbol{Code: code, Precision: uint8(len(fracPart))}
	if err := sym.Validate(); err != nil {
		return Asset{}, err
	}
	return Asset{Amount: amount, Symbol: sym}, nil
}

// MustParse is Parse for fixtures and constants; it panics on error.
func MustParse(s string) Asset {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Validate reports whether the asset has a well-formed symbol and an amount
// within the representable range.
func (a Asset) Validate() error {
	if err := a.Symbol.Validate(); err != nil {
		return err
	}
	if a.Amount > maxAmount || a.Amount < -maxAmount {
		return fmt.Errorf("%w: amount out of range", ErrInvalidAsset)
	}
	return nil
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Asset) IsPositive() bool {
	return a.Amount > 0
}

// IsZero reports whether the amount is exactly zero.
func (a Asset) IsZero() bool {
	return a.Amount == 0
}

// Add returns a+b, failing if the symbols differ or the result overflows.
func (a Asset) Add(b Asset) (Asset, error) {
	if a.Symbol != b.Symbol {
		return Asset{}, fmt.Errorf("%w: %s vs %s", ErrSymbolMismatch, a.Symbol, b.Symbol)
	}
	sum := a.Amount + b.Amount
	if sum > maxAmount || sum < -maxAmount {
		return Asset{}, fmt.Errorf("%w: addition overflows", ErrInvalidAsset)
	}
	return Asset{Amount: sum, Symbol: a.Symbol}, nil
}

// Sub returns a-b, failing if the symbols differ.
func (a Asset) Sub(b Asset) (Asset, error) {
	if a.Symbol != b.Symbol {
		return Asset{}, fmt.Errorf("%w: %s vs %s", ErrSymbolMismatch, a.Symbol, b.Symbol)
	}
	return Asset{Amount: a.Amount - b.Amount, Symbol: a.Symbol}, nil
}

// String renders the canonical form, e.g. "77.0000 SYS".
func (a Asset) String() string {
	amount := a.Amount
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	if a.Symbol.Precision == 0 {
		return fmt.Sprintf("%s%d %s", sign, amount, a.Symbol.Code)
	}

	scale := int64(1)
	for i := uint8(0); i < a.Symbol.Precision; i++ {
		scale *= 10
	}
	return fmt.Sprintf("%s%d.%0*d %s", sign, amount/scale, int(a.Symbol.Precision), amount%scale, a.Symbol.Code)
}

// MarshalText implements encoding.TextMarshaler using the canonical form.
func (a Asset) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Asset) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
