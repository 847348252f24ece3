package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Price is a BRL amount. The backend sends Postgres numeric columns as JSON
// strings ("19.90") and computed values as numbers, so both are accepted.
type Price struct {
	decimal.Decimal
}

// NewPrice parses a decimal string such as "19.90".
func NewPrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("parse price %q: %w", s, err)
	}
	return Price{d}, nil
}

// MustPrice is NewPrice for literals. It panics on malformed input.
func MustPrice(s string) Price {
	p, err := NewPrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

// PriceFromCents builds a Price from an integer number of centavos.
func PriceFromCents(cents int64) Price {
	return Price{decimal.New(cents, -2)}
}

// Times returns p multiplied by qty.
func (p Price) Times(qty int) Price {
	return Price{p.Mul(decimal.NewFromInt(int64(qty)))}
}

// Plus returns p + o.
func (p Price) Plus(o Price) Price {
	return Price{p.Add(o.Decimal)}
}

// String renders the amount with exactly two decimals, e.g. "41.00".
func (p Price) String() string {
	return p.StringFixed(2)
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.StringFixed(2)), nil
}

// UnmarshalJSON accepts 19.9, "19.90" and null (zero).
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		p.Decimal = decimal.Zero
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			p.Decimal = decimal.Zero
			return nil
		}
		data = []byte(s)
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("invalid price %s: %w", data, err)
	}
	p.Decimal = d
	return nil
}
