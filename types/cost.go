// Package types provides common types used across Costwatch.
package types

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Cost represents a monetary cost amount in the provider's billing currency.
// All arithmetic is exact decimal, never floating point. Provider amounts
// arrive as strings with arbitrary precision (Cost Explorer emits values
// like "0.0000000344") and are preserved as-is.
type Cost struct {
	dec decimal.Decimal
}

// ZeroCost is the zero cost amount.
var ZeroCost = Cost{}

// NewCost creates a Cost from major units and an exponent,
// e.g. NewCost(499, -2) = 4.99.
func NewCost(value int64, exp int32) Cost {
	return Cost{dec: decimal.New(value, exp)}
}

// ParseCost parses a decimal amount string. Returns an error if the string
// is not a valid decimal number.
func ParseCost(s string) (Cost, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Cost{}, fmt.Errorf("types: parse cost %q: %w", s, err)
	}
	return Cost{dec: d}, nil
}

// MustCost is like ParseCost but panics on error. Use for hardcoded values.
func MustCost(s string) Cost {
	c, err := ParseCost(s)
	if err != nil {
		panic(err)
	}
	return c
}

// CostFromFloat creates a Cost from a float64. Prefer ParseCost for wire
// input; this exists for callers that only have a float budget figure.
func CostFromFloat(f float64) Cost {
	return Cost{dec: decimal.NewFromFloat(f)}
}

// Arithmetic operations

// Add returns the sum of two Cost values.
func (c Cost) Add(other Cost) Cost {
	return Cost{dec: c.dec.Add(other.dec)}
}

// Sub returns the difference of two Cost values.
func (c Cost) Sub(other Cost) Cost {
	return Cost{dec: c.dec.Sub(other.dec)}
}

// MulInt returns the Cost multiplied by an integer quantity.
func (c Cost) MulInt(qty int64) Cost {
	return Cost{dec: c.dec.Mul(decimal.NewFromInt(qty))}
}

// DivInt returns the Cost divided by an integer quantity.
func (c Cost) DivInt(qty int64) Cost {
	return Cost{dec: c.dec.Div(decimal.NewFromInt(qty))}
}

// Comparison methods

// IsZero returns true if the amount is zero.
func (c Cost) IsZero() bool { return c.dec.IsZero() }

// IsNegative returns true if the amount is less than zero.
func (c Cost) IsNegative() bool { return c.dec.IsNegative() }

// Equal returns true if both amounts are numerically equal
// ("3.0" equals "3.00").
func (c Cost) Equal(other Cost) bool { return c.dec.Equal(other.dec) }

// GreaterThan returns true if this Cost is greater than other.
func (c Cost) GreaterThan(other Cost) bool { return c.dec.GreaterThan(other.dec) }

// LessThan returns true if this Cost is less than other.
func (c Cost) LessThan(other Cost) bool { return c.dec.LessThan(other.dec) }

// String returns the canonical decimal string form, e.g. "4.99".
func (c Cost) String() string { return c.dec.String() }

// Float64 returns the nearest float64 value. Display only; never feed the
// result back into ledger arithmetic.
func (c Cost) Float64() float64 {
	f, _ := c.dec.Float64()
	return f
}

// MarshalText implements encoding.TextMarshaler.
func (c Cost) MarshalText() ([]byte, error) {
	return []byte(c.dec.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Cost) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*c = ZeroCost
		return nil
	}
	parsed, err := ParseCost(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value implements driver.Valuer. Costs are stored as their canonical
// decimal string so no precision is lost in any driver.
func (c Cost) Value() (driver.Value, error) {
	return c.dec.String(), nil
}

// Scan implements sql.Scanner.
func (c *Cost) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = ZeroCost
		return nil
	case string:
		return c.UnmarshalText([]byte(v))
	case []byte:
		return c.UnmarshalText(v)
	case float64:
		*c = CostFromFloat(v)
		return nil
	case int64:
		*c = Cost{dec: decimal.NewFromInt(v)}
		return nil
	default:
		return fmt.Errorf("types: cannot scan %T into Cost", src)
	}
}

// SumCosts calculates the sum of multiple Cost values.
func SumCosts(values ...Cost) Cost {
	total := ZeroCost
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
