package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Quantity is a base-10 integer carried as a string to avoid precision loss.
// Providers send these either quoted or as bare JSON numbers of arbitrary size;
// both decode to the same decimal string. null and "" decode to "0".
type Quantity string

// ZeroQuantity is the canonical zero amount.
const ZeroQuantity Quantity = "0"

// UnmarshalJSON accepts a JSON string, a JSON number or null. Any other JSON
// value decodes to "0" so one odd field never rejects a whole page.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*q = ZeroQuantity
		return nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			s = string(ZeroQuantity)
		}
		*q = Quantity(s)
		return nil
	}

	// Bare number. Integers are kept verbatim; exponent forms are expanded.
	if isDigits(raw) {
		*q = Quantity(raw)
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		// bool, object or array: not a quantity
		*q = ZeroQuantity
		return nil
	}
	*q = Quantity(d.Truncate(0).String())
	return nil
}

// String returns the decimal string.
func (q Quantity) String() string {
	return string(q)
}

// IsZero reports whether the quantity is empty or numerically zero.
// A non-numeric, non-empty value counts as nonzero.
func (q Quantity) IsZero() bool {
	if q == "" || q == ZeroQuantity {
		return true
	}
	d, err := decimal.NewFromString(string(q))
	if err != nil {
		return false
	}
	return d.IsZero()
}

// Float converts the quantity the way a lenient float parse would: values that
// do not parse become NaN, so every ordered comparison against them is false.
func (q Quantity) Float() float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(q)), 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

// Decimal parses the quantity as an exact decimal.
func (q Quantity) Decimal() (decimal.Decimal, error) {
	if q == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(string(q))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '-' && i == 0 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
