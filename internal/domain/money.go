package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Money is a price in minor currency units. The commerce API is loose about
// numeric types: prices arrive as numbers, numeric strings, or occasionally
// garbage. Decoding is tolerant and coerces anything unparseable to 0 so a
// single bad record never breaks cart totals.
type Money int64

// UnmarshalJSON accepts JSON numbers and numeric strings. Malformed values
// decode as 0 and never return an error.
func (m *Money) UnmarshalJSON(data []byte) error {
	*m = Money(coerceInt64(data))
	return nil
}

// Quantity is an item count with the same tolerant decoding as Money.
type Quantity int

// UnmarshalJSON accepts JSON numbers and numeric strings. Malformed values
// decode as 0 and never return an error.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	*q = Quantity(coerceInt64(data))
	return nil
}

// coerceInt64 extracts an integer from a JSON scalar, truncating floats and
// unquoting strings. Returns 0 when nothing usable is there.
func coerceInt64(data []byte) int64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0
		}
		data = []byte(s)
	}

	if n, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(string(data), 64); err == nil {
		return int64(f)
	}
	return 0
}
