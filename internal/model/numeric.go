package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Numeric is a decimal that decodes leniently from JSON. Numbers and numeric
// strings are accepted; null, empty, non-numeric strings and any other JSON
// value coerce to zero instead of failing the whole payload.
type Numeric struct {
	decimal.Decimal
}

// Num wraps a decimal.
func Num(d decimal.Decimal) Numeric {
	return Numeric{Decimal: d}
}

// NumFromFloat is a convenience for literals in tests and CLI flags.
func NumFromFloat(f float64) Numeric {
	return Numeric{Decimal: decimal.NewFromFloat(f)}
}

// UnmarshalJSON never returns an error.
func (n *Numeric) UnmarshalJSON(data []byte) error {
	n.Decimal = coerce(data)
	return nil
}

// MarshalJSON writes the value as a bare JSON number.
func (n Numeric) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}

func coerce(data []byte) decimal.Decimal {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return decimal.Zero
		}
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Int is the integer counterpart of Numeric, used for counters such as
// days_left and count. Fractions truncate toward zero; anything that is not
// a number or numeric string decodes as 0.
type Int int

// UnmarshalJSON never returns an error.
func (i *Int) UnmarshalJSON(data []byte) error {
	*i = Int(coerce(data).IntPart())
	return nil
}
