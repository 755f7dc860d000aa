package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Amount is a decimal quantity decoded from either a JSON number or a JSON
// string. The API emits both depending on the endpoint.
type Amount float64

// Float returns the amount as a float64.
func (a Amount) Float() float64 {
	return float64(a)
}

// Fixed formats the amount with exactly two decimals ("20.00").
func (a Amount) Fixed() string {
	return strconv.FormatFloat(float64(a), 'f', 2, 64)
}

// Signed formats the amount with two decimals and a leading "+" for
// strictly positive values ("+20.00", "0.00", "-20.00").
func (a Amount) Signed() string {
	if a > 0 {
		return "+" + a.Fixed()
	}
	return a.Fixed()
}

// String returns the shortest representation ("500", "12.5").
func (a Amount) String() string {
	return strconv.FormatFloat(float64(a), 'f', -1, 64)
}

// MarshalJSON always encodes a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts 12.5, "12.5" and null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode amount: %w", err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*a = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", s, err)
		}
		*a = Amount(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to decode amount: %w", err)
	}
	*a = Amount(f)
	return nil
}
