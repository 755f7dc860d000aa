package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// BalanceEntry is one user's signed net balance.
type BalanceEntry struct {
	UserID string
	Amount Amount
}

// Balances is a user ID → net balance map that keeps the key order of the
// JSON object it was decoded from, so views list members in server order.
type Balances struct {
	entries []BalanceEntry
}

// NewBalances builds Balances from entries in the given order. Later
// duplicates overwrite earlier ones in place.
func NewBalances(entries ...BalanceEntry) Balances {
	var b Balances
	for _, e := range entries {
		b.set(e.UserID, e.Amount)
	}
	return b
}

// Len returns the number of users with a balance.
func (b Balances) Len() int {
	return len(b.entries)
}

// Entries returns the balances in order. The slice must not be modified.
func (b Balances) Entries() []BalanceEntry {
	return b.entries
}

// Get returns the balance for userID.
func (b Balances) Get(userID string) (Amount, bool) {
	for _, e := range b.entries {
		if e.UserID == userID {
			return e.Amount, true
		}
	}
	return 0, false
}

func (b *Balances) set(userID string, amount Amount) {
	for i := range b.entries {
		if b.entries[i].UserID == userID {
			b.entries[i].Amount = amount
			return
		}
	}
	b.entries = append(b.entries, BalanceEntry{UserID: userID, Amount: amount})
}

// MarshalJSON encodes a JSON object in entry order.
func (b Balances) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range b.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.UserID)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(e.Amount.String())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving key order.
func (b *Balances) UnmarshalJSON(data []byte) error {
	b.entries = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to decode balances: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("failed to decode balances: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to decode balance key: %w", err)
		}
		userID, ok := tok.(string)
		if !ok {
			return fmt.Errorf("failed to decode balance key: got %v", tok)
		}
		var amount Amount
		if err := dec.Decode(&amount); err != nil {
			return fmt.Errorf("failed to decode balance for %s: %w", userID, err)
		}
		b.set(userID, amount)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to decode balances: %w", err)
	}
	return nil
}
