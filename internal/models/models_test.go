package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestAmountUnmarshal(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{`100`, 100, false},
		{`12.5`, 12.5, false},
		{`"100.00"`, 100, false},
		{`"-20.50"`, -20.5, false},
		{`null`, 0, false},
		{`""`, 0, false},
		{`"abc"`, 0, true},
		{`true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var a Amount
			err := json.Unmarshal([]byte(tt.input), &a)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(a.Float()-tt.want) > 0.001 {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, a, tt.want)
			}
		})
	}
}

func TestAmountFormatting(t *testing.T) {
	tests := []struct {
		amount     Amount
		wantFixed  string
		wantSigned string
		wantString string
	}{
		{20, "20.00", "+20.00", "20"},
		{-20, "-20.00", "-20.00", "-20"},
		{0, "0.00", "0.00", "0"},
		{33.333333, "33.33", "+33.33", "33.333333"},
		{500, "500.00", "+500.00", "500"},
	}

	for _, tt := range tests {
		t.Run(tt.wantFixed, func(t *testing.T) {
			if got := tt.amount.Fixed(); got != tt.wantFixed {
				t.Errorf("Fixed() = %q, want %q", got, tt.wantFixed)
			}
			if got := tt.amount.Signed(); got != tt.wantSigned {
				t.Errorf("Signed() = %q, want %q", got, tt.wantSigned)
			}
			if got := tt.amount.String(); got != tt.wantString {
				t.Errorf("String() = %q, want %q", got, tt.wantString)
			}
		})
	}
}

func TestTimestampUnmarshal(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{`"2024-05-01T12:30:00Z"`, time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)},
		{`"2024-05-01T12:30:00.123456"`, time.Date(2024, 5, 1, 12, 30, 0, 123456000, time.UTC)},
		{`"2024-05-01T12:30:00"`, time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)},
		{`"2024-05-01"`, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var ts Timestamp
			if err := json.Unmarshal([]byte(tt.input), &ts); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if !ts.Equal(tt.want) {
				t.Errorf("got %v, want %v", ts.Time, tt.want)
			}
		})
	}

	t.Run("null is zero", func(t *testing.T) {
		var ts Timestamp
		if err := json.Unmarshal([]byte(`null`), &ts); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if !ts.IsZero() {
			t.Errorf("expected zero time, got %v", ts.Time)
		}
	})

	t.Run("garbage is an error", func(t *testing.T) {
		var ts Timestamp
		if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
			t.Error("expected error for unrecognized timestamp")
		}
	})
}

func TestBalancesPreserveOrder(t *testing.T) {
	var b Balances
	if err := json.Unmarshal([]byte(`{"u2": -20, "u1": "20.00", "u3": 0}`), &b); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	wantIDs := []string{"u2", "u1", "u3"}
	wantAmounts := []float64{-20, 20, 0}
	if b.Len() != len(wantIDs) {
		t.Fatalf("Len() = %d, want %d", b.Len(), len(wantIDs))
	}
	for i, e := range b.Entries() {
		if e.UserID != wantIDs[i] {
			t.Errorf("entry %d: user = %s, want %s", i, e.UserID, wantIDs[i])
		}
		if math.Abs(e.Amount.Float()-wantAmounts[i]) > 0.01 {
			t.Errorf("entry %d: amount = %v, want %v", i, e.Amount, wantAmounts[i])
		}
	}

	if amount, ok := b.Get("u1"); !ok || amount != 20 {
		t.Errorf("Get(u1) = %v, %v; want 20, true", amount, ok)
	}
	if _, ok := b.Get("missing"); ok {
		t.Error("Get(missing) should report false")
	}

	out, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != `{"u2":-20,"u1":20,"u3":0}` {
		t.Errorf("Marshal = %s", out)
	}
}

func TestBalancesRejectsNonObject(t *testing.T) {
	var b Balances
	if err := json.Unmarshal([]byte(`[1,2]`), &b); err == nil {
		t.Error("expected error for array input")
	}
}

func testGroup() *Group {
	return &Group{
		ID:   "g1",
		Name: "Trip",
		Members: []GroupMember{
			{User: User{ID: "u1", Name: "Alice", Email: "alice@test.com"}},
			{User: User{ID: "u2", Name: "Bob", Email: "bob@test.com"}},
			{User: User{ID: "u3", Name: "alice", Email: "alice2@test.com"}},
		},
	}
}

func TestUserLookup(t *testing.T) {
	lookup := NewUserLookup(testGroup())

	if lookup.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", lookup.Len())
	}
	if got := lookup.NameOrUnknown("u2"); got != "Bob" {
		t.Errorf("NameOrUnknown(u2) = %q, want Bob", got)
	}
	if got := lookup.NameOrUnknown("ghost"); got != UnknownName {
		t.Errorf("NameOrUnknown(ghost) = %q, want %q", got, UnknownName)
	}
	if got := lookup.NameOrID("ghost"); got != "ghost" {
		t.Errorf("NameOrID(ghost) = %q, want ghost", got)
	}

	t.Run("FindByName ignores case and prefers roster order", func(t *testing.T) {
		id, ok := lookup.FindByName("ALICE")
		if !ok || id != "u1" {
			t.Errorf("FindByName(ALICE) = %q, %v; want u1, true", id, ok)
		}
	})

	t.Run("FindByName is exact", func(t *testing.T) {
		if _, ok := lookup.FindByName("Ali"); ok {
			t.Error("partial names must not match")
		}
		if _, ok := lookup.FindByName(" Bob"); ok {
			t.Error("names are not trimmed")
		}
	})

	t.Run("nil group", func(t *testing.T) {
		empty := NewUserLookup(nil)
		if empty.Len() != 0 {
			t.Errorf("Len() = %d, want 0", empty.Len())
		}
		if got := empty.NameOrUnknown("u1"); got != UnknownName {
			t.Errorf("NameOrUnknown = %q", got)
		}
	})
}

func TestGroupDecode(t *testing.T) {
	payload := `{
		"id": "g1",
		"name": "Goa Trip",
		"created_by_user_id": "u1",
		"members": [
			{"user": {"id": "u1", "email": "alice@test.com", "name": "Alice", "avatar_url": null}, "joined_at": "2024-05-01T10:00:00"},
			{"user": {"id": "u2", "email": "bob@test.com", "name": "Bob"}, "joined_at": "2024-05-02T10:00:00"}
		]
	}`

	var g Group
	if err := json.Unmarshal([]byte(payload), &g); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if g.Name != "Goa Trip" {
		t.Errorf("name: got %q", g.Name)
	}
	ids := g.MemberIDs()
	if len(ids) != 2 || ids[0] != "u1" || ids[1] != "u2" {
		t.Errorf("MemberIDs() = %v", ids)
	}
	if g.Members[0].User.Initial() != "A" {
		t.Errorf("Initial() = %q", g.Members[0].User.Initial())
	}
	if g.Members[1].JoinedAt.Day() != 2 {
		t.Errorf("joined_at: got %v", g.Members[1].JoinedAt.Time)
	}
}
