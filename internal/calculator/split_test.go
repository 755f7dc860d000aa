package calculator

import (
	"errors"
	"math"
	"testing"

	"github.com/mmynk/splitmint/internal/models"
)

func members(ids ...string) []models.GroupMember {
	out := make([]models.GroupMember, len(ids))
	for i, id := range ids {
		out[i] = models.GroupMember{User: models.User{ID: id, Name: id}}
	}
	return out
}

func TestEqualSplits(t *testing.T) {
	tests := []struct {
		name         string
		amount       float64
		members      []models.GroupMember
		wantErr      bool
		validateFunc func(t *testing.T, splits []models.ExpenseSplit)
	}{
		{
			name:    "two members split 100",
			amount:  100,
			members: members("u1", "u2"),
			validateFunc: func(t *testing.T, splits []models.ExpenseSplit) {
				// 100 / 2 = 50 each, in roster order
				if len(splits) != 2 {
					t.Fatalf("expected 2 splits, got %d", len(splits))
				}
				for i, want := range []string{"u1", "u2"} {
					if splits[i].UserID != want {
						t.Errorf("split %d user = %s, want %s", i, splits[i].UserID, want)
					}
					if math.Abs(splits[i].AmountOwed.Float()-50.0) > 0.01 {
						t.Errorf("split %d amount = %v, want 50.0", i, splits[i].AmountOwed)
					}
				}
			},
		},
		{
			name:    "three members split 100 sums back to 100",
			amount:  100,
			members: members("u1", "u2", "u3"),
			validateFunc: func(t *testing.T, splits []models.ExpenseSplit) {
				for _, s := range splits {
					if math.Abs(s.AmountOwed.Float()-100.0/3) > 0.0001 {
						t.Errorf("%s amount = %v, want %v", s.UserID, s.AmountOwed, 100.0/3)
					}
				}
				if math.Abs(SumSplits(splits)-100.0) > 0.01 {
					t.Errorf("sum = %v, want 100", SumSplits(splits))
				}
			},
		},
		{
			name:    "single member owes everything",
			amount:  42.5,
			members: members("u1"),
			validateFunc: func(t *testing.T, splits []models.ExpenseSplit) {
				if len(splits) != 1 || math.Abs(splits[0].AmountOwed.Float()-42.5) > 0.01 {
					t.Errorf("unexpected splits: %+v", splits)
				}
			},
		},
		{
			name:    "no members should error",
			amount:  100,
			members: nil,
			wantErr: true,
		},
		{
			name:    "NaN amount should error",
			amount:  math.NaN(),
			members: members("u1"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := EqualSplits(tt.amount, tt.members)
			if (err != nil) != tt.wantErr {
				t.Errorf("EqualSplits() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && tt.validateFunc != nil {
				tt.validateFunc(t, splits)
			}
		})
	}
}

func TestEqualSplitsNoMembersSentinel(t *testing.T) {
	_, err := EqualSplits(10, nil)
	if !errors.Is(err, ErrNoMembers) {
		t.Errorf("expected ErrNoMembers, got %v", err)
	}
}

func TestEqualSplitsSumProperty(t *testing.T) {
	for n := 1; n <= 12; n++ {
		ids := make([]string, n)
		for i := range ids {
			ids[i] = string(rune('a' + i))
		}
		for _, amount := range []float64{0.01, 1, 10, 99.99, 100, 1234.56} {
			splits, err := EqualSplits(amount, members(ids...))
			if err != nil {
				t.Fatalf("EqualSplits(%v, %d members) failed: %v", amount, n, err)
			}
			if len(splits) != n {
				t.Fatalf("expected %d splits, got %d", n, len(splits))
			}
			for _, s := range splits {
				if s.AmountOwed.Float() != amount/float64(n) {
					t.Errorf("share = %v, want %v", s.AmountOwed, amount/float64(n))
				}
			}
			if math.Abs(SumSplits(splits)-amount) > 0.01 {
				t.Errorf("n=%d amount=%v: sum = %v", n, amount, SumSplits(splits))
			}
		}
	}
}
