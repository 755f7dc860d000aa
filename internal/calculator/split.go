package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/mmynk/splitmint/internal/models"
)

// ErrNoMembers is returned when an expense is split across an empty roster.
var ErrNoMembers = errors.New("must have at least one member to split with")

// EqualSplits divides amount evenly across every member of the group, in
// roster order: amount_owed = amount / len(members) for each member.
//
// Manual entry always splits across the whole roster; there is no
// per-expense participant selection. Shares are not rounded, so the rows
// sum to amount within floating point tolerance.
func EqualSplits(amount float64, members []models.GroupMember) ([]models.ExpenseSplit, error) {
	if len(members) == 0 {
		return nil, ErrNoMembers
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("invalid amount: %v", amount)
	}

	share := models.Amount(amount / float64(len(members)))
	splits := make([]models.ExpenseSplit, len(members))
	for i, m := range members {
		splits[i] = models.ExpenseSplit{
			UserID:     m.User.ID,
			AmountOwed: share,
		}
	}
	return splits, nil
}

// SumSplits returns the total of all amount_owed values.
func SumSplits(splits []models.ExpenseSplit) float64 {
	var total float64
	for _, s := range splits {
		total += s.AmountOwed.Float()
	}
	return total
}
