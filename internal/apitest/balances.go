package apitest

import (
	"sort"

	"github.com/mmynk/splitmint/internal/models"
)

// settlementThreshold ignores floating point noise when matching debts.
const settlementThreshold = 0.01

// netBalances computes paid - owed per user. Every member starts at zero
// and users are listed in roster order, then in order of first appearance.
func netBalances(group *models.Group, expenses []models.Expense) models.Balances {
	order := group.MemberIDs()
	net := make(map[string]float64, len(order))
	for _, id := range order {
		net[id] = 0
	}
	touch := func(id string) {
		if _, ok := net[id]; !ok {
			net[id] = 0
			order = append(order, id)
		}
	}

	for _, e := range expenses {
		touch(e.PayerID)
		net[e.PayerID] += e.Amount.Float()
		for _, s := range e.Splits {
			touch(s.UserID)
			net[s.UserID] -= s.AmountOwed.Float()
		}
	}

	entries := make([]models.BalanceEntry, len(order))
	for i, id := range order {
		entries[i] = models.BalanceEntry{UserID: id, Amount: models.Amount(net[id])}
	}
	return models.NewBalances(entries...)
}

// suggestSettlements matches the largest debtor with the largest creditor
// until every balance is within the threshold.
func suggestSettlements(balances models.Balances) []models.Settlement {
	type party struct {
		id     string
		amount float64
	}
	var creditors, debtors []party
	for _, e := range balances.Entries() {
		switch {
		case e.Amount.Float() > settlementThreshold:
			creditors = append(creditors, party{e.UserID, e.Amount.Float()})
		case e.Amount.Float() < -settlementThreshold:
			debtors = append(debtors, party{e.UserID, -e.Amount.Float()})
		}
	}
	byAmount := func(ps []party) {
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].amount > ps[j].amount })
	}

	settlements := []models.Settlement{}
	for len(creditors) > 0 && len(debtors) > 0 {
		byAmount(creditors)
		byAmount(debtors)

		creditor, debtor := &creditors[0], &debtors[0]
		amount := min(creditor.amount, debtor.amount)
		settlements = append(settlements, models.Settlement{
			From:   debtor.id,
			To:     creditor.id,
			Amount: models.Amount(amount),
		})

		creditor.amount -= amount
		debtor.amount -= amount
		if creditor.amount <= settlementThreshold {
			creditors = creditors[1:]
		}
		if debtor.amount <= settlementThreshold {
			debtors = debtors[1:]
		}
	}
	return settlements
}
