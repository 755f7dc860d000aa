package models

// Settlement is a suggested transfer that moves net balances toward zero.
// Suggestions are computed entirely server-side.
type Settlement struct {
	// From is the debtor's user ID.
	From string `json:"from"`

	// To is the creditor's user ID.
	To string `json:"to"`

	// Amount is the transfer amount.
	Amount Amount `json:"amount"`
}

// BalanceResponse is the derived balance summary for one group.
// It is recomputed by the server on every fetch and replaced wholesale.
type BalanceResponse struct {
	// Balances maps user ID to signed net balance, in server order.
	// Positive = owed money, negative = owes money.
	Balances Balances `json:"balances"`

	// Settlements are the ordered transfer suggestions.
	Settlements []Settlement `json:"settlements"`
}
