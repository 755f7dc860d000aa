package models

// SplitType describes how an expense amount is divided among participants.
type SplitType string

const (
	SplitEqual   SplitType = "EQUAL"
	SplitExact   SplitType = "EXACT"
	SplitPercent SplitType = "PERCENT"
)

// Valid reports whether t is one of the split types the API accepts.
func (t SplitType) Valid() bool {
	switch t {
	case SplitEqual, SplitExact, SplitPercent:
		return true
	}
	return false
}

// Expense is a single shared expense logged in a group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// GroupID is the group this expense belongs to.
	GroupID string `json:"group_id"`

	// PayerID is the member who paid. Membership is enforced server-side.
	PayerID string `json:"payer_id"`

	// Amount is the total paid.
	Amount Amount `json:"amount"`

	// Description is a short label (e.g., "Dinner").
	Description string `json:"description"`

	// SplitType is rendered verbatim in the expenses table.
	SplitType SplitType `json:"split_type"`

	// Date is when the expense was recorded (server clock).
	Date Timestamp `json:"date"`

	// Splits holds one row per participant.
	Splits []ExpenseSplit `json:"splits"`
}

// ExpenseSplit is one participant's share of an expense.
type ExpenseSplit struct {
	UserID     string `json:"user_id"`
	AmountOwed Amount `json:"amount_owed"`
}

// ParsedExpense is the structured output of MintSense for a free-text entry.
type ParsedExpense struct {
	Amount      Amount `json:"amount"`
	Description string `json:"description"`
	PayerName   string `json:"payer_name"`

	// InvolvedUsers and SplitType are returned by the parser but the
	// add-expense form does not consume them.
	InvolvedUsers []string  `json:"involved_users,omitempty"`
	SplitType     SplitType `json:"split_type,omitempty"`
}
