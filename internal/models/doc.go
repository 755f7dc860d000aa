// Package models defines the entities the SplitMint client consumes from the API.
//
// # Ownership
//
// The client never owns any of these entities. Groups, expenses and balances are
// fetched from the SplitMint API, rendered, and thrown away on the next refetch:
//   - User, Group, GroupMember: roster data, read from GET /groups and GET /groups/{id}
//   - Expense, ExpenseSplit: expense history, read from GET /expenses/group/{id}
//   - BalanceResponse, Settlement: derived server-side, never patched locally
//   - ParsedExpense: MintSense output used to pre-fill the add-expense form
//
// # Wire format
//
// The API serializes decimal fields either as JSON numbers or as strings ("100.00"),
// and emits naive timestamps without a zone. Amount and Timestamp accept both forms.
//
// # Lookups
//
// UserLookup is the id → display-name table built from a group's member list. It is
// rebuilt in full on every group fetch and never patched.
package models
