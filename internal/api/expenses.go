package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mmynk/splitmint/internal/models"
)

// CreateExpenseRequest is the body of POST /expenses/.
type CreateExpenseRequest struct {
	Amount      models.Amount         `json:"amount"`
	Description string                `json:"description"`
	SplitType   models.SplitType      `json:"split_type"`
	GroupID     string                `json:"group_id"`
	PayerID     string                `json:"payer_id"`
	Splits      []models.ExpenseSplit `json:"splits"`
}

// ParseExpenseRequest is the body of POST /api/parse-expense.
type ParseExpenseRequest struct {
	Text    string `json:"text"`
	GroupID string `json:"group_id"`
}

// ListExpenses returns every expense of a group.
func (c *Client) ListExpenses(ctx context.Context, groupID string) ([]models.Expense, error) {
	var expenses []models.Expense
	path := "/expenses/group/" + url.PathEscape(groupID)
	if err := c.doJSON(ctx, "expenses.list", http.MethodGet, path, nil, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// GetBalances returns the server-computed balances and settlement suggestions.
func (c *Client) GetBalances(ctx context.Context, groupID string) (*models.BalanceResponse, error) {
	var balances models.BalanceResponse
	path := "/expenses/group/" + url.PathEscape(groupID) + "/balances"
	if err := c.doJSON(ctx, "expenses.balances", http.MethodGet, path, nil, &balances); err != nil {
		return nil, err
	}
	return &balances, nil
}

// CreateExpense logs an expense with its split rows.
func (c *Client) CreateExpense(ctx context.Context, req CreateExpenseRequest) (*models.Expense, error) {
	var expense models.Expense
	if err := c.doJSON(ctx, "expenses.create", http.MethodPost, "/expenses/", req, &expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

// ParseExpense sends free text to MintSense and returns the structured result.
func (c *Client) ParseExpense(ctx context.Context, req ParseExpenseRequest) (*models.ParsedExpense, error) {
	var parsed models.ParsedExpense
	if err := c.doJSON(ctx, "mintsense.parse", http.MethodPost, "/api/parse-expense", req, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}
