package views

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/mmynk/splitmint/internal/api"
	"github.com/mmynk/splitmint/internal/calculator"
	"github.com/mmynk/splitmint/internal/models"
)

// PayerOption is one entry of the payer select.
type PayerOption struct {
	ID       string
	Name     string
	Selected bool
}

// ExpenseDialogView is the renderable state of the add-expense dialog.
type ExpenseDialogView struct {
	Open        bool
	Amount      string
	Description string
	PayerID     string
	MagicText   string
	LoadingAI   bool
	CanParse    bool
	Payers      []PayerOption
	Alert       string
}

// AddExpenseDialog logs an expense split equally across the whole roster.
// Fields can be typed in or pre-filled by MintSense from free text.
type AddExpenseDialog struct {
	api     ExpenseAPI
	onAdded func(context.Context) error

	mu          sync.Mutex
	group       *models.Group
	lookup      models.UserLookup
	open        bool
	amount      string
	description string
	payerID     string
	magicText   string
	loadingAI   bool
	alert       string
}

// NewAddExpenseDialog creates the dialog. onAdded runs after every
// successful submit.
func NewAddExpenseDialog(api ExpenseAPI, onAdded func(context.Context) error) *AddExpenseDialog {
	return &AddExpenseDialog{api: api, onAdded: onAdded}
}

// Bind points the dialog at the latest group and its lookup table.
func (d *AddExpenseDialog) Bind(group *models.Group, lookup models.UserLookup) {
	d.mu.Lock()
	d.group = group
	d.lookup = lookup
	d.mu.Unlock()
}

// Show opens the dialog.
func (d *AddExpenseDialog) Show() {
	d.mu.Lock()
	d.open = true
	d.mu.Unlock()
}

// Hide closes the dialog, keeping entered values.
func (d *AddExpenseDialog) Hide() {
	d.mu.Lock()
	d.open = false
	d.mu.Unlock()
}

// SetAmount sets the amount field as typed.
func (d *AddExpenseDialog) SetAmount(amount string) {
	d.mu.Lock()
	d.amount = amount
	d.mu.Unlock()
}

// SetDescription sets the description field.
func (d *AddExpenseDialog) SetDescription(description string) {
	d.mu.Lock()
	d.description = description
	d.mu.Unlock()
}

// SetPayer selects the payer by user ID.
func (d *AddExpenseDialog) SetPayer(userID string) {
	d.mu.Lock()
	d.payerID = userID
	d.mu.Unlock()
}

// SetMagicText sets the MintSense free text.
func (d *AddExpenseDialog) SetMagicText(text string) {
	d.mu.Lock()
	d.magicText = text
	d.mu.Unlock()
}

// DismissAlert clears the pending alert.
func (d *AddExpenseDialog) DismissAlert() {
	d.mu.Lock()
	d.alert = ""
	d.mu.Unlock()
}

// ParseWithMintSense sends the free text to MintSense and pre-fills amount,
// description and payer. The payer is matched by case-insensitive exact
// name; without a match the payer keeps its previous value. Empty text is a
// no-op.
func (d *AddExpenseDialog) ParseWithMintSense(ctx context.Context) error {
	d.mu.Lock()
	text := d.magicText
	if text == "" {
		d.mu.Unlock()
		return nil
	}
	if d.group == nil {
		d.mu.Unlock()
		return ErrNoGroup
	}
	groupID := d.group.ID
	d.loadingAI = true
	d.alert = ""
	d.mu.Unlock()

	parsed, err := d.api.ParseExpense(ctx, api.ParseExpenseRequest{Text: text, GroupID: groupID})

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loadingAI = false
	if err != nil {
		d.alert = AlertParse
		slog.Error("MintSense parse failed", "group_id", groupID, "error", err)
		return fmt.Errorf("failed to parse expense: %w", err)
	}

	d.amount = parsed.Amount.String()
	d.description = parsed.Description
	if id, ok := d.lookup.FindByName(parsed.PayerName); ok {
		d.payerID = id
	} else {
		slog.Debug("MintSense payer not in group", "group_id", groupID, "payer_name", parsed.PayerName)
	}
	return nil
}

// Submit creates an EQUAL expense split across every current member. It is
// blocked unless amount, description and payer are all set. On success the
// dialog closes, amount, description and free text are cleared and onAdded
// runs; on failure the dialog keeps its values and shows an alert.
func (d *AddExpenseDialog) Submit(ctx context.Context) error {
	d.mu.Lock()
	if d.amount == "" || d.description == "" || d.payerID == "" {
		d.mu.Unlock()
		return ErrIncomplete
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(d.amount), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		raw := d.amount
		d.alert = AlertAddExpense
		d.mu.Unlock()
		slog.Error("Failed to add expense", "amount", raw, "error", ErrInvalidAmount)
		return fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if d.group == nil {
		d.mu.Unlock()
		return ErrNoGroup
	}
	group := d.group
	req := api.CreateExpenseRequest{
		Amount:      models.Amount(amount),
		Description: d.description,
		SplitType:   models.SplitEqual,
		GroupID:     group.ID,
		PayerID:     d.payerID,
	}
	d.alert = ""
	d.mu.Unlock()

	splits, err := calculator.EqualSplits(amount, group.Members)
	if err == nil {
		req.Splits = splits
		_, err = d.api.CreateExpense(ctx, req)
	}
	if err != nil {
		d.mu.Lock()
		d.alert = AlertAddExpense
		d.mu.Unlock()
		slog.Error("Failed to add expense", "group_id", group.ID, "error", err)
		return fmt.Errorf("failed to add expense: %w", err)
	}

	d.mu.Lock()
	d.open = false
	d.amount = ""
	d.description = ""
	d.magicText = ""
	d.mu.Unlock()

	slog.Info("Expense added", "group_id", group.ID, "amount", amount, "splits", len(req.Splits))
	if d.onAdded != nil {
		// The page refresh logs each failed fetch itself.
		_ = d.onAdded(ctx)
	}
	return nil
}

// View returns a snapshot for rendering.
func (d *AddExpenseDialog) View() ExpenseDialogView {
	d.mu.Lock()
	defer d.mu.Unlock()

	var payers []PayerOption
	if d.group != nil {
		payers = make([]PayerOption, len(d.group.Members))
		for i, m := range d.group.Members {
			payers[i] = PayerOption{
				ID:       m.User.ID,
				Name:     m.User.Name,
				Selected: m.User.ID == d.payerID,
			}
		}
	}
	return ExpenseDialogView{
		Open:        d.open,
		Amount:      d.amount,
		Description: d.description,
		PayerID:     d.payerID,
		MagicText:   d.magicText,
		LoadingAI:   d.loadingAI,
		CanParse:    !d.loadingAI && d.magicText != "",
		Payers:      payers,
		Alert:       d.alert,
	}
}
