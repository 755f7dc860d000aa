package views

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/mmynk/splitmint/internal/models"
)

// Phase is the group detail page lifecycle.
type Phase int

const (
	PhaseUnloaded Phase = iota
	PhaseLoading
	PhaseLoaded
)

func (p Phase) String() string {
	switch p {
	case PhaseUnloaded:
		return "unloaded"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// MemberRow is one entry of the members card.
type MemberRow struct {
	ID      string
	Initial string
	Name    string
	Email   string
}

// BalanceRow is one entry of the balance list.
type BalanceRow struct {
	UserID   string
	Name     string
	Amount   string
	Positive bool
	Class    string
}

// SettlementRow is one suggested transfer.
type SettlementRow struct {
	From   string
	To     string
	Amount string
}

// String renders the row as "From → To: 0.00".
func (r SettlementRow) String() string {
	return r.From + " → " + r.To + ": " + r.Amount
}

// ExpenseRow is one line of the expenses table.
type ExpenseRow struct {
	ID          string
	Date        string
	Description string
	Payer       string
	Amount      string
	SplitType   string
}

// GroupDetailView is the renderable state of the group detail page.
type GroupDetailView struct {
	GroupID string
	Phase   Phase

	// Ready is false until the group itself has been fetched once.
	Ready bool
	Name  string

	Members []MemberRow

	// HasBalances is false until the balances have been fetched once.
	HasBalances   bool
	Balances      []BalanceRow
	Chart         BalanceChart
	Settlements   []SettlementRow
	NoSettlements bool

	Expenses []ExpenseRow

	MemberDialog  MemberDialogView
	ExpenseDialog ExpenseDialogView
}

// GroupDetailPage shows one group with its balances, settlements and
// expenses, and owns the add-member and add-expense dialogs.
type GroupDetailPage struct {
	api GroupDetailAPI

	// Both dialogs refresh the whole page after a successful mutation.
	MemberDialog  *AddMemberDialog
	ExpenseDialog *AddExpenseDialog

	mu       sync.Mutex
	groupID  string
	phase    Phase
	group    *models.Group
	lookup   models.UserLookup
	expenses []models.Expense
	balances *models.BalanceResponse
}

// NewGroupDetailPage creates the page controller and its dialogs.
func NewGroupDetailPage(api GroupDetailAPI) *GroupDetailPage {
	p := &GroupDetailPage{api: api, lookup: models.NewUserLookup(nil)}
	p.MemberDialog = NewAddMemberDialog(api, p.Refresh)
	p.ExpenseDialog = NewAddExpenseDialog(api, p.Refresh)
	return p
}

// Load points the page at groupID and fetches everything.
func (p *GroupDetailPage) Load(ctx context.Context, groupID string) error {
	p.mu.Lock()
	p.groupID = groupID
	p.mu.Unlock()
	p.MemberDialog.bind(groupID)
	return p.Refresh(ctx)
}

// Refresh refetches the group, its expenses and its balances. The three
// requests are independent: each failure is logged and leaves that part at
// its last known state while the others still update. The returned error
// joins every failure.
func (p *GroupDetailPage) Refresh(ctx context.Context) error {
	p.mu.Lock()
	groupID := p.groupID
	if groupID == "" {
		p.mu.Unlock()
		return nil
	}
	p.phase = PhaseLoading
	p.mu.Unlock()

	var groupErr, expensesErr, balanceErr error
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		groupErr = p.fetchGroup(ctx, groupID)
	}()
	go func() {
		defer wg.Done()
		expensesErr = p.fetchExpenses(ctx, groupID)
	}()
	go func() {
		defer wg.Done()
		balanceErr = p.fetchBalances(ctx, groupID)
	}()
	wg.Wait()

	p.mu.Lock()
	p.phase = PhaseLoaded
	p.mu.Unlock()

	return errors.Join(groupErr, expensesErr, balanceErr)
}

func (p *GroupDetailPage) fetchGroup(ctx context.Context, groupID string) error {
	group, err := p.api.GetGroup(ctx, groupID)
	if err != nil {
		slog.Error("Failed to fetch group", "group_id", groupID, "error", err)
		return fmt.Errorf("failed to fetch group: %w", err)
	}

	// The lookup table is rebuilt in full on every successful fetch.
	lookup := models.NewUserLookup(group)

	p.mu.Lock()
	p.group = group
	p.lookup = lookup
	p.mu.Unlock()

	p.ExpenseDialog.Bind(group, lookup)
	return nil
}

func (p *GroupDetailPage) fetchExpenses(ctx context.Context, groupID string) error {
	expenses, err := p.api.ListExpenses(ctx, groupID)
	if err != nil {
		slog.Error("Failed to fetch expenses", "group_id", groupID, "error", err)
		return fmt.Errorf("failed to fetch expenses: %w", err)
	}
	p.mu.Lock()
	p.expenses = expenses
	p.mu.Unlock()
	return nil
}

func (p *GroupDetailPage) fetchBalances(ctx context.Context, groupID string) error {
	balances, err := p.api.GetBalances(ctx, groupID)
	if err != nil {
		slog.Error("Failed to fetch balances", "group_id", groupID, "error", err)
		return fmt.Errorf("failed to fetch balances: %w", err)
	}
	p.mu.Lock()
	p.balances = balances
	p.mu.Unlock()
	return nil
}

// Phase returns the current lifecycle phase.
func (p *GroupDetailPage) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// Lookup returns the current user ID to name table.
func (p *GroupDetailPage) Lookup() models.UserLookup {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lookup
}

// View returns a snapshot for rendering.
func (p *GroupDetailPage) View() GroupDetailView {
	p.mu.Lock()
	v := GroupDetailView{GroupID: p.groupID, Phase: p.phase}
	group, lookup := p.group, p.lookup
	expenses := slices.Clone(p.expenses)
	balances := p.balances
	p.mu.Unlock()

	v.MemberDialog = p.MemberDialog.View()
	v.ExpenseDialog = p.ExpenseDialog.View()

	if group != nil {
		v.Ready = true
		v.Name = group.Name
		v.Members = make([]MemberRow, len(group.Members))
		for i, m := range group.Members {
			v.Members[i] = MemberRow{
				ID:      m.User.ID,
				Initial: m.User.Initial(),
				Name:    m.User.Name,
				Email:   m.User.Email,
			}
		}
	}

	if balances != nil {
		v.HasBalances = true
		for _, e := range balances.Balances.Entries() {
			v.Balances = append(v.Balances, BalanceRow{
				UserID:   e.UserID,
				Name:     lookup.NameOrID(e.UserID),
				Amount:   e.Amount.Signed(),
				Positive: IsPositive(e.Amount),
				Class:    BalanceClass(e.Amount),
			})
		}
		v.Chart = NewBalanceChart(balances.Balances, lookup)
		for _, s := range balances.Settlements {
			v.Settlements = append(v.Settlements, SettlementRow{
				From:   lookup.NameOrID(s.From),
				To:     lookup.NameOrID(s.To),
				Amount: s.Amount.Fixed(),
			})
		}
		v.NoSettlements = len(balances.Settlements) == 0
	}

	v.Expenses = make([]ExpenseRow, len(expenses))
	for i, e := range expenses {
		v.Expenses[i] = ExpenseRow{
			ID:          e.ID,
			Date:        FormatDate(e.Date),
			Description: e.Description,
			Payer:       lookup.NameOrUnknown(e.PayerID),
			Amount:      e.Amount.Fixed(),
			SplitType:   string(e.SplitType),
		}
	}
	return v
}
