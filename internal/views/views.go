// Package views holds the page and dialog controllers shared by the web and
// terminal front ends.
//
// A controller owns the local state of one page or dialog, talks to the API
// through a narrow interface and exposes a plain View() snapshot for the
// renderer. After any successful mutation the owning page refetches all of
// its data; nothing is patched in place.
package views

import (
	"context"
	"errors"

	"github.com/mmynk/splitmint/internal/api"
	"github.com/mmynk/splitmint/internal/models"
)

// Messages shown to the user when an action fails.
const (
	AlertCreateGroup = "Failed to create group"
	AlertAddMember   = "Failed to add member. If using email, ensure the user exists."
	AlertParse       = "Failed to parse with MintSense"
	AlertAddExpense  = "Failed to add expense"

	ErrorLogin    = "Invalid credentials or server error"
	ErrorRegister = "Registration failed"

	NoSettlementsMessage = "No debts to settle."
)

// ErrIncomplete is returned when a form is submitted with a required field
// empty. No request is sent.
var ErrIncomplete = errors.New("required fields are missing")

// ErrInvalidAmount is returned when the expense amount is not a number. The
// dialog shows the add-expense alert and sends nothing.
var ErrInvalidAmount = errors.New("amount is not a number")

// ErrNoGroup is returned by the expense dialog before a group is bound.
var ErrNoGroup = errors.New("no group loaded")

// SessionState is the read side of the session.
type SessionState interface {
	IsAuthenticated() bool
	IsLoading() bool
	UserEmail() string
}

// GroupsAPI lists and creates groups.
type GroupsAPI interface {
	ListGroups(ctx context.Context) ([]models.Group, error)
	CreateGroup(ctx context.Context, name string) (*models.Group, error)
}

// MemberAPI adds members to a group.
type MemberAPI interface {
	AddMember(ctx context.Context, groupID string, req api.AddMemberRequest) error
}

// ExpenseAPI creates and parses expenses.
type ExpenseAPI interface {
	CreateExpense(ctx context.Context, req api.CreateExpenseRequest) (*models.Expense, error)
	ParseExpense(ctx context.Context, req api.ParseExpenseRequest) (*models.ParsedExpense, error)
}

// GroupDetailAPI is everything the group detail page and its dialogs call.
type GroupDetailAPI interface {
	MemberAPI
	ExpenseAPI
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListExpenses(ctx context.Context, groupID string) ([]models.Expense, error)
	GetBalances(ctx context.Context, groupID string) (*models.BalanceResponse, error)
}

// AuthAPI signs users in and up.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, req api.RegisterRequest) (*models.User, error)
}

// SessionLogin hands a fresh token to the session.
type SessionLogin interface {
	Login(ctx context.Context, token, email string) error
}

var (
	_ GroupsAPI      = (*api.Client)(nil)
	_ GroupDetailAPI = (*api.Client)(nil)
	_ AuthAPI        = (*api.Client)(nil)
)
