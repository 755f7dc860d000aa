package views

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmynk/splitmint/internal/api"
)

// MemberTab selects how a member is added.
type MemberTab string

const (
	// MemberTabName creates a placeholder user that cannot log in.
	MemberTabName MemberTab = "name"
	// MemberTabEmail attaches an existing registered user.
	MemberTabEmail MemberTab = "email"
)

// ParseMemberTab maps a form value to a tab, defaulting to MemberTabName.
func ParseMemberTab(s string) MemberTab {
	if MemberTab(s) == MemberTabEmail {
		return MemberTabEmail
	}
	return MemberTabName
}

// MemberDialogView is the renderable state of the add-member dialog.
type MemberDialogView struct {
	Open    bool
	Tab     MemberTab
	Name    string
	Email   string
	Loading bool
	Alert   string
}

// AddMemberDialog adds a member by name or by email.
type AddMemberDialog struct {
	api     MemberAPI
	onAdded func(context.Context) error

	mu      sync.Mutex
	groupID string
	open    bool
	tab     MemberTab
	name    string
	email   string
	loading bool
	alert   string
}

// NewAddMemberDialog creates the dialog. onAdded runs after every
// successful add.
func NewAddMemberDialog(api MemberAPI, onAdded func(context.Context) error) *AddMemberDialog {
	return &AddMemberDialog{api: api, onAdded: onAdded, tab: MemberTabName}
}

func (d *AddMemberDialog) bind(groupID string) {
	d.mu.Lock()
	d.groupID = groupID
	d.mu.Unlock()
}

// Show opens the dialog.
func (d *AddMemberDialog) Show() {
	d.mu.Lock()
	d.open = true
	d.mu.Unlock()
}

// Hide closes the dialog, keeping entered values.
func (d *AddMemberDialog) Hide() {
	d.mu.Lock()
	d.open = false
	d.mu.Unlock()
}

// SelectTab switches the entry mode. Both fields keep their values.
func (d *AddMemberDialog) SelectTab(tab MemberTab) {
	d.mu.Lock()
	d.tab = tab
	d.mu.Unlock()
}

// SetName sets the name field.
func (d *AddMemberDialog) SetName(name string) {
	d.mu.Lock()
	d.name = name
	d.mu.Unlock()
}

// SetEmail sets the email field.
func (d *AddMemberDialog) SetEmail(email string) {
	d.mu.Lock()
	d.email = email
	d.mu.Unlock()
}

// DismissAlert clears the pending alert.
func (d *AddMemberDialog) DismissAlert() {
	d.mu.Lock()
	d.alert = ""
	d.mu.Unlock()
}

// Submit sends the field for the active tab only. The required check is
// scoped to that tab. On success the dialog closes, both fields reset and
// onAdded runs; on failure the dialog stays open with its values and an
// alert.
func (d *AddMemberDialog) Submit(ctx context.Context) error {
	d.mu.Lock()
	tab := d.tab
	var req api.AddMemberRequest
	switch tab {
	case MemberTabEmail:
		req.Email = d.email
	default:
		req.Name = d.name
	}
	if req.Name == "" && req.Email == "" {
		d.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrIncomplete, tab)
	}
	groupID := d.groupID
	d.loading = true
	d.alert = ""
	d.mu.Unlock()

	err := d.api.AddMember(ctx, groupID, req)

	d.mu.Lock()
	d.loading = false
	if err != nil {
		d.alert = AlertAddMember
		d.mu.Unlock()
		slog.Error("Failed to add member", "group_id", groupID, "tab", string(tab), "error", err)
		return fmt.Errorf("failed to add member: %w", err)
	}
	d.open = false
	d.name = ""
	d.email = ""
	d.mu.Unlock()

	slog.Info("Member added", "group_id", groupID)
	if d.onAdded != nil {
		// The page refresh logs each failed fetch itself.
		_ = d.onAdded(ctx)
	}
	return nil
}

// View returns a snapshot for rendering.
func (d *AddMemberDialog) View() MemberDialogView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return MemberDialogView{
		Open:    d.open,
		Tab:     d.tab,
		Name:    d.name,
		Email:   d.email,
		Loading: d.loading,
		Alert:   d.alert,
	}
}
