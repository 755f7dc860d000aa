package views

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/mmynk/splitmint/internal/session"
)

// GroupCard is one entry of the groups list.
type GroupCard struct {
	ID          string
	Name        string
	MemberCount int
	Href        string
}

// GroupsView is the renderable state of the groups list.
type GroupsView struct {
	Cards []GroupCard
	Alert string
}

// GroupsPage lists the caller's groups and creates new ones.
type GroupsPage struct {
	api     GroupsAPI
	session SessionState
	nav     session.Navigator

	mu     sync.Mutex
	groups []GroupCard
	alert  string
}

// NewGroupsPage creates the groups list controller.
func NewGroupsPage(api GroupsAPI, sess SessionState, nav session.Navigator) *GroupsPage {
	return &GroupsPage{api: api, session: sess, nav: nav}
}

// Mount runs the page's entry check. Nothing happens while the session is
// still hydrating; a signed-out user is sent to the login view; otherwise
// the list is fetched from scratch, so a failed fetch leaves it empty.
func (p *GroupsPage) Mount(ctx context.Context) {
	if p.session.IsLoading() {
		return
	}
	p.mu.Lock()
	p.groups = nil
	p.mu.Unlock()
	if !p.session.IsAuthenticated() {
		p.nav.Navigate(ctx, session.RouteLogin)
		return
	}
	// Refresh logs its own failure.
	_ = p.Refresh(ctx)
}

// Refresh refetches the list. A failure is logged and the previous list is
// kept.
func (p *GroupsPage) Refresh(ctx context.Context) error {
	groups, err := p.api.ListGroups(ctx)
	if err != nil {
		slog.Error("Failed to fetch groups", "error", err)
		return fmt.Errorf("failed to fetch groups: %w", err)
	}

	cards := make([]GroupCard, len(groups))
	for i, g := range groups {
		cards[i] = GroupCard{
			ID:          g.ID,
			Name:        g.Name,
			MemberCount: len(g.Members),
			Href:        session.RouteGroups + "/" + g.ID,
		}
	}

	p.mu.Lock()
	p.groups = cards
	p.mu.Unlock()
	return nil
}

// CreateGroup creates a group named name and refetches the list. An empty
// name is a no-op.
func (p *GroupsPage) CreateGroup(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	p.DismissAlert()

	if _, err := p.api.CreateGroup(ctx, name); err != nil {
		slog.Error("Failed to create group", "name", name, "error", err)
		p.mu.Lock()
		p.alert = AlertCreateGroup
		p.mu.Unlock()
		return fmt.Errorf("failed to create group: %w", err)
	}

	slog.Info("Group created", "name", name)
	return p.Refresh(ctx)
}

// DismissAlert clears the pending alert.
func (p *GroupsPage) DismissAlert() {
	p.mu.Lock()
	p.alert = ""
	p.mu.Unlock()
}

// View returns a snapshot for rendering.
func (p *GroupsPage) View() GroupsView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return GroupsView{
		Cards: slices.Clone(p.groups),
		Alert: p.alert,
	}
}
