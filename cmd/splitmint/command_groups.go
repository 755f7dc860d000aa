package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/splitmint/internal/session"
	"github.com/mmynk/splitmint/internal/views"
)

func (a *app) groups(ctx context.Context, args []string) error {
	fs := a.newFlagSet("groups")
	if err := fs.Parse(args); err != nil {
		return err
	}

	page := views.NewGroupsPage(a.client, a.session, a.nav)
	page.Mount(ctx)
	if a.nav.target() == session.RouteLogin {
		return errNotSignedIn
	}
	a.println(a.ui.Groups(page.View()))
	return nil
}

func (a *app) createGroup(ctx context.Context, args []string) error {
	fs := a.newFlagSet("create-group")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name := strings.Join(fs.Args(), " ")
	if name == "" {
		return errors.New("create-group requires a name")
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	page := views.NewGroupsPage(a.client, a.session, a.nav)
	if err := page.CreateGroup(ctx, name); err != nil {
		return errors.New(page.View().Alert)
	}
	a.println(a.ui.Groups(page.View()))
	return nil
}

func (a *app) show(ctx context.Context, args []string) error {
	fs := a.newFlagSet("show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("show requires a group id")
	}
	page, err := a.loadGroup(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	a.println(a.ui.GroupDetail(page.View()))
	return nil
}

func (a *app) addMember(ctx context.Context, args []string) error {
	fs := a.newFlagSet("add-member")
	name := fs.String("name", "", "display name of a new placeholder member")
	email := fs.String("email", "", "email of an existing user")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return errors.New("add-member requires a group id")
	}
	if (*name == "") == (*email == "") {
		return errors.New("add-member requires exactly one of --name or --email")
	}

	page, err := a.loadGroup(ctx, positional[0])
	if err != nil {
		return err
	}
	d := page.MemberDialog
	d.Show()
	if *email != "" {
		d.SelectTab(views.MemberTabEmail)
		d.SetEmail(*email)
	} else {
		d.SelectTab(views.MemberTabName)
		d.SetName(*name)
	}
	if err := d.Submit(ctx); err != nil {
		if alert := d.View().Alert; alert != "" {
			return errors.New(alert)
		}
		return err
	}
	a.println(a.ui.GroupDetail(page.View()))
	return nil
}

// loadGroup fetches a group page. Only a missing group is an error; other
// partial failures are reported and the page is still shown.
func (a *app) loadGroup(ctx context.Context, groupID string) (*views.GroupDetailPage, error) {
	if err := a.requireSession(); err != nil {
		return nil, err
	}
	page := views.NewGroupDetailPage(a.client)
	err := page.Load(ctx, groupID)
	if err == nil {
		return page, nil
	}
	if !page.View().Ready {
		return nil, fmt.Errorf("failed to load group %s: %w", groupID, err)
	}
	slog.Warn("Group partially loaded", "group_id", groupID, "error", err)
	return page, nil
}
