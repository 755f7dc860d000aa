package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/splitmint/internal/views"
)

func (a *app) login(ctx context.Context, args []string) error {
	return a.authenticate(ctx, "login", views.LoginTabLogin, args)
}

func (a *app) register(ctx context.Context, args []string) error {
	return a.authenticate(ctx, "register", views.LoginTabRegister, args)
}

// authenticate drives the login page the same way the web form does. The
// page's message becomes the command error.
func (a *app) authenticate(ctx context.Context, name string, tab views.LoginTab, args []string) error {
	fs := a.newFlagSet(name)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (default $"+envPassword+")")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pw := passwordOrEnv(*password)
	if *email == "" || pw == "" {
		return fmt.Errorf("%s requires --email and --password", name)
	}

	page := views.NewLoginPage(a.client, a.session)
	page.SelectTab(tab)
	page.SetCredentials(*email, pw)

	submit := page.SubmitLogin
	if tab == views.LoginTabRegister {
		submit = page.SubmitRegister
	}
	if err := submit(ctx); err != nil {
		return errors.New(page.View().Error)
	}

	a.println("Signed in as " + a.session.UserEmail())
	return nil
}

func (a *app) logout(ctx context.Context, args []string) error {
	fs := a.newFlagSet("logout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	a.println("Signed out")
	return nil
}

func (a *app) whoami(_ context.Context, args []string) error {
	fs := a.newFlagSet("whoami")
	if err := fs.Parse(args); err != nil {
		return err
	}
	a.println(a.ui.Navbar(views.NewNavbar(a.session)))
	return nil
}
