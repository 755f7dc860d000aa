package main

import (
	"context"
	"errors"
	"strings"

	"github.com/mmynk/splitmint/internal/models"
	"github.com/mmynk/splitmint/internal/views"
)

func (a *app) addExpense(ctx context.Context, args []string) error {
	fs := a.newFlagSet("add-expense")
	amount := fs.String("amount", "", "total amount")
	description := fs.String("description", "", "what it was for")
	payer := fs.String("payer", "", "payer name or user id")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return errors.New("add-expense requires a group id")
	}

	page, err := a.loadGroup(ctx, positional[0])
	if err != nil {
		return err
	}
	d := page.ExpenseDialog
	d.Show()
	d.SetAmount(*amount)
	d.SetDescription(*description)
	d.SetPayer(resolvePayer(page.Lookup(), *payer))

	if err := a.submitExpense(ctx, d); err != nil {
		return err
	}
	a.println(a.ui.GroupDetail(page.View()))
	return nil
}

func (a *app) parse(ctx context.Context, args []string) error {
	fs := a.newFlagSet("parse")
	submit := fs.Bool("submit", false, "add the parsed expense")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) < 2 {
		return errors.New("parse requires a group id and text")
	}

	page, err := a.loadGroup(ctx, positional[0])
	if err != nil {
		return err
	}
	d := page.ExpenseDialog
	d.Show()
	d.SetMagicText(strings.Join(positional[1:], " "))
	if err := d.ParseWithMintSense(ctx); err != nil {
		if alert := d.View().Alert; alert != "" {
			return errors.New(alert)
		}
		return err
	}

	v := d.View()
	payerName := ""
	for _, p := range v.Payers {
		if p.Selected {
			payerName = p.Name
		}
	}
	a.println("Amount:      " + v.Amount)
	a.println("Description: " + v.Description)
	a.println("Paid by:     " + payerName)

	if !*submit {
		return nil
	}
	if err := a.submitExpense(ctx, d); err != nil {
		return err
	}
	a.println("")
	a.println(a.ui.GroupDetail(page.View()))
	return nil
}

func (a *app) submitExpense(ctx context.Context, d *views.AddExpenseDialog) error {
	err := d.Submit(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, views.ErrIncomplete):
		return errors.New("amount, description and payer are required")
	}
	if alert := d.View().Alert; alert != "" {
		return errors.New(alert)
	}
	return err
}

// resolvePayer accepts a member name (case-insensitive) or a user id.
func resolvePayer(lookup models.UserLookup, payer string) string {
	if id, ok := lookup.FindByName(payer); ok {
		return id
	}
	return payer
}
