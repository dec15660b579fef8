package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rvasani/lenden/internal/accounts"
	"github.com/rvasani/lenden/internal/models"
)

func (a *App) requireLogin() bool {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please log in first.")
		return false
	}
	return true
}

// balanceLabel renders a balance as its display status plus the grouped
// absolute amount. Settled accounts show just "Clear".
func (a *App) balanceLabel(acc models.Account) string {
	status := models.ClassifyBalance(acc.Balance)
	if status == models.StatusClear {
		return string(status)
	}
	return fmt.Sprintf("%s %s", status, a.amounts.Format(acc.Balance))
}

// renderAccounts prints the listing and remembers it so follow-up commands
// can select an account by number.
func (a *App) renderAccounts(list []models.Account) {
	a.listed = list
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No accounts yet. Use 'add' to create one.")
		return
	}
	for i, acc := range list {
		fmt.Fprintf(a.out, "%2d) %-20s %-12s %s\n", i+1, acc.Name, acc.Phone, a.balanceLabel(acc))
	}
}

// selectAccount prompts for a number from the last printed listing.
func (a *App) selectAccount(prompt string) (*models.Account, error) {
	if len(a.listed) == 0 {
		return nil, fmt.Errorf("no accounts listed; run 'list' first")
	}
	got, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(got)
	if err != nil || n < 1 || n > len(a.listed) {
		return nil, fmt.Errorf("pick a number between 1 and %d", len(a.listed))
	}
	acc := a.listed[n-1]
	return &acc, nil
}

// ListAccounts fetches the account listing from the server and prints it.
func (a *App) ListAccounts(ctx context.Context) error {
	if !a.requireLogin() {
		return nil
	}
	list, err := a.registry.List(ctx)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	a.renderAccounts(list)
	return nil
}

// SearchAccounts filters the cached listing by name or phone substring.
// No network: search narrows what is already on screen.
func (a *App) SearchAccounts(ctx context.Context) error {
	if !a.requireLogin() {
		return nil
	}
	query, err := getSimpleText(a.reader, "Search by name or phone", a.out)
	if err != nil {
		return err
	}
	a.renderAccounts(accounts.Filter(a.registry.Cached(), query))
	return nil
}

// AddAccount prompts for the new counterparty's details and creates it.
func (a *App) AddAccount(ctx context.Context) error {
	if !a.requireLogin() {
		return nil
	}
	name, err := getSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Phone (10 digits, optional)", a.out)
	if err != nil {
		return err
	}

	acc, err := a.registry.Create(ctx, name, phone)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	fmt.Fprintf(a.out, "Added %s.\n", acc.Name)
	a.renderAccounts(a.registry.Cached())
	return nil
}

// EditAccount updates a selected account's name and phone. Empty answers
// keep the current values.
func (a *App) EditAccount(ctx context.Context) error {
	if !a.requireLogin() {
		return nil
	}
	acc, err := a.selectAccount("Edit which account?")
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	name, err := GetOptionalText(a.reader, "Name", acc.Name, a.out)
	if err != nil {
		return err
	}
	phone, err := GetOptionalText(a.reader, "Phone", acc.Phone, a.out)
	if err != nil {
		return err
	}

	updated, err := a.registry.Update(ctx, acc.ID, name, phone)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	fmt.Fprintf(a.out, "Updated %s.\n", updated.Name)
	a.renderAccounts(a.registry.Cached())
	return nil
}

// DeleteAccount parks the deletion behind the confirmation gate; nothing
// happens until the user answers 'yes'.
func (a *App) DeleteAccount(ctx context.Context) error {
	if !a.requireLogin() {
		return nil
	}
	acc, err := a.selectAccount("Delete which account?")
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	id, name := acc.ID, acc.Name
	a.gate.Request(fmt.Sprintf("delete account %s and all its entries", name), func(ctx context.Context) error {
		if err := a.registry.Delete(ctx, id); err != nil {
			return err
		}
		if a.current != nil && a.current.ID == id {
			a.current = nil
			a.ledger.CloseView()
		}
		fmt.Fprintf(a.out, "Deleted %s.\n", name)
		a.renderAccounts(a.registry.Cached())
		return nil
	})
	fmt.Fprintf(a.out, "About to delete account %s and all its entries. Type 'yes' to confirm or 'no' to cancel.\n", name)
	return nil
}

// OpenAccount switches to the detail view of the selected account.
func (a *App) OpenAccount(ctx context.Context) error {
	if !a.requireLogin() {
		return nil
	}
	acc, err := a.selectAccount("Open which account?")
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	a.current = acc
	a.ledger.OpenView(acc.ID)
	fmt.Fprintf(a.out, "%s  %s\n", acc.Name, a.balanceLabel(*acc))
	return a.ShowEntries(ctx)
}

// CloseAccount leaves the detail view.
func (a *App) CloseAccount(ctx context.Context) error {
	if a.current == nil {
		return nil
	}
	a.current = nil
	a.shown = nil
	a.ledger.CloseView()
	return a.ListAccounts(ctx)
}

// Confirm runs whatever destructive action is pending at the gate.
func (a *App) Confirm(ctx context.Context) error {
	if err := a.gate.Confirm(ctx); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	return nil
}

// Cancel drops the pending action, if any.
func (a *App) Cancel(ctx context.Context) error {
	if a.gate.Cancel() {
		fmt.Fprintln(a.out, "Cancelled.")
	}
	return nil
}
