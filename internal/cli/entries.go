package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rvasani/lenden/internal/models"
)

func (a *App) requireOpen() bool {
	if !a.requireLogin() {
		return false
	}
	if a.current == nil {
		fmt.Fprintln(a.out, "Open an account first.")
		return false
	}
	return true
}

// refreshCurrent re-reads the open account from the registry cache, which
// the ledger's change event keeps up to date after every mutation.
func (a *App) refreshCurrent() {
	if a.current == nil {
		return
	}
	for _, acc := range a.registry.Cached() {
		if acc.ID == a.current.ID {
			acc := acc
			a.current = &acc
			return
		}
	}
}

func (a *App) renderEntries(list []models.Entry) {
	a.shown = list
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No entries.")
		return
	}
	for i, e := range list {
		reason := e.Reason
		if reason == "" {
			reason = "-"
		}
		fmt.Fprintf(a.out, "%2d) %s  %s %-12s %s\n", i+1, e.CalendarDate(), e.Type.Marker(), a.amounts.Format(e.Amount), reason)
	}
}

func (a *App) selectEntry(prompt string) (*models.Entry, error) {
	if len(a.shown) == 0 {
		return nil, fmt.Errorf("no entries listed; run 'entries' first")
	}
	got, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(got)
	if err != nil || n < 1 || n > len(a.shown) {
		return nil, fmt.Errorf("pick a number between 1 and %d", len(a.shown))
	}
	e := a.shown[n-1]
	return &e, nil
}

// AddEntry records money given to or received from the open account.
func (a *App) AddEntry(ctx context.Context, given bool) error {
	if !a.requireOpen() {
		return nil
	}

	amount, err := GetAmount(a.reader, "Amount", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	date, err := GetDate(a.reader, "Date", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	reason, err := getSimpleText(a.reader, "Reason (optional)", a.out)
	if err != nil {
		return err
	}

	entryType := models.EntryReceived
	if given {
		entryType = models.EntryGiven
	}

	if err := a.ledger.Create(ctx, a.current.ID, entryType, amount, date, reason); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	a.refreshCurrent()
	fmt.Fprintf(a.out, "%s  %s\n", a.current.Name, a.balanceLabel(*a.current))
	a.renderEntries(a.ledger.Current())
	return nil
}

// ShowEntries fetches and prints the open account's entries, newest first.
func (a *App) ShowEntries(ctx context.Context) error {
	if !a.requireOpen() {
		return nil
	}
	list, err := a.ledger.List(ctx, a.current.ID)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	a.renderEntries(list)
	return nil
}

// ShowEntry prints one entry's full detail.
func (a *App) ShowEntry(ctx context.Context) error {
	if !a.requireOpen() {
		return nil
	}
	sel, err := a.selectEntry("Show which entry?")
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	e, err := a.ledger.Get(ctx, sel.ID)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	fmt.Fprintf(a.out, "Date:   %s\n", e.CalendarDate())
	fmt.Fprintf(a.out, "Type:   %s\n", e.Type)
	fmt.Fprintf(a.out, "Amount: %s\n", a.amounts.Format(e.Amount))
	if e.Reason != "" {
		fmt.Fprintf(a.out, "Reason: %s\n", e.Reason)
	}
	return nil
}

// EditEntry re-prompts every field of a selected entry, pre-filled with its
// stored values, and submits the update.
func (a *App) EditEntry(ctx context.Context) error {
	if !a.requireOpen() {
		return nil
	}
	sel, err := a.selectEntry("Edit which entry?")
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	e, err := a.ledger.Get(ctx, sel.ID)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	typeText, err := GetOptionalText(a.reader, "Type (given/received)", string(e.Type), a.out)
	if err != nil {
		return err
	}
	entryType := models.EntryType(typeText)

	amountText, err := GetOptionalText(a.reader, "Amount", e.Amount.String(), a.out)
	if err != nil {
		return err
	}
	amount, perr := decimalFromInput(amountText)
	if perr != nil {
		fmt.Fprintln(a.out, perr.Error())
		return perr
	}

	dateText, err := GetOptionalText(a.reader, "Date (YYYY-MM-DD)", e.CalendarDate(), a.out)
	if err != nil {
		return err
	}
	date, perr := dateFromInput(dateText)
	if perr != nil {
		fmt.Fprintln(a.out, perr.Error())
		return perr
	}

	reason, err := GetOptionalText(a.reader, "Reason", e.Reason, a.out)
	if err != nil {
		return err
	}

	if err := a.ledger.Update(ctx, e.ID, a.current.ID, entryType, amount, date, reason); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	a.refreshCurrent()
	fmt.Fprintf(a.out, "%s  %s\n", a.current.Name, a.balanceLabel(*a.current))
	a.renderEntries(a.ledger.Current())
	return nil
}

// DeleteEntry parks an entry deletion behind the confirmation gate.
func (a *App) DeleteEntry(ctx context.Context) error {
	if !a.requireOpen() {
		return nil
	}
	sel, err := a.selectEntry("Delete which entry?")
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	entryID, accountID := sel.ID, a.current.ID
	label := fmt.Sprintf("delete entry of %s on %s", a.amounts.Format(sel.Amount), sel.CalendarDate())
	a.gate.Request(label, func(ctx context.Context) error {
		if err := a.ledger.Delete(ctx, entryID, accountID); err != nil {
			return err
		}
		a.refreshCurrent()
		if a.current != nil {
			fmt.Fprintf(a.out, "%s  %s\n", a.current.Name, a.balanceLabel(*a.current))
		}
		a.renderEntries(a.ledger.Current())
		return nil
	})
	fmt.Fprintf(a.out, "About to %s. Type 'yes' to confirm or 'no' to cancel.\n", label)
	return nil
}

// EntriesInRange prints the open account's entries between two dates.
func (a *App) EntriesInRange(ctx context.Context) error {
	if !a.requireOpen() {
		return nil
	}
	from, err := GetDate(a.reader, "From", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	to, err := GetDate(a.reader, "To", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	list, err := a.ledger.ListByDateRange(ctx, a.current.ID, from, to)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	a.renderEntries(list)
	return nil
}

// History prints every entry across all accounts, newest first, with the
// counterparty name resolved from the registry cache.
func (a *App) History(ctx context.Context) error {
	if !a.requireLogin() {
		return nil
	}
	list, err := a.ledger.ListAll(ctx)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	a.renderHistory(list)
	return nil
}

// Recent prints the latest entries across all accounts.
func (a *App) Recent(ctx context.Context) error {
	if !a.requireLogin() {
		return nil
	}
	list, err := a.ledger.ListAll(ctx)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	if len(list) > recentLimit {
		list = list[:recentLimit]
	}
	a.renderHistory(list)
	return nil
}

const recentLimit = 10

func (a *App) renderHistory(list []models.Entry) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No entries.")
		return
	}
	names := map[string]string{}
	for _, acc := range a.registry.Cached() {
		names[acc.ID] = acc.Name
	}
	for _, e := range list {
		name := names[e.AccountID]
		if name == "" {
			name = e.AccountID
		}
		fmt.Fprintf(a.out, "%s  %s %-12s %-20s %s\n", e.CalendarDate(), e.Type.Marker(), a.amounts.Format(e.Amount), name, e.Reason)
	}
}
