// Package entries manages the per-account ordered collection of cash
// entries. Every successful mutation triggers a dual re-fetch: the entry
// list is reloaded and an "entries changed" event is published, which the
// account registry answers with a balance re-fetch. The account balance is
// never derived locally from the entry set.
package entries

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rvasani/lenden/internal/api"
	"github.com/rvasani/lenden/internal/common"
	"github.com/rvasani/lenden/internal/logging"
	"github.com/rvasani/lenden/internal/models"
)

// Gateway is the slice of the request gateway the ledger needs.
type Gateway interface {
	Do(ctx context.Context, spec api.Spec, body any) (*api.Envelope, error)
}

// ChangedFunc is notified after every successful entry mutation for the
// given account. The account registry subscribes with its balance refresh.
type ChangedFunc func(ctx context.Context, accountID string) error

// Ledger holds the entries of the currently open account view.
type Ledger struct {
	mu      sync.Mutex
	account string // account of the open view, "" when none
	gen     uint64 // bumped on OpenView/CloseView; guards stale responses
	entries []models.Entry

	subs []ChangedFunc

	gw  Gateway
	log logging.Logger
}

func NewLedger(gw Gateway, log logging.Logger) *Ledger {
	return &Ledger{gw: gw, log: log.With("component", "entries")}
}

// Subscribe registers a change listener. Wiring happens once at startup;
// listeners run on the mutating goroutine.
func (l *Ledger) Subscribe(fn ChangedFunc) {
	l.subs = append(l.subs, fn)
}

// OpenView makes accountID the current detail view. Responses belonging to
// a previously open view will not be applied.
func (l *Ledger) OpenView(accountID string) {
	l.mu.Lock()
	l.account = accountID
	l.gen++
	l.entries = nil
	l.mu.Unlock()
}

// CloseView tears the detail view down.
func (l *Ledger) CloseView() {
	l.mu.Lock()
	l.account = ""
	l.gen++
	l.entries = nil
	l.mu.Unlock()
}

// Current returns a copy of the open view's entries.
func (l *Ledger) Current() []models.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) snapshot() (string, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.account, l.gen
}

// sortEntries orders by transaction date descending, breaking ties by the
// server creation timestamp descending. Stable for equal keys.
func sortEntries(entries []models.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

// List fetches all entries for the account, sorted. When the account is the
// open view and the view has not been torn down meanwhile, the view state
// is updated too.
func (l *Ledger) List(ctx context.Context, accountID string) ([]models.Entry, error) {
	_, gen := l.snapshot()

	env, err := l.gw.Do(ctx, api.EntriesByAccount.WithID(accountID), nil)
	if err != nil {
		return nil, errors.New("Failed to fetch entries")
	}
	if !env.OK() {
		return nil, errors.New(env.FailureMessage("Failed to fetch entries"))
	}

	var list []models.Entry
	if err := env.Decode(&list); err != nil {
		return nil, errors.New("Failed to fetch entries")
	}
	sortEntries(list)

	l.mu.Lock()
	if l.gen == gen && l.account == accountID {
		l.entries = list
	} else {
		l.log.Debug(ctx, "dropping stale entry list", "account", accountID)
	}
	l.mu.Unlock()
	return list, nil
}

// validate checks entry fields locally, before any network call.
func validate(entryType models.EntryType, amount decimal.Decimal, date time.Time) error {
	if !entryType.Valid() {
		return fmt.Errorf("%w: entry type must be given or received", common.ErrValidation)
	}
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", common.ErrValidation)
	}
	if date.IsZero() {
		return fmt.Errorf("%w: date is required", common.ErrValidation)
	}
	return nil
}

func entryBody(accountID string, entryType models.EntryType, amount decimal.Decimal, date time.Time, reason string) map[string]any {
	body := map[string]any{
		"type":   entryType,
		"amount": amount,
		"date":   date.Format("2006-01-02"),
	}
	if accountID != "" {
		body["accountId"] = accountID
	}
	if reason != "" {
		body["reason"] = reason
	}
	return body
}

// Create adds an entry to the account. On success the view is settled
// before return: the entry list is re-fetched and the change event has run.
func (l *Ledger) Create(ctx context.Context, accountID string, entryType models.EntryType, amount decimal.Decimal, date time.Time, reason string) error {
	if err := validate(entryType, amount, date); err != nil {
		return err
	}

	env, err := l.gw.Do(ctx, api.CreateEntry, entryBody(accountID, entryType, amount, date, reason))
	if err != nil {
		return errors.New("Failed to add entry")
	}
	if !env.OK() {
		return errors.New(env.FailureMessage("Failed to add entry"))
	}

	l.log.Info(ctx, "entry created", "account", accountID, "type", entryType)
	l.settle(ctx, accountID)
	return nil
}

// Get fetches one entry's full detail for edit-view population.
func (l *Ledger) Get(ctx context.Context, entryID string) (*models.Entry, error) {
	env, err := l.gw.Do(ctx, api.GetEntry.WithID(entryID), nil)
	if err != nil {
		return nil, errors.New("Failed to load entry")
	}
	if !env.OK() {
		return nil, errors.New(env.FailureMessage("Failed to load entry"))
	}

	var e models.Entry
	if err := env.Decode(&e); err != nil {
		return nil, errors.New("Failed to load entry")
	}
	return &e, nil
}

// Update edits an entry. No incremental local patching: on success the same
// dual re-fetch as Create runs, so server-derived fields cannot drift.
func (l *Ledger) Update(ctx context.Context, entryID, accountID string, entryType models.EntryType, amount decimal.Decimal, date time.Time, reason string) error {
	if err := validate(entryType, amount, date); err != nil {
		return err
	}

	env, err := l.gw.Do(ctx, api.UpdateEntry.WithID(entryID), entryBody("", entryType, amount, date, reason))
	if err != nil {
		return errors.New("Failed to update entry")
	}
	if !env.OK() {
		return errors.New(env.FailureMessage("Failed to update entry"))
	}

	l.log.Info(ctx, "entry updated", "entry", entryID)
	l.settle(ctx, accountID)
	return nil
}

// Delete removes an entry permanently. Callers gate this behind an explicit
// user confirmation (see the confirm package).
func (l *Ledger) Delete(ctx context.Context, entryID, accountID string) error {
	env, err := l.gw.Do(ctx, api.DeleteEntry.WithID(entryID), nil)
	if err != nil {
		return errors.New("Failed to delete entry")
	}
	if !env.OK() {
		return errors.New(env.FailureMessage("Failed to delete entry"))
	}

	l.log.Info(ctx, "entry deleted", "entry", entryID)
	l.settle(ctx, accountID)
	return nil
}

// ListAll fetches every entry across all of the user's accounts, sorted.
func (l *Ledger) ListAll(ctx context.Context) ([]models.Entry, error) {
	env, err := l.gw.Do(ctx, api.AllEntries, nil)
	if err != nil {
		return nil, errors.New("Failed to fetch entries")
	}
	if !env.OK() {
		return nil, errors.New(env.FailureMessage("Failed to fetch entries"))
	}

	var list []models.Entry
	if err := env.Decode(&list); err != nil {
		return nil, errors.New("Failed to fetch entries")
	}
	sortEntries(list)
	return list, nil
}

// ListByDateRange fetches the account's entries between from and to
// (inclusive calendar dates), sorted.
func (l *Ledger) ListByDateRange(ctx context.Context, accountID string, from, to time.Time) ([]models.Entry, error) {
	q := url.Values{}
	q.Set("from", from.Format("2006-01-02"))
	q.Set("to", to.Format("2006-01-02"))

	env, err := l.gw.Do(ctx, api.EntriesByDate.WithID(accountID).WithQuery(q), nil)
	if err != nil {
		return nil, errors.New("Failed to fetch entries")
	}
	if !env.OK() {
		return nil, errors.New(env.FailureMessage("Failed to fetch entries"))
	}

	var list []models.Entry
	if err := env.Decode(&list); err != nil {
		return nil, errors.New("Failed to fetch entries")
	}
	sortEntries(list)
	return list, nil
}

// settle completes a successful mutation: the entry list re-fetch and the
// change event (balance re-fetch on the subscriber side) run concurrently,
// and both finish before the mutation returns. The two have no ordering
// dependency and one failing must not cancel the other, hence a plain
// errgroup.Group rather than WithContext. Refresh failures are logged, not
// surfaced; the mutation itself already succeeded.
func (l *Ledger) settle(ctx context.Context, accountID string) {
	var g errgroup.Group

	g.Go(func() error {
		_, err := l.List(ctx, accountID)
		return err
	})
	for _, fn := range l.subs {
		fn := fn
		g.Go(func() error {
			return fn(ctx, accountID)
		})
	}

	if err := g.Wait(); err != nil {
		l.log.Warn(ctx, "post-mutation refresh failed", "account", accountID, "err", err)
	}
}
