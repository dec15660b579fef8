// Package accounts keeps the in-memory cache of the current user's
// counterparty accounts and the operations that mutate them against the
// remote service. Balances inside the cache are server state: the registry
// re-fetches them, never computes them.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/rvasani/lenden/internal/api"
	"github.com/rvasani/lenden/internal/common"
	"github.com/rvasani/lenden/internal/logging"
	"github.com/rvasani/lenden/internal/models"
)

// Gateway is the slice of the request gateway the registry needs.
type Gateway interface {
	Do(ctx context.Context, spec api.Spec, body any) (*api.Envelope, error)
}

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// ValidateInput checks account fields locally, before any network call.
// It returns the trimmed name. Name must be at least 2 characters after
// trimming; phone, when present, exactly 10 digits.
func ValidateInput(name, phone string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: account name is required", common.ErrValidation)
	}
	if len(name) < 2 {
		return "", fmt.Errorf("%w: account name must be at least 2 characters", common.ErrValidation)
	}
	if phone != "" && !phonePattern.MatchString(phone) {
		return "", fmt.Errorf("%w: phone number must be 10 digits", common.ErrValidation)
	}
	return name, nil
}

// Filter returns the accounts matching query: case-insensitive substring of
// the name, or substring of the phone digits. An empty (or blank) query
// returns the input unchanged, order preserved. Pure.
func Filter(accounts []models.Account, query string) []models.Account {
	q := strings.TrimSpace(query)
	if q == "" {
		return accounts
	}

	lq := strings.ToLower(q)
	out := make([]models.Account, 0, len(accounts))
	for _, a := range accounts {
		if strings.Contains(strings.ToLower(a.Name), lq) || strings.Contains(a.Phone, q) {
			out = append(out, a)
		}
	}
	return out
}

// Registry is the cache of non-deleted accounts for the session.
type Registry struct {
	mu    sync.Mutex
	cache []models.Account
	gen   uint64 // bumped on Invalidate; late responses with an older gen are dropped

	gw  Gateway
	log logging.Logger
}

func NewRegistry(gw Gateway, log logging.Logger) *Registry {
	return &Registry{gw: gw, log: log.With("component", "accounts")}
}

// Cached returns a copy of the current cache.
func (r *Registry) Cached() []models.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Account, len(r.cache))
	copy(out, r.cache)
	return out
}

// Invalidate bumps the generation counter and clears the cache. In-flight
// responses started before the bump will not be applied. Called on logout
// and on view teardown.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.gen++
	r.cache = nil
	r.mu.Unlock()
}

func (r *Registry) generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// List fetches all non-deleted accounts and replaces the cache wholesale.
// On any failure the cache is left untouched.
func (r *Registry) List(ctx context.Context) ([]models.Account, error) {
	gen := r.generation()

	env, err := r.gw.Do(ctx, api.ListAccounts, nil)
	if err != nil {
		return nil, errors.New("Failed to fetch accounts")
	}
	if !env.OK() {
		return nil, errors.New(env.FailureMessage("Failed to fetch accounts"))
	}

	var accs []models.Account
	if err := env.Decode(&accs); err != nil {
		return nil, errors.New("Failed to fetch accounts")
	}

	r.mu.Lock()
	if r.gen == gen {
		r.cache = accs
	} else {
		r.log.Debug(ctx, "dropping stale account list")
	}
	r.mu.Unlock()
	return accs, nil
}

// Create validates locally, then creates the account remotely. The created
// account is prepended to the cache (optimistic placement at the front, not
// re-sorted).
func (r *Registry) Create(ctx context.Context, name, phone string) (*models.Account, error) {
	name, err := ValidateInput(name, phone)
	if err != nil {
		return nil, err
	}

	gen := r.generation()

	body := map[string]string{"accountName": name}
	if phone != "" {
		body["phoneNumber"] = phone
	}
	env, err := r.gw.Do(ctx, api.CreateAccount, body)
	if err != nil {
		return nil, errors.New("Failed to create account")
	}
	if !env.OK() {
		return nil, errors.New(env.FailureMessage("Failed to create account"))
	}

	var acc models.Account
	if err := env.Decode(&acc); err != nil {
		return nil, errors.New("Failed to create account")
	}

	r.mu.Lock()
	if r.gen == gen {
		r.cache = append([]models.Account{acc}, r.cache...)
	}
	r.mu.Unlock()
	r.log.Info(ctx, "account created", "id", acc.ID, "name", acc.Name)
	return &acc, nil
}

// Update edits an account's name and phone remotely, patching the cached
// element in place on success.
func (r *Registry) Update(ctx context.Context, id, name, phone string) (*models.Account, error) {
	name, err := ValidateInput(name, phone)
	if err != nil {
		return nil, err
	}

	gen := r.generation()

	body := map[string]string{"accountName": name, "phoneNumber": phone}
	env, err := r.gw.Do(ctx, api.UpdateAccount.WithID(id), body)
	if err != nil {
		return nil, errors.New("Failed to update account")
	}
	if !env.OK() {
		return nil, errors.New(env.FailureMessage("Failed to update account"))
	}

	var acc models.Account
	if err := env.Decode(&acc); err != nil {
		return nil, errors.New("Failed to update account")
	}

	r.apply(gen, acc)
	return &acc, nil
}

// Delete soft-deletes the account remotely and removes it from the cache.
// On failure the account remains visible. Callers gate this behind an
// explicit user confirmation (see the confirm package).
func (r *Registry) Delete(ctx context.Context, id string) error {
	gen := r.generation()

	env, err := r.gw.Do(ctx, api.DeleteAccount.WithID(id), nil)
	if err != nil {
		return errors.New("Failed to delete account")
	}
	if !env.OK() {
		return errors.New(env.FailureMessage("Failed to delete account"))
	}

	r.mu.Lock()
	if r.gen == gen {
		for i, a := range r.cache {
			if a.ID == id {
				r.cache = append(r.cache[:i], r.cache[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()
	r.log.Info(ctx, "account deleted", "id", id)
	return nil
}

// RefreshOne re-fetches a single account's balance and snapshot. Used after
// entry mutations to resynchronize the balance without re-listing all
// accounts.
func (r *Registry) RefreshOne(ctx context.Context, id string) (*models.Account, error) {
	gen := r.generation()

	env, err := r.gw.Do(ctx, api.GetAccount.WithID(id), nil)
	if err != nil {
		return nil, errors.New("Failed to fetch account details")
	}
	if !env.OK() {
		return nil, errors.New(env.FailureMessage("Failed to fetch account details"))
	}

	var acc models.Account
	if err := env.Decode(&acc); err != nil {
		return nil, errors.New("Failed to fetch account details")
	}

	r.apply(gen, acc)
	return &acc, nil
}

// apply patches the cached element matching acc, unless the generation moved
// on while the request was in flight.
func (r *Registry) apply(gen uint64, acc models.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		return
	}
	for i := range r.cache {
		if r.cache[i].ID == acc.ID {
			r.cache[i] = acc
			return
		}
	}
}
