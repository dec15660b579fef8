// Package confirm implements the two-phase protocol guarding destructive
// actions: Request parks an action in a pending state, and only an explicit
// Confirm runs it; Cancel drops it. One gate serves every entity type that
// needs deletion confirmation.
package confirm

import (
	"context"
	"errors"
	"sync"
)

// ErrNothingPending is returned by Confirm when no action awaits.
var ErrNothingPending = errors.New("nothing pending confirmation")

// Action is the deferred destructive operation.
type Action func(ctx context.Context) error

// Gate holds at most one pending action. A new Request replaces any action
// still pending.
type Gate struct {
	mu     sync.Mutex
	label  string
	action Action
}

// Request parks an action behind the gate. label is shown to the user when
// asking for confirmation.
func (g *Gate) Request(label string, action Action) {
	g.mu.Lock()
	g.label = label
	g.action = action
	g.mu.Unlock()
}

// Pending returns the label of the parked action, if any.
func (g *Gate) Pending() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.label, g.action != nil
}

// Confirm runs and clears the pending action. The action is cleared even
// when it fails: a re-run requires a fresh Request.
func (g *Gate) Confirm(ctx context.Context) error {
	g.mu.Lock()
	action := g.action
	g.label = ""
	g.action = nil
	g.mu.Unlock()

	if action == nil {
		return ErrNothingPending
	}
	return action(ctx)
}

// Cancel drops the pending action without running it. It reports whether
// anything was pending.
func (g *Gate) Cancel() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	had := g.action != nil
	g.label = ""
	g.action = nil
	return had
}
