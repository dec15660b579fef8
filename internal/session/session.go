// Package session owns the authentication state of the client: the bearer
// credential, the current identity, and the lifecycle between them. It is
// the single writer of the credential; every other component reads it
// through Manager.Token.
package session

import "github.com/rvasani/lenden/internal/models"

// Status is the session lifecycle state.
type Status string

const (
	// StatusUnknown: process start, before Restore has resolved.
	StatusUnknown Status = "unknown"
	// StatusAuthenticating: a stored credential is being validated. Callers
	// must treat this as "loading", never as authorized or denied.
	StatusAuthenticating Status = "authenticating"
	// StatusAuthenticated: a credential and identity are held.
	StatusAuthenticated Status = "authenticated"
	// StatusUnauthenticated: no valid credential.
	StatusUnauthenticated Status = "unauthenticated"
)

// Session is a snapshot of the authentication state.
//
// Invariants: Identity is present iff Status is authenticated; Credential is
// present iff Status is authenticating or authenticated.
type Session struct {
	Status     Status
	Credential string
	Identity   *models.User
}

// Result is the structured outcome of a session-affecting operation. The
// message is user-facing; errors never cross the UI boundary.
type Result struct {
	OK      bool
	Message string
}
