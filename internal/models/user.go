// Package models defines the ledger client's data types: the authenticated
// user, counterparty accounts, directional cash entries, and the pure
// derived-balance display policy.
package models

// User is the identity payload returned by the login and profile endpoints.
type User struct {
	ID       string `json:"_id,omitempty"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

// DisplayName returns the best human-readable label for the user.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
