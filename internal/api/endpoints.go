// Package api is the authenticated request gateway: it knows the ledger
// service's endpoint table, attaches the bearer credential, and normalizes
// the {success, data, message, error} envelope every endpoint speaks.
package api

import (
	"fmt"
	"net/http"
	"net/url"
)

// Spec describes one remote endpoint: HTTP method, relative path and an
// optional raw query string. Paths with a "%s" segment are completed with
// WithID before use.
type Spec struct {
	Method   string
	Path     string
	RawQuery string
}

// WithID returns a copy of s with the path's "%s" segment filled by the
// escaped id.
func (s Spec) WithID(id string) Spec {
	s.Path = fmt.Sprintf(s.Path, url.PathEscape(id))
	return s
}

// WithQuery returns a copy of s carrying the encoded query values.
func (s Spec) WithQuery(v url.Values) Spec {
	s.RawQuery = v.Encode()
	return s
}

// Endpoint table of the ledger service.
var (
	Register = Spec{Method: http.MethodPost, Path: "/user-register"}
	Login    = Spec{Method: http.MethodPost, Path: "/user-login"}
	Logout   = Spec{Method: http.MethodPost, Path: "/user-logout"}
	Profile  = Spec{Method: http.MethodGet, Path: "/get-profile"}

	CreateAccount = Spec{Method: http.MethodPost, Path: "/create-account"}
	ListAccounts  = Spec{Method: http.MethodGet, Path: "/get-all-accounts"}
	GetAccount    = Spec{Method: http.MethodGet, Path: "/get-single-account/%s"}
	UpdateAccount = Spec{Method: http.MethodPost, Path: "/update-account/%s"}
	DeleteAccount = Spec{Method: http.MethodDelete, Path: "/delete-account/%s"}

	CreateEntry      = Spec{Method: http.MethodPost, Path: "/create-entry"}
	EntriesByAccount = Spec{Method: http.MethodGet, Path: "/get-entry-by-accounts/%s"}
	AllEntries       = Spec{Method: http.MethodGet, Path: "/get-all-entries"}
	EntriesByDate    = Spec{Method: http.MethodGet, Path: "/get-entry-by-date/%s"}
	GetEntry         = Spec{Method: http.MethodGet, Path: "/get-single-entry/%s"}
	UpdateEntry      = Spec{Method: http.MethodPost, Path: "/update-entry/%s"}
	DeleteEntry      = Spec{Method: http.MethodDelete, Path: "/delete-entry/%s"}
)
