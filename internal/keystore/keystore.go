// Package keystore persists the client's session state (credential and
// last-known identity) across process restarts, keyed by fixed well-known
// names in a local SQLite file.
package keystore

import "context"

// Well-known keys.
const (
	KeyToken = "authToken"
	KeyUser  = "user"
)

// Store is a small key/value repository. Get returns common.ErrNotFound for
// an absent key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
