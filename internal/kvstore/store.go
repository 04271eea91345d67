// Package kvstore provides the key-value storage tiers backing the
// credential cache: an in-memory ephemeral tier, a device-local SQLite
// tier, and an OS-keyring tier.
package kvstore

import "context"

// Store is the contract both storage tiers satisfy.
//
// Contract:
//   - Get returns (nil, nil) when the key is absent.
//   - Set overwrites an existing value (last write wins).
//   - Delete of an absent key is not an error.
//   - Keys lists every key currently present.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}
