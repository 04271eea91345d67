package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

// Keyring is an alternative persistent tier backed by the platform secret
// service (Keychain, Secret Service, Windows Credential Manager, pass),
// falling back to an encrypted file where none is available.
type Keyring struct {
	ring keyring.Keyring
}

// OpenKeyring opens the OS keyring under the given service name.
func OpenKeyring(service string) (*Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: service,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/" + service + "/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt(service + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Keyring{ring: ring}, nil
}

func (k *Keyring) Get(ctx context.Context, key string) ([]byte, error) {
	item, err := k.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting keyring item %q: %w", key, err)
	}
	return item.Data, nil
}

func (k *Keyring) Set(ctx context.Context, key string, value []byte) error {
	err := k.ring.Set(keyring.Item{Key: key, Data: value})
	if err != nil {
		return fmt.Errorf("setting keyring item %q: %w", key, err)
	}
	return nil
}

func (k *Keyring) Delete(ctx context.Context, key string) error {
	err := k.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("deleting keyring item %q: %w", key, err)
	}
	return nil
}

func (k *Keyring) Keys(ctx context.Context) ([]string, error) {
	keys, err := k.ring.Keys()
	if err != nil {
		return nil, fmt.Errorf("listing keyring items: %w", err)
	}
	return keys, nil
}
