// Package credential stores secrets in the operating system keyring,
// falling back to an encrypted file when no native backend is present.
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"

	"github.com/pawkit/pawkit/internal/model"
)

const serviceName = "pawkit"

// KeySyncToken is the keyring key holding the sync server API token.
const KeySyncToken = "sync-token"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/pawkit/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("pawkit-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", wrapLookupErr(key, err)
	}

	return string(item.Data), nil
}

// wrapLookupErr maps a missing keyring entry onto the shared not-found
// sentinel so callers branch on errors.Is like everywhere else.
func wrapLookupErr(key string, err error) error {
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("credential %q: %w", key, model.ErrNotFound)
	}
	return fmt.Errorf("getting credential %q: %w", key, err)
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	// Clearing an already-absent credential is a no-op, matching the
	// idempotent delete semantics of the rest of the store.
	err = ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}
