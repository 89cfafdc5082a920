// Package credential stores tracker credentials in the OS keyring
// (Keychain on macOS, Secret Service on Linux, wincred on Windows),
// with an encrypted file fallback where no native backend exists.
package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/99designs/keyring"
)

// serviceName namespaces trackwork entries in the OS keyring.
const serviceName = "trackwork"

// ErrNotFound is returned when no credential is stored under a name.
var ErrNotFound = errors.New("credential not found")

var (
	openOnce sync.Once
	ring     keyring.Keyring
	openErr  error
)

// openRing opens the keyring once per process.
func openRing() (keyring.Keyring, error) {
	openOnce.Do(func() {
		home, err := os.UserHomeDir()
		if err != nil {
			openErr = err
			return
		}
		ring, openErr = keyring.Open(keyring.Config{
			ServiceName: serviceName,
			FileDir:     filepath.Join(home, ".config", "trackwork", "keyring"),
			FilePasswordFunc: func(prompt string) (string, error) {
				if pw := os.Getenv("TRACKWORK_KEYRING_PASSWORD"); pw != "" {
					return pw, nil
				}
				return keyring.TerminalPrompt(prompt)
			},
		})
	})
	return ring, openErr
}

// Get returns the credential stored under name.
func Get(name string) (string, error) {
	r, err := openRing()
	if err != nil {
		return "", fmt.Errorf("open keyring: %w", err)
	}

	item, err := r.Get(name)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("read credential %s: %w", name, err)
	}
	return string(item.Data), nil
}

// Set stores a credential under name, replacing any existing value.
func Set(name, value string) error {
	r, err := openRing()
	if err != nil {
		return fmt.Errorf("open keyring: %w", err)
	}

	if err := r.Set(keyring.Item{Key: name, Data: []byte(value)}); err != nil {
		return fmt.Errorf("store credential %s: %w", name, err)
	}
	return nil
}

// Delete removes the credential stored under name. Deleting a missing
// credential is not an error.
func Delete(name string) error {
	r, err := openRing()
	if err != nil {
		return fmt.Errorf("open keyring: %w", err)
	}

	if err := r.Remove(name); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("delete credential %s: %w", name, err)
	}
	return nil
}
