package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

// Keyring stores session material in the OS credential store so repeated CLI
// invocations stay logged in. Falls back to an encrypted file where no native
// backend exists.
type Keyring struct {
	service string
}

func NewKeyring(service string) *Keyring {
	if service == "" {
		service = "sensor-monitoring"
	}
	return &Keyring{service: service}
}

func (k *Keyring) open() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: k.service,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/" + k.service + "/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt(k.service + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key.
func (k *Keyring) Get(key string) (string, error) {
	ring, err := k.open()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key.
func (k *Keyring) Set(key, value string) error {
	ring, err := k.open()
	if err != nil {
		return err
	}

	if err := ring.Set(keyring.Item{Key: key, Data: []byte(value)}); err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key.
func (k *Keyring) Delete(key string) error {
	ring, err := k.open()
	if err != nil {
		return err
	}

	if err := ring.Remove(key); err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}
