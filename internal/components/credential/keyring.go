package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "iserv-client"

var NotFound = errors.New("credential not found")

// Store keeps portal passwords keyed by "<username>@<host>".
type Store struct {
	ring keyring.Keyring
}

// Open opens the OS keyring, falling back to an encrypted file under `fileDir`
// on systems without a keyring service.
func Open(fileDir string) (Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("iserv-client-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return Store{}, fmt.Errorf("opening keyring: %w", err)
	}
	return Store{ring: ring}, nil
}

// NewStore wraps an already opened keyring.
func NewStore(ring keyring.Keyring) Store {
	return Store{ring: ring}
}

func Key(username, host string) string {
	return fmt.Sprintf("%s@%s", username, host)
}

func (s Store) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: %s", NotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

func (s Store) Set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:   key,
		Label: fmt.Sprintf("IServ password for %s", key),
		Data:  []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

func (s Store) Delete(key string) error {
	err := s.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", NotFound, key)
	}
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}
