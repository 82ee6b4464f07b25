package auth

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"tgharvest/pkg/config"
)

// Credentials holds the operator's Telegram connection parameters.
type Credentials struct {
	APIID        int       `json:"api_id"`
	APIHash      string    `json:"api_hash"`
	Phone        string    `json:"phone"`
	LastModified time.Time `json:"last_modified"`
}

// Validate checks that the credentials are usable.
func (c *Credentials) Validate() error {
	if c == nil {
		return ErrInvalidCredentials
	}
	if c.APIID == 0 {
		return fmt.Errorf("%w: api_id is required", ErrInvalidCredentials)
	}
	if c.APIHash == "" {
		return fmt.Errorf("%w: api_hash is required", ErrInvalidCredentials)
	}
	if c.Phone == "" {
		return fmt.Errorf("%w: phone is required", ErrInvalidCredentials)
	}
	return nil
}

// Store is the interface for persisting connection credentials. The
// harvester is single-operator tooling, so each store holds one slot.
type Store interface {
	Save(creds *Credentials) error
	Load() (*Credentials, error)
	Delete() error
}

var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)

// Manager tries multiple credential stores with fallback: system keychain,
// encrypted file, environment variables.
type Manager struct {
	stores []Store
}

// NewManager creates a credential manager with the available backends.
func NewManager() (*Manager, error) {
	var stores []Store

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// Save persists credentials using the first store that accepts them.
func (m *Manager) Save(creds *Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	creds.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Save(creds); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Load returns credentials from the first store that has them.
func (m *Manager) Load() (*Credentials, error) {
	for _, store := range m.stores {
		creds, err := store.Load()
		if err == nil && creds.Validate() == nil {
			return creds, nil
		}
	}
	return nil, ErrCredentialsNotFound
}

// Delete removes credentials from every store that holds them.
func (m *Manager) Delete() error {
	var lastErr error
	deleted := false
	for _, store := range m.stores {
		err := store.Delete()
		switch {
		case err == nil:
			deleted = true
		case errors.Is(err, ErrCredentialsNotFound), errors.Is(err, ErrStoreUnavailable):
		default:
			lastErr = err
		}
	}
	if deleted {
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return ErrCredentialsNotFound
}
