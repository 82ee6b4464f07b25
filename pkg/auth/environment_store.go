package auth

import (
	"os"
	"strconv"
)

// EnvironmentStore implements Store using environment variables. It is
// read-only and exists so the harvester can run in scripted environments
// without a keychain.
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment-based credential store.
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Save is not supported for environment variables.
func (e *EnvironmentStore) Save(creds *Credentials) error {
	return ErrStoreUnavailable
}

// Load reads credentials from TGHARVEST_API_ID, TGHARVEST_API_HASH and
// TGHARVEST_PHONE.
func (e *EnvironmentStore) Load() (*Credentials, error) {
	idStr := os.Getenv("TGHARVEST_API_ID")
	apiHash := os.Getenv("TGHARVEST_API_HASH")
	phone := os.Getenv("TGHARVEST_PHONE")

	if idStr == "" || apiHash == "" || phone == "" {
		return nil, ErrCredentialsNotFound
	}

	apiID, err := strconv.Atoi(idStr)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return &Credentials{
		APIID:   apiID,
		APIHash: apiHash,
		Phone:   phone,
	}, nil
}

// Delete is not supported for environment variables.
func (e *EnvironmentStore) Delete() error {
	return ErrStoreUnavailable
}
