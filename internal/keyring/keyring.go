// Package keyring provides access to the system keychain for storing API keys
// and the backend session credentials.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "scribe"

// APIKey represents a named API key stored in the keychain.
type APIKey string

const (
	// OpenAI is the keychain entry for the OpenAI API key.
	OpenAI APIKey = "openai-api-key"
	// Anthropic is the keychain entry for the Anthropic API key.
	Anthropic APIKey = "anthropic-api-key"
)

// session entries
const (
	authTokenEntry = "auth-token"
	userDataEntry  = "user-data"
)

// AllAPIKeys returns all known API key types for iteration.
func AllAPIKeys() []APIKey {
	return []APIKey{OpenAI, Anthropic}
}

// DisplayName returns a human-readable name for the API key.
func (k APIKey) DisplayName() string {
	switch k {
	case OpenAI:
		return "openai"
	case Anthropic:
		return "anthropic"
	default:
		return string(k)
	}
}

// Get retrieves an API key value from the system keychain.
func Get(apiKey APIKey) (string, error) {
	value, err := keyring.Get(serviceName, string(apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to get %s from keychain: %w", apiKey.DisplayName(), err)
	}

	return value, nil
}

// Set stores an API key value in the system keychain.
func Set(apiKey APIKey, value string) error {
	if err := keyring.Set(serviceName, string(apiKey), value); err != nil {
		return fmt.Errorf("failed to set %s in keychain: %w", apiKey.DisplayName(), err)
	}

	return nil
}

// IsSet checks if an API key exists in the keychain.
func IsSet(apiKey APIKey) bool {
	_, err := keyring.Get(serviceName, string(apiKey))

	return err == nil
}

// Resolve returns explicit when non-empty, otherwise the keychain value for
// apiKey. A missing keychain entry yields an empty string.
func Resolve(explicit string, apiKey APIKey) string {
	if explicit != "" {
		return explicit
	}

	value, err := Get(apiKey)
	if err != nil {
		return ""
	}

	return value
}

// APIKeyFromServiceName maps a service name (e.g., "openai") to an APIKey.
func APIKeyFromServiceName(name string) (APIKey, error) {
	switch name {
	case "openai":
		return OpenAI, nil
	case "anthropic":
		return Anthropic, nil
	default:
		return "", fmt.Errorf("unknown service: %s", name)
	}
}

// Credentials is the persistent store for the backend session: the bearer
// token and the signed-in user's profile JSON.
type Credentials struct{}

// Token returns the saved bearer token, or "" when nobody is signed in.
func (Credentials) Token() (string, error) {
	return lookup(authTokenEntry)
}

// SaveToken persists the bearer token.
func (Credentials) SaveToken(token string) error {
	if err := keyring.Set(serviceName, authTokenEntry, token); err != nil {
		return fmt.Errorf("failed to save auth token in keychain: %w", err)
	}

	return nil
}

// User returns the saved user profile JSON, or nil when absent.
func (Credentials) User() ([]byte, error) {
	value, err := lookup(userDataEntry)
	if err != nil || value == "" {
		return nil, err
	}

	return []byte(value), nil
}

// SaveUser persists the user profile JSON.
func (Credentials) SaveUser(data []byte) error {
	if err := keyring.Set(serviceName, userDataEntry, string(data)); err != nil {
		return fmt.Errorf("failed to save user data in keychain: %w", err)
	}

	return nil
}

// ClearAll removes the session entries. API keys are left alone.
func (Credentials) ClearAll() error {
	for _, entry := range []string{authTokenEntry, userDataEntry} {
		err := keyring.Delete(serviceName, entry)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to delete %s from keychain: %w", entry, err)
		}
	}

	return nil
}

func lookup(entry string) (string, error) {
	value, err := keyring.Get(serviceName, entry)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s from keychain: %w", entry, err)
	}

	return value, nil
}
