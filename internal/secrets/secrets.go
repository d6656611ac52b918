// Package secrets resolves the Gemini API key from the environment, the
// config file or the OS keychain, in that order.
package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups the recruiter's secrets in the OS keychain.
	KeyringService = "ai-recruiter"
	// APIKeyAccount is the keychain account holding the Gemini API key.
	APIKeyAccount = "gemini-api-key"
	// APIKeyEnv is the environment variable checked first.
	APIKeyEnv = "GEMINI_API_KEY"
)

// ErrNoAPIKey is returned when no source holds an API key.
var ErrNoAPIKey = errors.New("Gemini API key not found (set GEMINI_API_KEY, api_key in the config file, or run 'recruiter secrets set-api-key')")

// Source names where an API key came from.
type Source string

const (
	SourceEnv     Source = "env"
	SourceConfig  Source = "config"
	SourceKeyring Source = "keyring"
)

// APIKey returns the first non-empty key from GEMINI_API_KEY, configured,
// then the keychain.
func APIKey(configured string) (string, Source, error) {
	if k := strings.TrimSpace(os.Getenv(APIKeyEnv)); k != "" {
		return k, SourceEnv, nil
	}
	if k := strings.TrimSpace(configured); k != "" {
		return k, SourceConfig, nil
	}
	k, err := keyring.Get(KeyringService, APIKeyAccount)
	if err == nil && strings.TrimSpace(k) != "" {
		return strings.TrimSpace(k), SourceKeyring, nil
	}
	return "", "", ErrNoAPIKey
}

// SetAPIKey stores key in the keychain.
func SetAPIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("API key is empty")
	}
	return keyring.Set(KeyringService, APIKeyAccount, strings.TrimSpace(key))
}

// DeleteAPIKey removes the key from the keychain. Deleting a missing key
// is not an error.
func DeleteAPIKey() error {
	err := keyring.Delete(KeyringService, APIKeyAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
