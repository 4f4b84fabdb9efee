package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService is the service name under which passwords are stored in the OS keyring
const KeyringService = appName

// PasswordEnvVar returns the environment variable consulted for an account's password,
// e.g. LISTONIC_SYNC_PASSWORD_HOME for the account "home"
func PasswordEnvVar(account string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, account)
	return EnvPrefix + "_PASSWORD_" + name
}

// GetPassword returns the account password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from the LISTONIC_SYNC_PASSWORD_<NAME> environment variable
// 3. Read from the OS keyring when Keyring is set
//
// The password from file will have leading/trailing whitespace trimmed.
func (a *AccountConfig) GetPassword() (string, error) {
	if a.PasswordFile != "" {
		cleanPath := filepath.Clean(a.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", a.PasswordFile, err)
		}

		return strings.TrimSpace(string(data)), nil
	}

	envVar := PasswordEnvVar(a.Name)
	if envPassword := os.Getenv(envVar); envPassword != "" {
		return envPassword, nil
	}

	if a.Keyring {
		password, err := keyring.Get(KeyringService, a.Email)
		if err != nil {
			return "", fmt.Errorf("failed to read password for %s from keyring: %w", a.Email, err)
		}
		return password, nil
	}

	return "", fmt.Errorf(
		"no password configured for account %s: set passwordFile, keyring or the %s environment variable",
		a.Name, envVar,
	)
}

// StorePassword saves an account password in the OS keyring
func StorePassword(email, password string) error {
	if err := keyring.Set(KeyringService, email, password); err != nil {
		return fmt.Errorf("failed to store password for %s in keyring: %w", email, err)
	}
	return nil
}
