package cmd

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/live-labs/keyvault/internal/keyring"
	"github.com/live-labs/keyvault/internal/store"
	"github.com/live-labs/keyvault/internal/vault"
)

// VaultFile is the vault database created in the working directory.
const VaultFile = ".keyvault"

// PasswordSource identifies where a password came from, so commands can
// decide whether offering keyring caching makes sense.
type PasswordSource int

const (
	SourceEnv PasswordSource = iota
	SourceKeyring
	SourcePrompt
)

// newLogger builds the vault logger. Debug output is off unless
// KEYVAULT_DEBUG is set.
func newLogger() *zap.Logger {
	if os.Getenv("KEYVAULT_DEBUG") == "" {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// openStorage opens the vault database in the current directory, exiting
// with a hint when it does not exist.
func openStorage() *store.Storage {
	if _, err := os.Stat(VaultFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: no %s found in current directory\n", VaultFile)
		fmt.Fprintf(os.Stderr, "Run 'keyvault init' first\n")
		os.Exit(1)
	}

	db, err := store.Open(VaultFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return db
}

// GetPassword retrieves the password from KEYVAULT_PASSWORD, then the OS
// keyring (by vault ID), then an interactive prompt. The caller is
// responsible for clearing the returned password.
func GetPassword(db *store.Storage, prompt string) ([]byte, PasswordSource, error) {
	if password := vault.GetPasswordFromEnv(); password != nil {
		return password, SourceEnv, nil
	}

	if vaultID, err := db.GetVaultID(); err == nil {
		if cached, err := keyring.GetPassword(vaultID); err == nil && cached != "" {
			return []byte(cached), SourceKeyring, nil
		}
	}

	password, err := vault.ReadPassword(prompt)
	if err != nil {
		return nil, SourcePrompt, fmt.Errorf("failed to read password: %w", err)
	}
	return password, SourcePrompt, nil
}

// GetPasswordOrExit is like GetPassword but exits on error
func GetPasswordOrExit(db *store.Storage, prompt string) ([]byte, PasswordSource) {
	password, source, err := GetPassword(db, prompt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return password, source
}

// GetPasswordForInit retrieves the password for the init command: the
// environment variable if set, otherwise a prompt with confirmation.
func GetPasswordForInit() ([]byte, error) {
	if password := vault.GetPasswordFromEnv(); password != nil {
		return password, nil
	}
	return vault.ReadPasswordConfirm()
}

// HandleError handles common errors consistently
func HandleError(err error) {
	switch {
	case errors.Is(err, vault.ErrWrongMasterPassword):
		fmt.Fprintf(os.Stderr, "Error: unlock failed: wrong master password\n")
	case errors.Is(err, vault.ErrMalformedEnvelope):
		fmt.Fprintf(os.Stderr, "Error: stored master secret envelope is malformed\n")
	case errors.Is(err, vault.ErrAlreadyInitialized):
		fmt.Fprintf(os.Stderr, "Error: vault already initialized\n")
		fmt.Fprintf(os.Stderr, "A new master secret would orphan every wrapped credential\n")
	case errors.Is(err, vault.ErrNotUnlocked):
		fmt.Fprintf(os.Stderr, "Error: vault is not unlocked\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}
