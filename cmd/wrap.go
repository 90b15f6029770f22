package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/live-labs/keyvault/internal/cipher"
	"github.com/live-labs/keyvault/internal/vault"
)

// Wrap encrypts a raw credential with the vault's master secret and prints
// the wrapped form. The credential comes from the argument, or stdin when
// the argument is absent or "-".
func Wrap(args []string) {
	credential := readCredential(args)

	v, cleanup := unlockedVault()
	defer cleanup()

	wrapped, err := v.Wrap(credential)
	if err != nil {
		HandleError(err)
	}

	fmt.Println(wrapped)
}

// Unwrap decrypts a wrapped credential and prints the raw form.
func Unwrap(args []string) {
	wrapped := readCredential(args)

	v, cleanup := unlockedVault()
	defer cleanup()

	credential, err := v.Unwrap(wrapped)
	if err != nil {
		HandleError(err)
	}

	fmt.Println(credential)
}

// readCredential returns the single argument, or trimmed stdin
func readCredential(args []string) string {
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "Error: expected at most one credential argument\n")
		os.Exit(1)
	}
	if len(args) == 1 && args[0] != "-" {
		return args[0]
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read credential from stdin: %s\n", err)
		os.Exit(1)
	}
	credential := strings.TrimSpace(string(data))
	if credential == "" {
		fmt.Fprintf(os.Stderr, "Error: empty credential\n")
		os.Exit(1)
	}
	return credential
}

// unlockedVault opens the store, resolves the password and unlocks the
// vault. The returned cleanup locks the vault and closes the store.
func unlockedVault() (*vault.Vault, func()) {
	db := openStorage()

	password, _ := GetPasswordOrExit(db, "Enter password: ")
	defer cipher.ClearBytes(password)

	v := vault.New(db, vault.WithLogger(newLogger()))
	if err := v.Unlock(password); err != nil {
		db.Close()
		HandleError(err)
	}

	return v, func() {
		v.Lock()
		db.Close()
	}
}
