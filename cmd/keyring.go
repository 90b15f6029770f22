package cmd

import (
	"fmt"
	"os"

	"github.com/live-labs/keyvault/internal/cipher"
	"github.com/live-labs/keyvault/internal/keyring"
	"github.com/live-labs/keyvault/internal/vault"
)

// KeyringSave verifies the password and stores it in the OS keyring
func KeyringSave() {
	db := openStorage()
	defer db.Close()

	password, err := vault.ReadPassword("Enter password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer cipher.ClearBytes(password)

	// Never cache a password that does not unlock the vault
	v := vault.New(db, vault.WithLogger(newLogger()))
	if err := v.Unlock(password); err != nil {
		HandleError(err)
	}
	v.Lock()

	vaultID, err := db.GetOrCreateVaultID()
	if err != nil {
		HandleError(err)
	}

	if err := keyring.SavePassword(vaultID, string(password)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save to keyring: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("Password saved to keyring")
}

// KeyringDelete removes the password from the OS keyring
func KeyringDelete() {
	db := openStorage()
	defer db.Close()

	vaultID, err := db.GetVaultID()
	if err != nil {
		fmt.Println("No password stored in keyring")
		return
	}

	if err := keyring.DeletePassword(vaultID); err != nil {
		fmt.Println("No password stored in keyring")
		return
	}

	fmt.Println("Password removed from keyring")
}

// KeyringStatus checks if a password is stored in the keyring
func KeyringStatus() {
	db := openStorage()
	defer db.Close()

	vaultID, err := db.GetVaultID()
	if err != nil {
		fmt.Println("Password: not stored")
		return
	}

	if keyring.HasPassword(vaultID) {
		fmt.Println("Password: stored in keyring")
	} else {
		fmt.Println("Password: not stored")
	}
}
