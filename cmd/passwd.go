package cmd

import (
	"fmt"
	"os"

	"github.com/live-labs/keyvault/internal/cipher"
	"github.com/live-labs/keyvault/internal/keyring"
	"github.com/live-labs/keyvault/internal/vault"
)

// Passwd changes the vault password. The master secret is unchanged, so
// previously wrapped credentials stay valid.
func Passwd() {
	db := openStorage()
	defer db.Close()

	currentPassword, _ := GetPasswordOrExit(db, "Enter current password: ")
	defer cipher.ClearBytes(currentPassword)

	v := vault.New(db, vault.WithLogger(newLogger()))
	if err := v.Unlock(currentPassword); err != nil {
		HandleError(err)
	}
	defer v.Lock()

	newPassword, err := vault.ReadPasswordConfirm()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer cipher.ClearBytes(newPassword)

	if err := v.ChangePassword(newPassword); err != nil {
		HandleError(err)
	}

	// Keep a cached keyring entry in sync with the new password
	if vaultID, err := db.GetVaultID(); err == nil && keyring.HasPassword(vaultID) {
		if err := keyring.SavePassword(vaultID, string(newPassword)); err == nil {
			fmt.Println("Keyring updated with new password")
		}
	}

	fmt.Println("✓ Password changed successfully")
}
