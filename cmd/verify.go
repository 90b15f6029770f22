package cmd

import (
	"fmt"

	"github.com/live-labs/keyvault/internal/cipher"
	"github.com/live-labs/keyvault/internal/vault"
)

// Verify checks that a password unlocks the vault, without leaving it
// unlocked.
func Verify() {
	db := openStorage()
	defer db.Close()

	password, _ := GetPasswordOrExit(db, "Enter password: ")
	defer cipher.ClearBytes(password)

	v := vault.New(db, vault.WithLogger(newLogger()))
	if err := v.Unlock(password); err != nil {
		HandleError(err)
	}
	v.Lock()

	fmt.Println("✓ Password is correct")
}
