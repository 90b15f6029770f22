package cmd

import (
	"fmt"
	"os"

	"github.com/live-labs/keyvault/internal/cipher"
	"github.com/live-labs/keyvault/internal/store"
	"github.com/live-labs/keyvault/internal/vault"
)

// Init creates a new .keyvault database and bootstraps its master secret
func Init() {
	if _, err := os.Stat(VaultFile); err == nil {
		fmt.Fprintf(os.Stderr, "Error: %s already exists in this directory\n", VaultFile)
		fmt.Fprintf(os.Stderr, "Use 'keyvault status' to see current state\n")
		os.Exit(1)
	}

	// Read password (env var or prompt with confirmation)
	password, err := GetPasswordForInit()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer cipher.ClearBytes(password)

	db, err := store.Open(VaultFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if _, err := db.GetOrCreateVaultID(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	v := vault.New(db, vault.WithLogger(newLogger()))
	if _, err := v.NewMaster(password); err != nil {
		HandleError(err)
	}
	defer v.Lock()

	fmt.Printf("✓ Initialized %s\n", VaultFile)
}
