package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/live-labs/keyvault/internal/keyring"
	"github.com/live-labs/keyvault/internal/store"
	"github.com/live-labs/keyvault/internal/vault"
)

// Status shows the vault state. No password required.
func Status() {
	if _, err := os.Stat(VaultFile); err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("No %s file found in current directory\n", VaultFile)
			fmt.Println("Run 'keyvault init' to create one")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		return
	}

	db, err := store.Open(VaultFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer db.Close()

	v := vault.New(db)
	initialized, err := v.Initialized()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: present\n", VaultFile)
	if initialized {
		fmt.Println("Master secret: initialized")
	} else {
		fmt.Println("Master secret: not initialized")
	}

	if created, err := db.GetCreated(); err == nil {
		fmt.Printf("Created: %s\n", created.Format(time.RFC3339))
	}
	if modified, err := db.GetModified(); err == nil {
		fmt.Printf("Modified: %s\n", modified.Format(time.RFC3339))
	}

	if vaultID, err := db.GetVaultID(); err == nil {
		fmt.Printf("Vault ID: %s\n", vaultID)
		if keyring.HasPassword(vaultID) {
			fmt.Println("Password: stored in keyring")
		} else {
			fmt.Println("Password: not stored")
		}
	}
}
