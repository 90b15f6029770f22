package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.keyvault")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}
	return db
}

func TestOpenAndInitialize(t *testing.T) {
	db := openTestStorage(t)

	initialized, err := db.IsInitialized()
	if err != nil {
		t.Fatalf("Failed to check initialization: %v", err)
	}
	if !initialized {
		t.Error("Database should be initialized")
	}

	created, err := db.GetCreated()
	if err != nil {
		t.Fatalf("Failed to get created time: %v", err)
	}
	if created.IsZero() {
		t.Error("Created timestamp should be set")
	}
}

func TestHasGetSet(t *testing.T) {
	db := openTestStorage(t)

	// Absent key
	present, err := db.Has("encrypted_master_password")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if present {
		t.Error("Key should not be present before Set")
	}
	if _, err := db.Get("encrypted_master_password"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	// Set and read back
	if err := db.Set("encrypted_master_password", "abcd$ciphertext"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	present, err = db.Has("encrypted_master_password")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !present {
		t.Error("Key should be present after Set")
	}

	value, err := db.Get("encrypted_master_password")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "abcd$ciphertext" {
		t.Errorf("Value mismatch: got %q", value)
	}

	// Overwrite
	if err := db.Set("encrypted_master_password", "ef01$other"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, err = db.Get("encrypted_master_password")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "ef01$other" {
		t.Errorf("Value mismatch after overwrite: got %q", value)
	}
}

func TestSetUpdatesModified(t *testing.T) {
	db := openTestStorage(t)

	before, err := db.GetModified()
	if err != nil {
		t.Fatalf("GetModified failed: %v", err)
	}

	if err := db.Set("key", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	after, err := db.GetModified()
	if err != nil {
		t.Fatalf("GetModified failed: %v", err)
	}
	if after.Before(before) {
		t.Error("Modified timestamp should not go backwards")
	}
}

func TestVaultID(t *testing.T) {
	db := openTestStorage(t)

	// No ID yet
	if _, err := db.GetVaultID(); err == nil {
		t.Error("GetVaultID should fail before one is created")
	}

	id, err := db.GetOrCreateVaultID()
	if err != nil {
		t.Fatalf("GetOrCreateVaultID failed: %v", err)
	}
	if id == "" {
		t.Fatal("Vault ID should not be empty")
	}

	// Stable across calls
	again, err := db.GetOrCreateVaultID()
	if err != nil {
		t.Fatalf("GetOrCreateVaultID failed: %v", err)
	}
	if again != id {
		t.Errorf("Vault ID changed: %q vs %q", id, again)
	}
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory()

	present, err := m.Has("key")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if present {
		t.Error("Key should not be present")
	}

	if _, err := m.Get("key"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := m.Set("key", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := m.Get("key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "value" {
		t.Errorf("Value mismatch: got %q", value)
	}
}
