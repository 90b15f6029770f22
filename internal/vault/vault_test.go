package vault

import (
	"errors"
	"strings"
	"testing"

	"github.com/live-labs/keyvault/internal/store"
	"github.com/live-labs/keyvault/internal/wrap"
)

func TestUnlockBootstrapRoundTrip(t *testing.T) {
	st := store.NewMemory()
	v := New(st)
	password := []byte("test123")

	// First unlock bootstraps a master secret
	if err := v.Unlock(password); err != nil {
		t.Fatalf("Bootstrap unlock failed: %v", err)
	}
	if !v.Unlocked() {
		t.Fatal("Vault should be unlocked")
	}

	master := v.Master()
	if len(master) != MasterSecretSize*2 {
		t.Fatalf("Master secret should be %d hex characters, got %d", MasterSecretSize*2, len(master))
	}

	// The envelope landed in the store
	present, err := st.Has(EnvelopeKey)
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !present {
		t.Fatal("Bootstrap should persist the envelope")
	}

	// Lock and unlock again with the same password
	v.Lock()
	if !v.Locked() {
		t.Fatal("Vault should be locked")
	}
	if v.Master() != "" {
		t.Error("Master secret should be cleared while locked")
	}

	if err := v.Unlock(password); err != nil {
		t.Fatalf("Second unlock failed: %v", err)
	}
	if v.Master() != master {
		t.Error("Unlock should recover the same master secret")
	}
}

func TestUnlockWrongPasswordRejected(t *testing.T) {
	st := store.NewMemory()
	v := New(st)

	if err := v.Unlock([]byte("correct")); err != nil {
		t.Fatalf("Bootstrap unlock failed: %v", err)
	}
	v.Lock()

	envelopeBefore, err := st.Get(EnvelopeKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	err = v.Unlock([]byte("wrong"))
	if !errors.Is(err, ErrWrongMasterPassword) {
		t.Fatalf("Expected ErrWrongMasterPassword, got %v", err)
	}
	if !v.Locked() {
		t.Error("Vault should stay locked after a failed unlock")
	}
	if v.Master() != "" {
		t.Error("Failed unlock should not leave a master secret behind")
	}

	// Store untouched by the failed attempt
	envelopeAfter, err := st.Get(EnvelopeKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if envelopeAfter != envelopeBefore {
		t.Error("Failed unlock must not modify the stored envelope")
	}
}

func TestChangePasswordPreservesMaster(t *testing.T) {
	st := store.NewMemory()
	v := New(st)

	if err := v.Unlock([]byte("old password")); err != nil {
		t.Fatalf("Bootstrap unlock failed: %v", err)
	}
	master := v.Master()

	if err := v.ChangePassword([]byte("new password")); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if v.Master() != master {
		t.Error("ChangePassword must not touch the master secret")
	}

	v.Lock()

	// Old password no longer works
	if err := v.Unlock([]byte("old password")); !errors.Is(err, ErrWrongMasterPassword) {
		t.Errorf("Old password should be rejected, got %v", err)
	}

	// New password recovers the same master
	if err := v.Unlock([]byte("new password")); err != nil {
		t.Fatalf("Unlock with new password failed: %v", err)
	}
	if v.Master() != master {
		t.Error("New password should recover the original master secret")
	}
}

func TestChangePasswordRequiresUnlocked(t *testing.T) {
	v := New(store.NewMemory())

	if err := v.ChangePassword([]byte("new")); !errors.Is(err, ErrNotUnlocked) {
		t.Errorf("Expected ErrNotUnlocked, got %v", err)
	}
}

func TestNewMasterNoSilentOverwrite(t *testing.T) {
	st := store.NewMemory()
	v := New(st)

	master, err := v.NewMaster([]byte("password"))
	if err != nil {
		t.Fatalf("NewMaster failed: %v", err)
	}
	if master == "" {
		t.Fatal("NewMaster should return the master secret")
	}

	envelopeBefore, err := st.Get(EnvelopeKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if _, err := v.NewMaster([]byte("password")); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("Expected ErrAlreadyInitialized, got %v", err)
	}

	// Second vault instance over the same store must refuse too
	other := New(st)
	if _, err := other.NewMaster([]byte("other password")); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("Expected ErrAlreadyInitialized, got %v", err)
	}

	envelopeAfter, err := st.Get(EnvelopeKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if envelopeAfter != envelopeBefore {
		t.Error("Refused bootstrap must not modify the stored envelope")
	}
}

func TestWrapUnwrapRoundTrip(t *testing.T) {
	v := New(store.NewMemory())

	if err := v.Unlock([]byte("password")); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}

	credential := "5KJvsngHeMpm884wtkJNzQGaCErckhHJBGFsvd3VyK5qMZXj3hS"
	wrapped, err := v.Wrap(credential)
	if err != nil {
		t.Fatalf("Wrap failed: %v", err)
	}
	if wrapped == credential {
		t.Fatal("Wrapped credential should differ from the raw credential")
	}

	unwrapped, err := v.Unwrap(wrapped)
	if err != nil {
		t.Fatalf("Unwrap failed: %v", err)
	}
	if unwrapped != credential {
		t.Errorf("Round trip mismatch: got %q, want %q", unwrapped, credential)
	}
}

func TestWrapUnwrapRequireUnlocked(t *testing.T) {
	v := New(store.NewMemory())

	if _, err := v.Wrap("credential"); !errors.Is(err, ErrNotUnlocked) {
		t.Errorf("Wrap while locked: expected ErrNotUnlocked, got %v", err)
	}
	if _, err := v.Unwrap("d2hhdGV2ZXI="); !errors.Is(err, ErrNotUnlocked) {
		t.Errorf("Unwrap while locked: expected ErrNotUnlocked, got %v", err)
	}
}

func TestWrapSurvivesPasswordChange(t *testing.T) {
	st := store.NewMemory()
	v := New(st)

	if err := v.Unlock([]byte("first")); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}

	wrapped, err := v.Wrap("credential material")
	if err != nil {
		t.Fatalf("Wrap failed: %v", err)
	}

	if err := v.ChangePassword([]byte("second")); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	v.Lock()
	if err := v.Unlock([]byte("second")); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}

	unwrapped, err := v.Unwrap(wrapped)
	if err != nil {
		t.Fatalf("Unwrap after password change failed: %v", err)
	}
	if unwrapped != "credential material" {
		t.Errorf("Credential mismatch after password change: %q", unwrapped)
	}
}

func TestUnwrapBadCredential(t *testing.T) {
	v := New(store.NewMemory())
	if err := v.Unlock([]byte("password")); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}

	if _, err := v.Unwrap("not even base64 !!!"); !errors.Is(err, wrap.ErrBadCredential) {
		t.Errorf("Expected ErrBadCredential, got %v", err)
	}

	// Credential wrapped under a different master secret
	other := New(store.NewMemory())
	if err := other.Unlock([]byte("password")); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	foreign, err := other.Wrap("credential")
	if err != nil {
		t.Fatalf("Wrap failed: %v", err)
	}

	if _, err := v.Unwrap(foreign); !errors.Is(err, wrap.ErrBadCredential) {
		t.Errorf("Expected ErrBadCredential for foreign credential, got %v", err)
	}
}

func TestUnlockCorruptedEnvelope(t *testing.T) {
	st := store.NewMemory()
	v := New(st)
	password := []byte("password")

	if err := v.Unlock(password); err != nil {
		t.Fatalf("Bootstrap unlock failed: %v", err)
	}
	v.Lock()

	env, err := st.Get(EnvelopeKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	checksum, ciphertext, _ := strings.Cut(env, "$")

	// Flip one character somewhere in the ciphertext portion
	corrupted := []byte(ciphertext)
	i := len(corrupted) / 2
	if corrupted[i] == 'A' {
		corrupted[i] = 'B'
	} else {
		corrupted[i] = 'A'
	}
	if err := st.Set(EnvelopeKey, checksum+"$"+string(corrupted)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	err = v.Unlock(password)
	if err == nil {
		t.Fatal("Unlock of a corrupted envelope must fail")
	}
	if !errors.Is(err, ErrWrongMasterPassword) && !errors.Is(err, ErrMalformedEnvelope) {
		t.Errorf("Unexpected error for corrupted envelope: %v", err)
	}
	if !v.Locked() {
		t.Error("Vault should stay locked after a corrupted envelope")
	}
}

func TestUnlockMalformedEnvelope(t *testing.T) {
	st := store.NewMemory()
	v := New(st)

	if err := st.Set(EnvelopeKey, "garbage without delimiter"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := v.Unlock([]byte("password")); !errors.Is(err, ErrMalformedEnvelope) {
		t.Errorf("Expected ErrMalformedEnvelope, got %v", err)
	}
}

func TestLockIsIdempotent(t *testing.T) {
	v := New(store.NewMemory())

	v.Lock()
	v.Lock()
	if !v.Locked() {
		t.Error("Vault should be locked")
	}

	if err := v.Unlock([]byte("password")); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	v.Lock()
	v.Lock()
	if !v.Locked() {
		t.Error("Vault should be locked after repeated Lock calls")
	}
}

func TestEnvUnlockDisabledByDefault(t *testing.T) {
	st := store.NewMemory()

	setup := New(st)
	if err := setup.Unlock([]byte("secret")); err != nil {
		t.Fatalf("Bootstrap unlock failed: %v", err)
	}
	setup.Lock()

	t.Setenv("KEYVAULT_UNLOCK", "secret")

	v := New(st)
	if v.Unlocked() {
		t.Error("Environment unlock must not happen without opt-in")
	}
}

func TestEnvUnlockOptIn(t *testing.T) {
	st := store.NewMemory()

	setup := New(st)
	if err := setup.Unlock([]byte("secret")); err != nil {
		t.Fatalf("Bootstrap unlock failed: %v", err)
	}
	master := setup.Master()
	setup.Lock()

	t.Setenv("KEYVAULT_UNLOCK", "secret")

	v := New(st, WithEnvUnlock("KEYVAULT_UNLOCK"))
	if !v.Unlocked() {
		t.Fatal("Opt-in environment unlock should succeed")
	}
	if v.Master() != master {
		t.Error("Environment unlock should recover the same master secret")
	}
}

func TestEnvUnlockWrongValue(t *testing.T) {
	st := store.NewMemory()

	setup := New(st)
	if err := setup.Unlock([]byte("secret")); err != nil {
		t.Fatalf("Bootstrap unlock failed: %v", err)
	}
	setup.Lock()

	t.Setenv("KEYVAULT_UNLOCK", "not the password")

	v := New(st, WithEnvUnlock("KEYVAULT_UNLOCK"))
	if v.Unlocked() {
		t.Error("Wrong environment value must not unlock the vault")
	}
}

func TestVaultOverBoltStore(t *testing.T) {
	dbPath := t.TempDir() + "/test.keyvault"

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()
	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}

	v := New(db)
	if err := v.Unlock([]byte("password")); err != nil {
		t.Fatalf("Bootstrap unlock failed: %v", err)
	}
	master := v.Master()
	wrapped, err := v.Wrap("credential")
	if err != nil {
		t.Fatalf("Wrap failed: %v", err)
	}
	v.Lock()

	// Fresh vault over the same database
	other := New(db)
	if err := other.Unlock([]byte("password")); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if other.Master() != master {
		t.Error("Master secret should persist across vault instances")
	}
	unwrapped, err := other.Unwrap(wrapped)
	if err != nil {
		t.Fatalf("Unwrap failed: %v", err)
	}
	if unwrapped != "credential" {
		t.Errorf("Credential mismatch: %q", unwrapped)
	}
}
