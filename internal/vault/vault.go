package vault

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/live-labs/keyvault/internal/cipher"
	"github.com/live-labs/keyvault/internal/envelope"
	"github.com/live-labs/keyvault/internal/store"
	"github.com/live-labs/keyvault/internal/wrap"
)

const (
	// EnvelopeKey is the single store key the encrypted master secret
	// lives under. The name is part of the persisted format.
	EnvelopeKey = "encrypted_master_password"

	// MasterSecretSize is the master secret length in bytes before hex
	// encoding.
	MasterSecretSize = 32
)

var (
	ErrWrongMasterPassword = errors.New("wrong master password")
	ErrNotUnlocked         = errors.New("vault is locked")
	ErrAlreadyInitialized  = errors.New("vault already has a master secret")

	// ErrMalformedEnvelope is re-exported so callers do not need to
	// import the envelope package to classify unlock failures.
	ErrMalformedEnvelope = envelope.ErrMalformed
)

// Vault guards the master secret behind a user password and wraps
// individual credentials with it once unlocked.
type Vault struct {
	store  store.Store
	log    *zap.Logger
	envVar string // implicit-unlock env var, empty means disabled

	password []byte
	master   []byte // hex text of the master secret
}

// Option configures a Vault.
type Option func(*Vault)

// WithLogger sets the vault's logger. Default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(v *Vault) {
		v.log = log
	}
}

// WithEnvUnlock enables the implicit unlock fallback: when the vault is
// locked and the named environment variable is non-empty, Unlocked()
// attempts to unlock with its value. Trusting ambient process state as a
// credential source is opt-in; without this option no environment lookup
// happens.
func WithEnvUnlock(name string) Option {
	return func(v *Vault) {
		v.envVar = name
	}
}

// New creates a locked Vault bound to a configuration store.
func New(st store.Store, opts ...Option) *Vault {
	v := &Vault{
		store: st,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Locked reports whether the vault is locked.
func (v *Vault) Locked() bool {
	return !v.Unlocked()
}

// Unlocked reports whether the vault is unlocked. If the vault is locked
// and an implicit-unlock environment variable was configured, its value is
// tried once as a password.
func (v *Vault) Unlocked() bool {
	if len(v.password) > 0 {
		return true
	}
	if v.envVar != "" {
		if value := os.Getenv(v.envVar); value != "" {
			v.log.Debug("trying environment variable to unlock vault",
				zap.String("var", v.envVar))
			if err := v.Unlock([]byte(value)); err != nil {
				v.log.Debug("environment unlock failed", zap.Error(err))
			}
			return len(v.password) > 0
		}
	}
	return false
}

// Initialized reports whether the store already holds a non-empty envelope.
func (v *Vault) Initialized() (bool, error) {
	present, err := v.store.Has(EnvelopeKey)
	if err != nil || !present {
		return false, err
	}
	env, err := v.store.Get(EnvelopeKey)
	if err != nil {
		return false, err
	}
	return env != "", nil
}

// Unlock decrypts the stored master secret with the password, or bootstraps
// a new one when the store is empty. On any decryption or integrity failure
// the vault reverts to the locked state and returns ErrWrongMasterPassword;
// an unparseable envelope returns ErrMalformedEnvelope. The store is only
// written on the bootstrap path.
func (v *Vault) Unlock(password []byte) error {
	initialized, err := v.Initialized()
	if err != nil {
		return fmt.Errorf("failed to check store: %w", err)
	}

	if !initialized {
		_, err := v.NewMaster(password)
		return err
	}

	env, err := v.store.Get(EnvelopeKey)
	if err != nil {
		return fmt.Errorf("failed to read envelope: %w", err)
	}

	c := cipher.New(password)
	defer c.Destroy()

	master, err := envelope.Decode(env, c)
	if err != nil {
		// Never retain a password that failed to decrypt.
		v.Lock()
		if errors.Is(err, envelope.ErrMalformed) {
			return err
		}
		return ErrWrongMasterPassword
	}

	v.setState(password, master)
	return nil
}

// Lock discards the in-memory password and master secret. Idempotent.
func (v *Vault) Lock() {
	cipher.ClearBytes(v.password)
	cipher.ClearBytes(v.master)
	v.password = nil
	v.master = nil
}

// NewMaster generates a fresh random master secret, encrypts it under the
// password and persists the envelope. It fails with ErrAlreadyInitialized
// if a non-empty envelope exists; regenerating the master secret would
// orphan every credential wrapped under the old one.
func (v *Vault) NewMaster(password []byte) (string, error) {
	initialized, err := v.Initialized()
	if err != nil {
		return "", fmt.Errorf("failed to check store: %w", err)
	}
	if initialized {
		return "", ErrAlreadyInitialized
	}

	raw, err := cipher.GenerateRandom(MasterSecretSize)
	if err != nil {
		return "", err
	}
	master := []byte(hex.EncodeToString(raw))
	cipher.ClearBytes(raw)

	v.setState(password, master)

	if err := v.saveEncryptedMaster(); err != nil {
		v.Lock()
		return "", err
	}

	return string(master), nil
}

// ChangePassword re-encrypts the master secret under a new password and
// overwrites the stored envelope. The master secret itself is unchanged,
// so credentials wrapped under it stay valid. Requires the unlocked state.
func (v *Vault) ChangePassword(newPassword []byte) error {
	if !v.Unlocked() {
		return ErrNotUnlocked
	}

	previous := v.password
	v.password = dup(newPassword)

	if err := v.saveEncryptedMaster(); err != nil {
		// The store still holds the old envelope; keep the matching
		// password.
		cipher.ClearBytes(v.password)
		v.password = previous
		return err
	}

	cipher.ClearBytes(previous)
	return nil
}

// Master returns the decrypted master secret as a hex string, or an empty
// string while locked. Handle with care.
func (v *Vault) Master() string {
	return string(v.master)
}

// Wrap encrypts a raw credential with the master secret as passphrase.
func (v *Vault) Wrap(credential string) (string, error) {
	if !v.Unlocked() {
		return "", ErrNotUnlocked
	}
	return wrap.Wrap([]byte(credential), v.master)
}

// Unwrap decrypts a credential previously produced by Wrap. Returns
// wrap.ErrBadCredential if the input is corrupted or was wrapped under a
// different master secret.
func (v *Vault) Unwrap(wrapped string) (string, error) {
	if !v.Unlocked() {
		return "", ErrNotUnlocked
	}
	credential, err := wrap.Unwrap(wrapped, v.master)
	if err != nil {
		return "", err
	}
	return string(credential), nil
}

// saveEncryptedMaster encodes the current master secret under the current
// password and writes the envelope to the store in one atomic replace.
func (v *Vault) saveEncryptedMaster() error {
	if len(v.master) == 0 || len(v.password) == 0 {
		return ErrNotUnlocked
	}

	c := cipher.New(v.password)
	defer c.Destroy()

	env, err := envelope.Encode(v.master, c)
	if err != nil {
		return err
	}

	if err := v.store.Set(EnvelopeKey, env); err != nil {
		return fmt.Errorf("failed to persist envelope: %w", err)
	}
	return nil
}

func (v *Vault) setState(password, master []byte) {
	v.Lock()
	v.password = dup(password)
	v.master = master
}

func dup(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
