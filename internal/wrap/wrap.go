// Package wrap encodes individual credentials under a passphrase. The vault
// uses it with the decrypted master secret as the passphrase, so every
// wrapped credential stays valid across password changes.
//
// Key derivation uses scrypt (the original BIP38-style scheme is
// scrypt-based); encryption is AES-256-GCM. The output is a self-contained
// base64 string carrying salt, nonce and sealed data.
package wrap

import (
	"crypto/aes"
	gocipher "crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

const (
	saltSize  = 32
	keySize   = 32
	nonceSize = 12
	tagSize   = 16

	// scrypt parameters, interactive-use strength
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// ErrBadCredential is returned when a wrapped credential cannot be decoded,
// either because the passphrase is wrong or the input is corrupted.
var ErrBadCredential = errors.New("bad credential or wrong key material")

func deriveKey(passphrase, salt []byte) ([]byte, error) {
	key, err := scrypt.Key(passphrase, salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

// Wrap encrypts a raw credential under the passphrase.
func Wrap(raw, passphrase []byte) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return "", err
	}
	defer clearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := gocipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, raw, nil)

	out := make([]byte, 0, saltSize+nonceSize+len(sealed))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, sealed...)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Unwrap decrypts a credential produced by Wrap. Any decoding or
// authentication failure is reported as ErrBadCredential.
func Unwrap(wrapped string, passphrase []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return nil, ErrBadCredential
	}
	if len(raw) < saltSize+nonceSize+tagSize {
		return nil, ErrBadCredential
	}

	salt := raw[:saltSize]
	nonce := raw[saltSize : saltSize+nonceSize]
	sealed := raw[saltSize+nonceSize:]

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	defer clearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := gocipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	credential, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrBadCredential
	}

	return credential, nil
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
