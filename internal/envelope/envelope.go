// Package envelope serializes the master secret into its persisted
// checksum$ciphertext representation and back.
//
// The checksum is the first 4 hex characters of SHA-256 over the
// hex-encoded master secret. It is a wrong-password indicator, not an
// authentication tag; tamper detection comes from the cipher's AEAD.
package envelope

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/live-labs/keyvault/internal/cipher"
)

// ChecksumLen is the number of hex characters kept from the master
// secret's hash. The width is fixed by the on-disk format.
const ChecksumLen = 4

var (
	ErrMalformed = errors.New("malformed envelope")
	ErrIntegrity = errors.New("envelope integrity check failed")
)

// Checksum derives the truncated checksum of a master secret.
func Checksum(master []byte) string {
	sum := sha256.Sum256(master)
	return hex.EncodeToString(sum[:])[:ChecksumLen]
}

// Encode builds the checksum$ciphertext envelope string for a master
// secret, encrypted with the given password-keyed cipher.
func Encode(master []byte, c *cipher.Cipher) (string, error) {
	if len(master) == 0 {
		return "", fmt.Errorf("master secret is empty")
	}

	ciphertext, err := c.Encrypt(master)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt master secret: %w", err)
	}

	return Checksum(master) + "$" + ciphertext, nil
}

// Decode parses an envelope string, decrypts the ciphertext part and
// verifies the checksum. It returns ErrMalformed if the string does not
// split into checksum and ciphertext, the cipher's error if decryption
// fails, and ErrIntegrity if the recomputed checksum does not match.
func Decode(env string, c *cipher.Cipher) ([]byte, error) {
	parts := strings.Split(env, "$")
	if len(parts) != 2 {
		return nil, ErrMalformed
	}

	checksum, ciphertext := parts[0], parts[1]
	if len(checksum) != ChecksumLen || ciphertext == "" {
		return nil, ErrMalformed
	}

	master, err := c.Decrypt(ciphertext)
	if err != nil {
		return nil, err
	}

	// Constant-time comparison; the plain equality check of the original
	// format leaked checksum bits through timing.
	if !cipher.ConstantTimeCompare([]byte(Checksum(master)), []byte(checksum)) {
		cipher.ClearBytes(master)
		return nil, ErrIntegrity
	}

	return master, nil
}
