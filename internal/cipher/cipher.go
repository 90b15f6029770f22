package cipher

import (
	"crypto/aes"
	gocipher "crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize     = 32     // PBKDF2 salt size in bytes
	KeySize      = 32     // AES-256 key size
	NonceSize    = 12     // GCM nonce size
	TagSize      = 16     // GCM authentication tag size
	DefaultIters = 210000 // PBKDF2 iterations (OWASP minimum)
)

var (
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrDecryptionFailed  = errors.New("decryption failed")
)

// Cipher encrypts and decrypts strings under a key derived from a password.
// Each Encrypt call draws a fresh salt and nonce, so ciphertexts for the
// same plaintext differ between calls.
type Cipher struct {
	password []byte
}

// New creates a Cipher keyed by password. The password is copied; the
// caller may clear its own buffer.
func New(password []byte) *Cipher {
	p := make([]byte, len(password))
	copy(p, password)
	return &Cipher{password: p}
}

// deriveKey derives the AES key for the given salt.
func (c *Cipher) deriveKey(salt []byte) []byte {
	return pbkdf2.Key(c.password, salt, DefaultIters, KeySize, sha256.New)
}

// Encrypt encrypts plaintext using AES-256-GCM and returns a base64 string
// containing salt, nonce and sealed data.
func (c *Cipher) Encrypt(plaintext []byte) (string, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := c.deriveKey(salt)
	defer ClearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := gocipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)

	result := make([]byte, 0, SaltSize+NonceSize+len(sealed))
	result = append(result, salt...)
	result = append(result, nonce...)
	result = append(result, sealed...)

	return base64.StdEncoding.EncodeToString(result), nil
}

// Decrypt decrypts a string produced by Encrypt. Returns ErrInvalidCiphertext
// if the encoding is broken and ErrDecryptionFailed if authentication fails,
// which includes the wrong-password case.
func (c *Cipher) Decrypt(ciphertext string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, ErrInvalidCiphertext
	}
	if len(raw) < SaltSize+NonceSize+TagSize {
		return nil, ErrInvalidCiphertext
	}

	salt := raw[:SaltSize]
	nonce := raw[SaltSize : SaltSize+NonceSize]
	sealed := raw[SaltSize+NonceSize:]

	key := c.deriveKey(salt)
	defer ClearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := gocipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

// Destroy clears the cipher's password copy from memory.
func (c *Cipher) Destroy() {
	ClearBytes(c.password)
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
