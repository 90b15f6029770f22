// Package cipher provides the password-keyed symmetric cipher used to
// protect the master-secret envelope.
//
// Encryption uses AES-256-GCM with:
//   - 32-byte key derived from the password via PBKDF2
//   - 12-byte random nonce per encryption operation
//   - Authenticated encryption prevents tampering
//
// Key derivation uses PBKDF2-HMAC-SHA256 with:
//   - 32-byte random salt, generated per encryption and carried inside
//     the ciphertext string
//   - 210,000 iterations (OWASP minimum recommendation)
//
// Ciphertexts are self-contained base64 strings (salt, nonce, sealed data),
// so a Cipher is constructed from the password alone.
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
//   - Call Cipher.Destroy() when done with encryption operations
package cipher
