// Package vault implements the password-protected master-secret vault.
//
// The vault holds one random 32-byte master secret, hex encoded, generated
// on first unlock and never regenerated. The user password encrypts only
// the master secret (the envelope); the master secret in turn is the
// passphrase for wrapping individual credentials. Changing the password
// re-encrypts the envelope and leaves every wrapped credential valid.
//
// State machine:
//
//	Locked --Unlock(ok)-------> Unlocked
//	Locked --Unlock(fail)-----> Locked   (error surfaced)
//	Unlocked --Lock()---------> Locked
//	Unlocked --ChangePassword-> Unlocked (re-encrypted envelope persisted)
//
// The Vault performs no internal locking. Callers that share a Vault across
// goroutines must serialize access themselves; a credential operation racing
// with Lock or ChangePassword is undefined.
package vault
