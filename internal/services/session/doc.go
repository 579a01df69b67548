// Package session holds the unsealed identity key for the length of a login.
//
// A Session is Locked or Unlocked. While Unlocked the private key lives in a
// memguard enclave and is only decrypted into guarded memory for the duration
// of a single Sign call. Lock drops the enclave and waits for in-flight Sign
// calls first.
package session
