// Package crypto exposes the primitives behind a sigil identity.
//
// Contents
//
//   - RSA-PSS key generation, signing and verification (GenerateKeyPair,
//     SignPSS, VerifyPSS) at a single fixed strength: 2048-bit modulus,
//     SHA-256, 32-byte PSS salt
//   - Key encodings: SPKI DER for public keys, PKCS#8 DER for private keys
//   - PBKDF2-HMAC-SHA-256 password key derivation (DeriveKey, AuthKey)
//   - The password envelope: AES-256-GCM over the PKCS#8 key (SealPrivateKey,
//     OpenPrivateKey)
//   - Public-key fingerprints (Fingerprint, ShortFingerprint)
//   - Best-effort wiping of secrets (Wipe, WipePrivateKey)
//   - A start-up self-test for the primitives (CheckSecureContext)
//
// # Notes
//
// Every function is reentrant and free of shared mutable state. DeriveKey is
// deliberately slow; callers should keep it off latency-sensitive paths.
// Returned secrets are the caller's to wipe.
package crypto
