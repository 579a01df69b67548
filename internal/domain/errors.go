package domain

import "errors"

// Error kinds surfaced by the identity core. Callers match them with errors.Is.
var (
	// ErrEntropyUnavailable means the platform could not supply secure randomness.
	ErrEntropyUnavailable = errors.New("secure randomness unavailable")
	// ErrInvalidInput means a salt, IV, key or parameter had the wrong shape.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDecryptionFailed covers both a wrong password and a tampered envelope.
	ErrDecryptionFailed = errors.New("decryption failed: wrong password or corrupted envelope")
	// ErrMalformedInput means a public key, signature or envelope could not be parsed.
	ErrMalformedInput = errors.New("malformed input")
	// ErrSecureContextRequired means cryptographic primitives failed their self-test.
	ErrSecureContextRequired = errors.New("secure context required: cryptographic primitives unavailable")

	// ErrLocked is returned when signing is attempted on a locked session.
	ErrLocked = errors.New("identity session is locked")
	// ErrNoIdentity is returned when no local identity has been created yet.
	ErrNoIdentity = errors.New("no local identity; run init or login first")
	// ErrWeakPassphrase is returned when a new passphrase fails the strength policy.
	ErrWeakPassphrase = errors.New(
		"passphrase is too weak (must be at least 12 characters and include upper, lower, number, and symbol)",
	)
)
