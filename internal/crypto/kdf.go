package crypto

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"golang.org/x/crypto/pbkdf2"

	"sigil/internal/domain"
)

const (
	KeyBytes  = 32
	SaltBytes = 16

	// KDFIterations is the PBKDF2 round count used for every new envelope.
	KDFIterations = 210_000
	// MinKDFIterations is the floor accepted when opening an envelope.
	MinKDFIterations = 100_000
	// MaxKDFIterations caps the work a recorded envelope can demand.
	MaxKDFIterations = 10 * KDFIterations

	KDFHashSHA256 = "SHA-256"
	KDFHashSHA512 = "SHA-512"

	authSaltPrefix = "sigil-auth:"
)

// DefaultKDFParams returns the parameters recorded in newly sealed envelopes.
func DefaultKDFParams() domain.KDFParams {
	return domain.KDFParams{Iterations: KDFIterations, Hash: KDFHashSHA256}
}

// legacyKDFParams are assumed for envelopes produced by the web client, which
// does not record its parameters.
func legacyKDFParams() domain.KDFParams {
	return domain.KDFParams{Iterations: MinKDFIterations, Hash: KDFHashSHA256}
}

// DeriveKey derives a 256-bit wrapping key from password and a 16-byte salt
// with PBKDF2-HMAC-SHA-256 at KDFIterations rounds. Identical inputs always
// yield the identical key.
func DeriveKey(password string, salt []byte) ([]byte, error) {
	return deriveKey(password, salt, DefaultKDFParams())
}

// AuthKey derives the value a client presents to the identity service to
// log in. It is salted apart from every envelope key, so knowing it does not
// help unseal the user's envelope.
func AuthKey(password string, username domain.Username) ([]byte, error) {
	sum := sha256.Sum256([]byte(authSaltPrefix + username.String()))
	return deriveKey(password, sum[:SaltBytes], DefaultKDFParams())
}

func deriveKey(password string, salt []byte, p domain.KDFParams) ([]byte, error) {
	if len(salt) != SaltBytes {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", domain.ErrInvalidInput, SaltBytes, len(salt))
	}
	if err := CheckKDFParams(p); err != nil {
		return nil, err
	}
	h, err := kdfHash(p.Hash)
	if err != nil {
		return nil, err
	}
	return pbkdf2.Key([]byte(password), salt, p.Iterations, KeyBytes, h), nil
}

// CheckKDFParams rejects parameters outside [MinKDFIterations,
// MaxKDFIterations] or naming an unsupported hash.
func CheckKDFParams(p domain.KDFParams) error {
	switch {
	case p.Iterations < MinKDFIterations:
		return fmt.Errorf("%w: %d kdf iterations is below the minimum of %d", domain.ErrInvalidInput, p.Iterations, MinKDFIterations)
	case p.Iterations > MaxKDFIterations:
		return fmt.Errorf("%w: %d kdf iterations is above the maximum of %d", domain.ErrInvalidInput, p.Iterations, MaxKDFIterations)
	}
	_, err := kdfHash(p.Hash)
	return err
}

func kdfHash(name string) (func() hash.Hash, error) {
	switch name {
	case KDFHashSHA256:
		return sha256.New, nil
	case KDFHashSHA512:
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("%w: unsupported kdf hash %q", domain.ErrInvalidInput, name)
	}
}
