package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"

	"sigil/internal/domain"
)

// Fingerprint returns the self-describing fingerprint of an SPKI public key:
// a base58btc multibase string over a sha2-256 multihash.
func Fingerprint(pub []byte) (domain.Fingerprint, error) {
	if len(pub) == 0 {
		return "", fmt.Errorf("%w: empty public key", domain.ErrInvalidInput)
	}
	mh, err := multihash.Sum(pub, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	s, err := multibase.Encode(multibase.Base58BTC, mh)
	if err != nil {
		return "", err
	}
	return domain.Fingerprint(s), nil
}

// ShortFingerprint returns a short hex fingerprint of a public key for display.
//
// It hashes with SHA-256 and truncates to 10 bytes (20 hex chars).
func ShortFingerprint(pub []byte) string {
	sum := sha256.Sum256(pub)
	return hex.EncodeToString(sum[:10])
}
