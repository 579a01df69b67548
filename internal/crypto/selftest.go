package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"sigil/internal/domain"
)

// Known-answer vectors: SHA-256("abc") and GCM test case 2 from the
// original GCM specification (zero key, zero IV, one zero block).
var (
	katSHA256, _    = hex.DecodeString("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	katGCMSealed, _ = hex.DecodeString("0388dace60b6a392f328c2b971b2fe78ab6e47d42cec13bdf53a67b21257bddf")
)

// CheckSecureContext verifies that randomness, hashing and authenticated
// encryption all work before any identity is created or unlocked. It returns
// domain.ErrSecureContextRequired otherwise; callers must not continue.
func CheckSecureContext() error {
	if _, err := randomBytes(32); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSecureContextRequired, err)
	}

	sum := sha256.Sum256([]byte("abc"))
	if !bytes.Equal(sum[:], katSHA256) {
		return fmt.Errorf("%w: sha-256 self-test failed", domain.ErrSecureContextRequired)
	}

	block, err := aes.NewCipher(make([]byte, 16))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSecureContextRequired, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSecureContextRequired, err)
	}
	if !bytes.Equal(gcm.Seal(nil, make([]byte, IVBytes), make([]byte, 16), nil), katGCMSealed) {
		return fmt.Errorf("%w: aes-gcm self-test failed", domain.ErrSecureContextRequired)
	}
	return nil
}
