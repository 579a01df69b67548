package crypto

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"sigil/internal/domain"
)

// B64 returns standard base64 encoding without newlines.
func B64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

// DecodeSignature parses a transported signature field. Standard base64 is
// the canonical form; lowercase hex is accepted from older web clients. The
// two are told apart by the decoded length, which is always SignatureSize.
func DecodeSignature(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) == SignatureSize {
		return b, nil
	}
	if b, err := hex.DecodeString(s); err == nil && len(b) == SignatureSize {
		return b, nil
	}
	return nil, fmt.Errorf("%w: signature is not a %d-byte base64 or hex value", domain.ErrMalformedInput, SignatureSize)
}
