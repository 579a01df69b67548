package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"sigil/internal/domain"
)

// randReader is the only entropy source used by this package.
var randReader io.Reader = rand.Reader

// randomBytes returns n bytes from the system CSPRNG.
func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(randReader, b); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEntropyUnavailable, err)
	}
	return b, nil
}
