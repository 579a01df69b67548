package interfaces

import (
	"crypto/rsa"

	domaintypes "sigil/internal/domain/types"
)

// VaultService generates key pairs and seals/unseals private keys under a password.
type VaultService interface {
	Generate() (domaintypes.KeyPair, error)
	Seal(priv *rsa.PrivateKey, password string) (domaintypes.Envelope, error)
	Unseal(env domaintypes.Envelope, password string) (*rsa.PrivateKey, error)
}

// SigningService signs payloads with a held key and verifies signatures.
type SigningService interface {
	Sign(priv *rsa.PrivateKey, payload []byte) (domaintypes.Signature, error)
	Verify(pub []byte, payload []byte, sig domaintypes.Signature) (bool, error)
}

// Signer signs with a key it holds; the caller never sees the private key.
type Signer interface {
	Sign(payload []byte) (domaintypes.Signature, error)
	PublicKey() ([]byte, error)
}
