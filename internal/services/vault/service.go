package vault

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"

	"sigil/internal/crypto"
	"sigil/internal/domain"
)

// Service implements domain.VaultService on top of the crypto package.
type Service struct{}

// New returns a vault service.
func New() *Service { return &Service{} }

// Generate returns a fresh signing key pair.
func (s *Service) Generate() (domain.KeyPair, error) {
	return crypto.GenerateKeyPair()
}

// Seal encrypts priv under password. Every call uses a fresh salt and IV, so
// sealing the same key twice yields two unrelated envelopes.
func (s *Service) Seal(priv *rsa.PrivateKey, password string) (domain.Envelope, error) {
	return crypto.SealPrivateKey(priv, password)
}

// Unseal decrypts env with password. The caller owns the returned key and
// should release it with crypto.WipePrivateKey.
func (s *Service) Unseal(env domain.Envelope, password string) (*rsa.PrivateKey, error) {
	return crypto.OpenPrivateKey(env, password)
}

// GenerateAndSeal creates a key pair for first-run setup and returns its SPKI
// public key together with the sealed private key. The cleartext private key
// does not outlive the call.
func (s *Service) GenerateAndSeal(password string) ([]byte, domain.Envelope, error) {
	kp, err := s.Generate()
	if err != nil {
		return nil, domain.Envelope{}, err
	}
	defer crypto.WipePrivateKey(kp.Private)

	pub, err := crypto.MarshalPublicKey(kp.Public)
	if err != nil {
		return nil, domain.Envelope{}, err
	}
	env, err := s.Seal(kp.Private, password)
	if err != nil {
		return nil, domain.Envelope{}, err
	}
	return pub, env, nil
}

// Reseal re-encrypts the key inside env under newPassword. The intermediate
// cleartext key is wiped before returning.
func (s *Service) Reseal(env domain.Envelope, oldPassword, newPassword string) (domain.Envelope, error) {
	priv, err := s.Unseal(env, oldPassword)
	if err != nil {
		return domain.Envelope{}, err
	}
	defer crypto.WipePrivateKey(priv)
	return s.Seal(priv, newPassword)
}

// EncodeEnvelope returns the JSON text form of env.
func EncodeEnvelope(env domain.Envelope) (string, error) {
	b, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("encode envelope: %w", err)
	}
	return string(b), nil
}

// DecodeEnvelope parses the JSON text form of an envelope.
func DecodeEnvelope(s string) (domain.Envelope, error) {
	var env domain.Envelope
	if err := json.Unmarshal([]byte(s), &env); err != nil {
		return domain.Envelope{}, fmt.Errorf("%w: envelope: %v", domain.ErrMalformedInput, err)
	}
	if len(env.Salt) == 0 || len(env.IV) == 0 || len(env.CipherText) == 0 {
		return domain.Envelope{}, fmt.Errorf("%w: envelope is missing salt, iv or cipherText", domain.ErrMalformedInput)
	}
	return env, nil
}

// Compile-time assertion that Service implements domain.VaultService.
var _ domain.VaultService = (*Service)(nil)
