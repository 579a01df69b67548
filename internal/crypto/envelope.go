package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rsa"
	"fmt"

	"sigil/internal/domain"
)

const (
	IVBytes  = 12
	TagBytes = 16
)

// SealPrivateKey encrypts the PKCS#8 encoding of priv under a key derived from
// password. Salt and IV are fresh on every call.
func SealPrivateKey(priv *rsa.PrivateKey, password string) (domain.Envelope, error) {
	raw, err := MarshalPrivateKey(priv)
	if err != nil {
		return domain.Envelope{}, err
	}
	defer Wipe(raw)

	salt, err := randomBytes(SaltBytes)
	if err != nil {
		return domain.Envelope{}, err
	}
	iv, err := randomBytes(IVBytes)
	if err != nil {
		return domain.Envelope{}, err
	}

	params := DefaultKDFParams()
	key, err := deriveKey(password, salt, params)
	if err != nil {
		return domain.Envelope{}, err
	}
	defer Wipe(key)

	aead, err := newGCM(key)
	if err != nil {
		return domain.Envelope{}, err
	}
	return domain.Envelope{
		Salt:       salt,
		IV:         iv,
		CipherText: aead.Seal(nil, iv, raw, nil),
		KDF:        params,
	}, nil
}

// OpenPrivateKey reverses SealPrivateKey. A wrong password and a modified
// envelope both yield domain.ErrDecryptionFailed.
func OpenPrivateKey(env domain.Envelope, password string) (*rsa.PrivateKey, error) {
	if len(env.IV) != IVBytes {
		return nil, fmt.Errorf("%w: iv must be %d bytes, got %d", domain.ErrInvalidInput, IVBytes, len(env.IV))
	}
	if len(env.CipherText) < TagBytes {
		return nil, fmt.Errorf("%w: ciphertext shorter than the authentication tag", domain.ErrInvalidInput)
	}
	params := env.KDF
	if params == (domain.KDFParams{}) {
		params = legacyKDFParams()
	}

	key, err := deriveKey(password, env.Salt, params)
	if err != nil {
		return nil, err
	}
	defer Wipe(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	raw, err := aead.Open(nil, env.IV, env.CipherText, nil)
	if err != nil {
		return nil, domain.ErrDecryptionFailed
	}
	defer Wipe(raw)

	return ParsePrivateKey(raw)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return cipher.NewGCM(block)
}
