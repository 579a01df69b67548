package crypto

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"sigil/internal/domain"
)

// The signing algorithm is fixed for every key in the system so that any
// verifier can check any signature.
const (
	ModulusBits   = 2048
	PSSSaltLength = 32
	SignatureSize = ModulusBits / 8
)

var pssOptions = &rsa.PSSOptions{SaltLength: PSSSaltLength, Hash: crypto.SHA256}

// GenerateKeyPair returns a fresh RSA-PSS signing key pair.
func GenerateKeyPair() (domain.KeyPair, error) {
	// Probe the entropy source first so a broken reader is reported as such
	// rather than as an opaque key generation failure.
	probe, err := randomBytes(32)
	if err != nil {
		return domain.KeyPair{}, err
	}
	Wipe(probe)

	priv, err := rsa.GenerateKey(randReader, ModulusBits)
	if err != nil {
		return domain.KeyPair{}, fmt.Errorf("%w: %v", domain.ErrEntropyUnavailable, err)
	}
	return domain.KeyPair{Public: &priv.PublicKey, Private: priv}, nil
}

// SignPSS signs SHA-256(msg) with priv. Signatures are randomised: two
// signatures over the same message differ.
func SignPSS(priv *rsa.PrivateKey, msg []byte) ([]byte, error) {
	if priv == nil {
		return nil, fmt.Errorf("%w: nil private key", domain.ErrInvalidInput)
	}
	digest := sha256.Sum256(msg)
	sig, err := rsa.SignPSS(randReader, priv, crypto.SHA256, digest[:], pssOptions)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return sig, nil
}

// VerifyPSS reports whether sig is a valid signature of msg under pub.
func VerifyPSS(pub *rsa.PublicKey, msg, sig []byte) bool {
	if pub == nil || len(sig) != SignatureSize {
		return false
	}
	digest := sha256.Sum256(msg)
	return rsa.VerifyPSS(pub, crypto.SHA256, digest[:], sig, pssOptions) == nil
}

// MarshalPublicKey returns the SPKI DER encoding of pub.
func MarshalPublicKey(pub *rsa.PublicKey) ([]byte, error) {
	if pub == nil {
		return nil, fmt.Errorf("%w: nil public key", domain.ErrInvalidInput)
	}
	return x509.MarshalPKIXPublicKey(pub)
}

// ParsePublicKey parses an SPKI DER RSA public key of the system strength.
func ParsePublicKey(der []byte) (*rsa.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %v", domain.ErrMalformedInput, err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: public key is %T, want RSA", domain.ErrMalformedInput, key)
	}
	if pub.N.BitLen() != ModulusBits {
		return nil, fmt.Errorf("%w: public key is %d bits, want %d", domain.ErrMalformedInput, pub.N.BitLen(), ModulusBits)
	}
	return pub, nil
}

// MarshalPrivateKey returns the PKCS#8 DER encoding of priv. The result is
// secret; callers must Wipe it.
func MarshalPrivateKey(priv *rsa.PrivateKey) ([]byte, error) {
	if priv == nil {
		return nil, fmt.Errorf("%w: nil private key", domain.ErrInvalidInput)
	}
	return x509.MarshalPKCS8PrivateKey(priv)
}

// ParsePrivateKey parses a PKCS#8 DER RSA private key of the system strength.
func ParsePrivateKey(der []byte) (*rsa.PrivateKey, error) {
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: private key: %v", domain.ErrMalformedInput, err)
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: private key is %T, want RSA", domain.ErrMalformedInput, key)
	}
	if priv.N.BitLen() != ModulusBits {
		WipePrivateKey(priv)
		return nil, fmt.Errorf("%w: private key is %d bits, want %d", domain.ErrMalformedInput, priv.N.BitLen(), ModulusBits)
	}
	return priv, nil
}
