package types

import "crypto/rsa"

// KeyPair is a long-term or ephemeral RSA-PSS signing key pair.
//
// Private must never be serialised in cleartext outside process memory.
type KeyPair struct {
	Public  *rsa.PublicKey
	Private *rsa.PrivateKey
}

// KDFParams records how the wrapping key of an Envelope was derived.
type KDFParams struct {
	Iterations int    `json:"iterations"`
	Hash       string `json:"hash"`
}

// Envelope is a private key encrypted under a password-derived key.
// Byte fields travel as standard base64 JSON strings.
type Envelope struct {
	Salt       []byte    `json:"salt"`
	IV         []byte    `json:"iv"`
	CipherText []byte    `json:"cipherText"`
	KDF        KDFParams `json:"kdfParams"`
}
