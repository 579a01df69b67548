// Package vault generates signing key pairs and seals them under a password.
//
// The vault owns the envelope format: the key-derivation parameters, the
// AEAD, and the JSON text form used to store or transmit an envelope.
package vault
