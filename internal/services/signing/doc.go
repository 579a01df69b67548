// Package signing signs action payloads and verifies signed actions.
//
// Signatures are RSA-PSS and randomised, so verifiers never compare signature
// bytes. Two modes exist: direct signing with the long-term identity key, and
// ephemeral signing, where a one-time key signs the payload and travels with
// it. An ephemeral key may optionally be bound to the identity by a
// long-term signature over the ephemeral public key.
package signing
