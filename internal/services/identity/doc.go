// Package identity manages the lifecycle of the local signing identity.
//
// It enforces passphrase policy on new passphrases, creates and seals the
// RSA identity key, registers and logs in against the identity service, and
// moves the unsealed key into the identity session. The cleartext key never
// leaves the session, and only the sealed envelope is ever written to disk
// or sent over the network.
package identity
