package types

// Username is the handle an identity is registered under.
type Username string

// String returns the string form of the username.
func (u Username) String() string { return string(u) }

// UserID is the opaque identifier assigned by the identity service.
type UserID string

// String returns the string form of the user identifier.
func (id UserID) String() string { return string(id) }

// Fingerprint is a stable identifier derived from a public key, presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }
