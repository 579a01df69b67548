package types

// Identity is the public half of a user's identity plus the sealed private key.
// It holds nothing that is readable without the user's password.
type Identity struct {
	UserID      UserID      `json:"userId,omitempty"`
	Username    Username    `json:"username,omitempty"`
	Fingerprint Fingerprint `json:"fingerprint"`
	PublicKey   []byte      `json:"publicKey"`
	Envelope    Envelope    `json:"envelope"`
}
