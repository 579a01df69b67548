package types

// AccountProfile identifies a sigil account on a specific identity service.
type AccountProfile struct {
	ServiceURL string   `json:"service_url"`
	Username   Username `json:"username"`
	UserID     UserID   `json:"user_id"`
	Token      string   `json:"token,omitempty"`
}

// RegisterRequest is sent to the identity service when joining.
//
// AuthKey is derived from the password independently of the envelope key, so
// the service can authenticate logins without being able to unseal Envelope.
type RegisterRequest struct {
	Username   Username `json:"username"`
	AuthKey    []byte   `json:"authKey"`
	PublicKey  []byte   `json:"publicKey"`
	Envelope   Envelope `json:"encryptedPrivKeyEnvelope"`
	InviteCode string   `json:"inviteCode"`
}

// RegisterResponse is returned by the identity service after a successful join.
type RegisterResponse struct {
	UserID UserID `json:"userId"`
	Token  string `json:"token"`
}

// LoginRequest authenticates an existing user.
type LoginRequest struct {
	Username Username `json:"username"`
	AuthKey  []byte   `json:"authKey"`
}

// LoginResponse carries the sealed identity back to the device for local unsealing.
type LoginResponse struct {
	UserID    UserID   `json:"userId"`
	Token     string   `json:"token"`
	PublicKey []byte   `json:"publicKey"`
	Envelope  Envelope `json:"encryptedPrivKeyEnvelope"`
}

// RekeyRequest replaces the auth key and envelope after a password change.
// OldAuthKey proves knowledge of the previous password.
type RekeyRequest struct {
	OldAuthKey []byte   `json:"oldAuthKey"`
	AuthKey    []byte   `json:"authKey"`
	Envelope   Envelope `json:"encryptedPrivKeyEnvelope"`
}
