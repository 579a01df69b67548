package domain

import (
	interfaces "sigil/internal/domain/interfaces"
	types "sigil/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Username         = types.Username
	UserID           = types.UserID
	Fingerprint      = types.Fingerprint
	KeyPair          = types.KeyPair
	KDFParams        = types.KDFParams
	Envelope         = types.Envelope
	Identity         = types.Identity
	AccountProfile   = types.AccountProfile
	RegisterRequest  = types.RegisterRequest
	RegisterResponse = types.RegisterResponse
	LoginRequest     = types.LoginRequest
	LoginResponse    = types.LoginResponse
	RekeyRequest     = types.RekeyRequest
	Signature        = types.Signature
	SignedAction     = types.SignedAction
	Vote             = types.Vote
	ActionRequest    = types.ActionRequest
	ActionResponse   = types.ActionResponse
	Rumor            = types.Rumor
	RumorRequest     = types.RumorRequest
	RumorResponse    = types.RumorResponse
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	VaultService   = interfaces.VaultService
	SigningService = interfaces.SigningService
	Signer         = interfaces.Signer
	IdentityStore  = interfaces.IdentityStore
	AccountStore   = interfaces.AccountStore
	IdentityClient = interfaces.IdentityClient
	ActionClient   = interfaces.ActionClient
)
