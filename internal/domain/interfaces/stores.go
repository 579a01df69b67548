package interfaces

import domaintypes "sigil/internal/domain/types"

// IdentityStore persists the local identity: public material and the sealed envelope.
type IdentityStore interface {
	SaveIdentity(id domaintypes.Identity) error
	LoadIdentity() (domaintypes.Identity, error)
}

// AccountStore persists per-service account profiles.
type AccountStore interface {
	SaveAccountProfile(profile domaintypes.AccountProfile) error
	LoadAccountProfile(
		serviceURL string,
		username domaintypes.Username,
	) (domaintypes.AccountProfile, bool, error)
}
