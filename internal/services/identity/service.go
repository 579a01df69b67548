package identity

import (
	"bytes"
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"unicode"

	"sigil/internal/crypto"
	"sigil/internal/domain"
	"sigil/internal/services/session"
	"sigil/internal/services/vault"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrIdentityExists is returned when an operation would replace the stored
	// local identity.
	ErrIdentityExists = errors.New("a local identity already exists")
	// ErrNotRegistered is returned when an operation needs a service account.
	ErrNotRegistered = errors.New("identity is not registered with the service; run register or login first")
)

// Service creates, unlocks and rotates the local identity.
type Service struct {
	vault      *vault.Service
	store      domain.IdentityStore
	accounts   domain.AccountStore
	client     domain.IdentityClient
	session    *session.Session
	serviceURL string
	logger     *slog.Logger
}

// New returns an identity service. client may be nil for offline use; the
// remote operations then fail.
func New(
	store domain.IdentityStore,
	accounts domain.AccountStore,
	client domain.IdentityClient,
	sess *session.Session,
	serviceURL string,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		vault:      vault.New(),
		store:      store,
		accounts:   accounts,
		client:     client,
		session:    sess,
		serviceURL: serviceURL,
		logger:     logger,
	}
}

// Create generates a new identity sealed under passphrase, stores it and
// unlocks the session with it. It refuses to replace an existing identity.
func (s *Service) Create(passphrase string) (domain.Identity, error) {
	if !isSecurePassphrase(passphrase) {
		return domain.Identity{}, domain.ErrWeakPassphrase
	}
	if _, err := s.store.LoadIdentity(); err == nil {
		return domain.Identity{}, ErrIdentityExists
	} else if !errors.Is(err, domain.ErrNoIdentity) {
		return domain.Identity{}, err
	}

	pub, env, err := s.vault.GenerateAndSeal(passphrase)
	if err != nil {
		return domain.Identity{}, err
	}
	// Prove the fresh envelope opens before storing it.
	priv, err := s.vault.Unseal(env, passphrase)
	if err != nil {
		return domain.Identity{}, err
	}
	defer crypto.WipePrivateKey(priv)

	id, err := s.identityFor(&priv.PublicKey)
	if err != nil {
		return domain.Identity{}, err
	}
	if !bytes.Equal(id.PublicKey, pub) {
		return domain.Identity{}, fmt.Errorf("%w: sealed key does not match generated public key", domain.ErrMalformedInput)
	}
	id.Envelope = env
	if err := s.store.SaveIdentity(id); err != nil {
		return domain.Identity{}, err
	}
	if err := s.session.Unlock(priv); err != nil {
		return domain.Identity{}, err
	}

	s.logger.Info("identity generated", "fingerprint", id.Fingerprint.String())
	return id, nil
}

// Unlock opens the stored envelope with passphrase into the session.
func (s *Service) Unlock(passphrase string) (domain.Identity, error) {
	id, err := s.store.LoadIdentity()
	if err != nil {
		return domain.Identity{}, err
	}
	priv, err := s.vault.Unseal(id.Envelope, passphrase)
	if err != nil {
		return domain.Identity{}, err
	}
	if err := s.session.Unlock(priv); err != nil {
		return domain.Identity{}, err
	}
	return id, nil
}

// Register publishes the local identity to the identity service under
// username. The passphrase must open the local envelope; the service
// receives only the auth key, the public key and the envelope.
func (s *Service) Register(
	ctx context.Context,
	username domain.Username,
	invite string,
	passphrase string,
) (domain.Identity, error) {
	if s.client == nil {
		return domain.Identity{}, ErrNotRegistered
	}
	id, err := s.Unlock(passphrase)
	if err != nil {
		return domain.Identity{}, err
	}
	authKey, err := crypto.AuthKey(passphrase, username)
	if err != nil {
		return domain.Identity{}, err
	}
	defer crypto.Wipe(authKey)

	resp, err := s.client.Register(ctx, domain.RegisterRequest{
		Username:   username,
		AuthKey:    authKey,
		PublicKey:  id.PublicKey,
		Envelope:   id.Envelope,
		InviteCode: invite,
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("register: %w", err)
	}

	id.UserID, id.Username = resp.UserID, username
	if err := s.store.SaveIdentity(id); err != nil {
		return domain.Identity{}, err
	}
	if err := s.saveProfile(id, resp.Token); err != nil {
		return domain.Identity{}, err
	}
	s.logger.Info("identity registered",
		"user_id", id.UserID.String(),
		"fingerprint", id.Fingerprint.String(),
	)
	return id, nil
}

// Login fetches the sealed identity for username from the service, unseals
// it locally and caches it as the local identity. The returned public key
// must match the key inside the envelope, and a local identity with another
// key is never replaced (ErrIdentityExists).
func (s *Service) Login(
	ctx context.Context,
	username domain.Username,
	passphrase string,
) (domain.Identity, error) {
	if s.client == nil {
		return domain.Identity{}, ErrNotRegistered
	}
	authKey, err := crypto.AuthKey(passphrase, username)
	if err != nil {
		return domain.Identity{}, err
	}
	defer crypto.Wipe(authKey)

	resp, err := s.client.Login(ctx, domain.LoginRequest{Username: username, AuthKey: authKey})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("login: %w", err)
	}
	priv, err := s.vault.Unseal(resp.Envelope, passphrase)
	if err != nil {
		return domain.Identity{}, err
	}
	defer crypto.WipePrivateKey(priv)

	id, err := s.identityFor(&priv.PublicKey)
	if err != nil {
		return domain.Identity{}, err
	}
	if !bytes.Equal(id.PublicKey, resp.PublicKey) {
		return domain.Identity{}, fmt.Errorf("%w: service returned a public key that does not match the envelope", domain.ErrMalformedInput)
	}
	if err := s.checkReplaceable(id.PublicKey); err != nil {
		return domain.Identity{}, err
	}
	id.UserID, id.Username, id.Envelope = resp.UserID, username, resp.Envelope

	if err := s.store.SaveIdentity(id); err != nil {
		return domain.Identity{}, err
	}
	if err := s.saveProfile(id, resp.Token); err != nil {
		return domain.Identity{}, err
	}
	if err := s.session.Unlock(priv); err != nil {
		return domain.Identity{}, err
	}
	s.logger.Info("logged in", "user_id", id.UserID.String(), "fingerprint", id.Fingerprint.String())
	return id, nil
}

// ChangePassphrase reseals the identity under newPassphrase with a fresh salt
// and IV. The session is locked for the duration and unlocked again with the
// same key afterwards; if any step fails it stays locked. A registered
// identity is also rotated on the service.
func (s *Service) ChangePassphrase(ctx context.Context, oldPassphrase, newPassphrase string) error {
	if !isSecurePassphrase(newPassphrase) {
		return domain.ErrWeakPassphrase
	}
	id, err := s.store.LoadIdentity()
	if err != nil {
		return err
	}

	s.session.Lock()
	env, err := s.vault.Reseal(id.Envelope, oldPassphrase, newPassphrase)
	if err != nil {
		return err
	}
	// The new envelope must open before it replaces anything.
	priv, err := s.vault.Unseal(env, newPassphrase)
	if err != nil {
		return err
	}
	defer crypto.WipePrivateKey(priv)
	if id.Username != "" && s.client != nil {
		if err := s.rekey(ctx, id, oldPassphrase, newPassphrase, env); err != nil {
			return err
		}
	}
	id.Envelope = env
	if err := s.store.SaveIdentity(id); err != nil {
		return err
	}
	if err := s.session.Unlock(priv); err != nil {
		return err
	}
	s.logger.Info("passphrase changed", "fingerprint", id.Fingerprint.String())
	return nil
}

func (s *Service) rekey(
	ctx context.Context,
	id domain.Identity,
	oldPassphrase, newPassphrase string,
	env domain.Envelope,
) error {
	profile, ok, err := s.accounts.LoadAccountProfile(s.serviceURL, id.Username)
	if err != nil {
		return err
	}
	if !ok || profile.Token == "" {
		return ErrNotRegistered
	}
	oldKey, err := crypto.AuthKey(oldPassphrase, id.Username)
	if err != nil {
		return err
	}
	defer crypto.Wipe(oldKey)
	newKey, err := crypto.AuthKey(newPassphrase, id.Username)
	if err != nil {
		return err
	}
	defer crypto.Wipe(newKey)

	err = s.client.Rekey(ctx, profile.Token, domain.RekeyRequest{
		OldAuthKey: oldKey,
		AuthKey:    newKey,
		Envelope:   env,
	})
	if err != nil {
		return fmt.Errorf("rekey: %w", err)
	}
	return nil
}

// Export returns the stored envelope in its text form for backup. The text
// is only useful together with the passphrase.
func (s *Service) Export() (string, error) {
	id, err := s.store.LoadIdentity()
	if err != nil {
		return "", err
	}
	return vault.EncodeEnvelope(id.Envelope)
}

// Import stores an envelope produced by Export as the local identity and
// unlocks it. The passphrase must open it, and a local identity holding a
// different key is never replaced.
func (s *Service) Import(text, passphrase string) (domain.Identity, error) {
	env, err := vault.DecodeEnvelope(text)
	if err != nil {
		return domain.Identity{}, err
	}
	priv, err := s.vault.Unseal(env, passphrase)
	if err != nil {
		return domain.Identity{}, err
	}
	defer crypto.WipePrivateKey(priv)

	id, err := s.identityFor(&priv.PublicKey)
	if err != nil {
		return domain.Identity{}, err
	}
	if err := s.checkReplaceable(id.PublicKey); err != nil {
		return domain.Identity{}, err
	}
	// Re-importing the same key keeps its account binding.
	if local, err := s.store.LoadIdentity(); err == nil {
		id.UserID, id.Username = local.UserID, local.Username
	}
	id.Envelope = env
	if err := s.store.SaveIdentity(id); err != nil {
		return domain.Identity{}, err
	}
	if err := s.session.Unlock(priv); err != nil {
		return domain.Identity{}, err
	}
	s.logger.Info("identity imported", "fingerprint", id.Fingerprint.String())
	return id, nil
}

// checkReplaceable refuses to overwrite a local identity holding a different
// key; its envelope may be the only copy.
func (s *Service) checkReplaceable(pub []byte) error {
	local, err := s.store.LoadIdentity()
	switch {
	case errors.Is(err, domain.ErrNoIdentity):
		return nil
	case err != nil:
		return err
	case !bytes.Equal(local.PublicKey, pub):
		return fmt.Errorf("%w: it holds a different key (%s)", ErrIdentityExists, local.Fingerprint)
	}
	return nil
}

// Identity returns the stored identity without unlocking it.
func (s *Service) Identity() (domain.Identity, error) {
	return s.store.LoadIdentity()
}

// Fingerprint returns the fingerprint of the local identity.
func (s *Service) Fingerprint() (domain.Fingerprint, error) {
	if fp, err := s.session.Fingerprint(); err == nil {
		return fp, nil
	}
	id, err := s.store.LoadIdentity()
	if err != nil {
		return "", err
	}
	return id.Fingerprint, nil
}

// Lock drops the unsealed key.
func (s *Service) Lock() { s.session.Lock() }

func (s *Service) identityFor(pub *rsa.PublicKey) (domain.Identity, error) {
	der, err := crypto.MarshalPublicKey(pub)
	if err != nil {
		return domain.Identity{}, err
	}
	fp, err := crypto.Fingerprint(der)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{Fingerprint: fp, PublicKey: der}, nil
}

func (s *Service) saveProfile(id domain.Identity, token string) error {
	return s.accounts.SaveAccountProfile(domain.AccountProfile{
		ServiceURL: s.serviceURL,
		Username:   id.Username,
		UserID:     id.UserID,
		Token:      token,
	})
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len([]rune(passphrase)) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}
