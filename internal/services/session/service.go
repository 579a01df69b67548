package session

import (
	"crypto/rsa"
	"fmt"
	"log/slog"
	"sync"

	"github.com/awnumar/memguard"

	"sigil/internal/crypto"
	"sigil/internal/domain"
)

// State is the lock state of a Session.
type State int

const (
	// Locked holds no private key material.
	Locked State = iota
	// Unlocked holds exactly one private key.
	Unlocked
)

// String returns the lower-case name of the state.
func (s State) String() string {
	if s == Unlocked {
		return "unlocked"
	}
	return "locked"
}

// Session is the single owner of the cleartext identity key. It is safe for
// concurrent use: any number of Sign calls may run together, and Unlock and
// Lock wait for them.
type Session struct {
	mu     sync.RWMutex
	key    *memguard.Enclave
	pub    []byte
	fp     domain.Fingerprint
	logger *slog.Logger
}

// New returns a locked session. A nil logger uses slog.Default.
func New(logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{logger: logger}
}

// Unlock takes ownership of priv: it is encoded into the session enclave and
// the caller's copy is wiped. Any previously held key is released first.
// Only keys of crypto.ModulusBits are accepted.
func (s *Session) Unlock(priv *rsa.PrivateKey) error {
	if priv == nil {
		return fmt.Errorf("%w: nil private key", domain.ErrInvalidInput)
	}
	defer crypto.WipePrivateKey(priv)
	if priv.N == nil || priv.N.BitLen() != crypto.ModulusBits {
		return fmt.Errorf("%w: identity key must be %d bits", domain.ErrInvalidInput, crypto.ModulusBits)
	}

	pub, err := crypto.MarshalPublicKey(&priv.PublicKey)
	if err != nil {
		return err
	}
	fp, err := crypto.Fingerprint(pub)
	if err != nil {
		return err
	}
	raw, err := crypto.MarshalPrivateKey(priv)
	if err != nil {
		return err
	}
	// NewEnclave encrypts raw into the enclave and wipes it.
	enclave := memguard.NewEnclave(raw)
	crypto.Wipe(raw)

	s.mu.Lock()
	s.key, s.pub, s.fp = enclave, pub, fp
	s.mu.Unlock()

	s.logger.Info("identity session unlocked", "fingerprint", fp.String())
	return nil
}

// Lock releases the key. It is a no-op on a locked session.
func (s *Session) Lock() {
	s.mu.Lock()
	was := s.key != nil
	s.key, s.pub, s.fp = nil, nil, ""
	s.mu.Unlock()

	if was {
		s.logger.Info("identity session locked")
	}
}

// Close locks the session. It exists so a Session can be deferred like any
// other resource.
func (s *Session) Close() error {
	s.Lock()
	return nil
}

// State reports whether the session currently holds a key.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == nil {
		return Locked
	}
	return Unlocked
}

// Sign signs payload with the held key, returning domain.ErrLocked when no
// key is held. The parsed key exists only for the duration of the call.
func (s *Session) Sign(payload []byte) (domain.Signature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == nil {
		return domain.Signature{}, domain.ErrLocked
	}

	buf, err := s.key.Open()
	if err != nil {
		return domain.Signature{}, fmt.Errorf("open session key: %w", err)
	}
	defer buf.Destroy()

	priv, err := crypto.ParsePrivateKey(buf.Bytes())
	if err != nil {
		return domain.Signature{}, err
	}
	defer crypto.WipePrivateKey(priv)

	v, err := crypto.SignPSS(priv, payload)
	if err != nil {
		return domain.Signature{}, err
	}
	return domain.Signature{Value: v}, nil
}

// PublicKey returns the SPKI encoding of the held key's public half.
func (s *Session) PublicKey() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == nil {
		return nil, domain.ErrLocked
	}
	return append([]byte(nil), s.pub...), nil
}

// Fingerprint returns the fingerprint of the held key.
func (s *Session) Fingerprint() (domain.Fingerprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == nil {
		return "", domain.ErrLocked
	}
	return s.fp, nil
}

// Compile-time assertion that Session implements domain.Signer.
var _ domain.Signer = (*Session)(nil)
