package store

import (
	"path/filepath"
	"sync"

	"sigil/internal/domain"
)

const identityFile = "identity.json"

// IdentityFileStore persists the local identity to disk. The file holds the
// public key and the sealed envelope only; it is useless without the password.
type IdentityFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewIdentityFileStore returns an IdentityFileStore rooted at dir.
func NewIdentityFileStore(dir string) *IdentityFileStore {
	return &IdentityFileStore{dir: dir}
}

// SaveIdentity replaces the stored identity.
func (s *IdentityFileStore) SaveIdentity(id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(filepath.Join(s.dir, identityFile), id, 0o600)
}

// LoadIdentity returns the stored identity, or domain.ErrNoIdentity.
func (s *IdentityFileStore) LoadIdentity() (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id domain.Identity
	ok, err := readJSON(filepath.Join(s.dir, identityFile), &id)
	if err != nil {
		return domain.Identity{}, err
	}
	if !ok {
		return domain.Identity{}, domain.ErrNoIdentity
	}
	return id, nil
}

// Compile-time assertion that IdentityFileStore implements domain.IdentityStore.
var _ domain.IdentityStore = (*IdentityFileStore)(nil)
