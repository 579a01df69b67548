package store

import (
	"path/filepath"
	"strings"
	"sync"

	"sigil/internal/domain"
)

const accountsFile = "accounts.json"

// AccountFileStore persists per-service account profiles to disk.
type AccountFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewAccountFileStore returns an AccountFileStore rooted at dir.
func NewAccountFileStore(dir string) *AccountFileStore {
	return &AccountFileStore{dir: dir}
}

// SaveAccountProfile stores or updates the given profile.
func (s *AccountFileStore) SaveAccountProfile(profile domain.AccountProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, accountsFile)
	profiles := make(map[string]domain.AccountProfile)
	if _, err := readJSON(path, &profiles); err != nil {
		return err
	}
	profiles[accountKey(profile.ServiceURL, profile.Username)] = profile
	return writeJSON(path, profiles, 0o600)
}

// LoadAccountProfile retrieves the profile for (serviceURL, username).
func (s *AccountFileStore) LoadAccountProfile(
	serviceURL string,
	username domain.Username,
) (domain.AccountProfile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles := make(map[string]domain.AccountProfile)
	if _, err := readJSON(filepath.Join(s.dir, accountsFile), &profiles); err != nil {
		return domain.AccountProfile{}, false, err
	}
	profile, ok := profiles[accountKey(serviceURL, username)]
	return profile, ok, nil
}

// accountKey normalises the service URL so that a trailing slash does not
// create a second profile.
func accountKey(serviceURL string, username domain.Username) string {
	return strings.TrimRight(serviceURL, "/") + "|" + username.String()
}

// Compile-time assertion that AccountFileStore implements domain.AccountStore.
var _ domain.AccountStore = (*AccountFileStore)(nil)
